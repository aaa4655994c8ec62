package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string // PORT (default "8080")
	GinMode     string // GIN_MODE (default "release")
	LogLevel    string // LOG_LEVEL (default "info")
	DatabaseURL string // DATABASE_URL (default "sqlite://portfolio.db")
	AutoMigrate bool   // AUTO_MIGRATE (default true)
	StaticDir   string // STATIC_DIR (default "./static")

	// Contact notification
	ContactToEmail   string // PORTFOLIO_CONTACT_TO_EMAIL (optional, empty = no email)
	DefaultFromEmail string // DEFAULT_FROM_EMAIL
	ServerEmail      string // SERVER_EMAIL (default "no-reply@localhost")
	EmailBackend     string // EMAIL_BACKEND ("smtp" or "console", default "smtp")
	SMTPHost         string // SMTP_HOST
	SMTPPort         string // SMTP_PORT (default "587")
	SMTPUser         string // SMTP_USER
	SMTPPass         string // SMTP_PASS

	// Admin dashboard
	AdminUsername string // ADMIN_USERNAME (default "admin")
	AdminPassword string // ADMIN_PASSWORD (default "admin123" in debug mode only)

	HomeProjectLimit int               // HOME_PROJECT_LIMIT (default 6)
	SkillCategories  map[string]string // SKILL_CATEGORY_LABELS ("PL=Programming Languages,FW=...")
	VisitorRetention time.Duration     // VISITOR_RETENTION (default 8760h; 0 = keep forever)
}

// DefaultSkillCategories maps skill category codes to their section labels.
var DefaultSkillCategories = map[string]string{
	"PL": "Programming Languages",
	"FW": "Frameworks & Libraries",
	"TT": "Tools & Technologies",
	"SP": "Soft Skills",
}

func Load() (*Config, error) {
	c := &Config{
		Port:             envOrDefault("PORT", "8080"),
		GinMode:          envOrDefault("GIN_MODE", "release"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		DatabaseURL:      envOrDefault("DATABASE_URL", "sqlite://portfolio.db"),
		StaticDir:        envOrDefault("STATIC_DIR", "./static"),
		ContactToEmail:   os.Getenv("PORTFOLIO_CONTACT_TO_EMAIL"),
		DefaultFromEmail: os.Getenv("DEFAULT_FROM_EMAIL"),
		ServerEmail:      envOrDefault("SERVER_EMAIL", "no-reply@localhost"),
		EmailBackend:     envOrDefault("EMAIL_BACKEND", "smtp"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         envOrDefault("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		AdminUsername:    envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		SkillCategories:  DefaultSkillCategories,
	}

	if c.AdminPassword == "" && c.Debug() {
		c.AdminPassword = "admin123"
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("GIN_MODE: unknown mode %q", c.GinMode)
	}

	switch c.EmailBackend {
	case "smtp", "console":
	default:
		return nil, fmt.Errorf("EMAIL_BACKEND: unknown backend %q", c.EmailBackend)
	}

	migrate, err := strconv.ParseBool(envOrDefault("AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}
	c.AutoMigrate = migrate

	limit, err := strconv.Atoi(envOrDefault("HOME_PROJECT_LIMIT", "6"))
	if err != nil {
		return nil, fmt.Errorf("HOME_PROJECT_LIMIT: %w", err)
	}
	if limit < 1 {
		return nil, fmt.Errorf("HOME_PROJECT_LIMIT: must be positive, got %d", limit)
	}
	c.HomeProjectLimit = limit

	retention, err := time.ParseDuration(envOrDefault("VISITOR_RETENTION", "8760h"))
	if err != nil {
		return nil, fmt.Errorf("VISITOR_RETENTION: %w", err)
	}
	c.VisitorRetention = retention

	if raw := os.Getenv("SKILL_CATEGORY_LABELS"); raw != "" {
		labels, err := parseLabels(raw)
		if err != nil {
			return nil, fmt.Errorf("SKILL_CATEGORY_LABELS: %w", err)
		}
		c.SkillCategories = labels
	}

	return c, nil
}

// Debug reports whether the server runs in gin's debug mode.
func (c *Config) Debug() bool {
	return c.GinMode == "debug"
}

// FromEmail is the sender address for contact notifications.
func (c *Config) FromEmail() string {
	if c.DefaultFromEmail != "" {
		return c.DefaultFromEmail
	}
	if c.ServerEmail != "" {
		return c.ServerEmail
	}
	return "no-reply@localhost"
}

// parseLabels reads "CODE=Label,CODE=Label" pairs.
func parseLabels(raw string) (map[string]string, error) {
	labels := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, label, ok := strings.Cut(pair, "=")
		code, label = strings.TrimSpace(code), strings.TrimSpace(label)
		if !ok || code == "" || label == "" {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		labels[code] = label
	}
	return labels, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
