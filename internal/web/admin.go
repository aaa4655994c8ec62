package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/store"
)

const adminCookie = "admin_token"

// AdminStore is the persistence the dashboard and visitor tracking need.
type AdminStore interface {
	RecordVisit(ctx context.Context, v store.Visit) error
	PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	RecentVisits(ctx context.Context, limit int) ([]store.Visit, error)
	Stats(ctx context.Context, now time.Time) (*store.Stats, error)
	ListContactMessages(ctx context.Context, limit int) ([]model.ContactMessage, error)
}

type AdminOptions struct {
	Username string
	Password string // empty disables login
	// Retention is how long visitor rows are kept. Zero keeps them forever.
	Retention time.Duration
}

// Admin is the read-only dashboard plus privacy-conscious visitor tracking.
// Session tokens and the IP hashing salt live only for the process lifetime.
type Admin struct {
	store     AdminStore
	username  string
	password  string
	retention time.Duration
	token     string
	salt      string
	logger    *zap.Logger
	now       func() time.Time
}

func NewAdmin(st AdminStore, opts AdminOptions, logger *zap.Logger) (*Admin, error) {
	token, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate admin token: %w", err)
	}
	salt, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate hashing salt: %w", err)
	}

	logger = logger.Named("admin")
	if opts.Password == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin login disabled")
	}
	return &Admin{
		store:     st,
		username:  opts.Username,
		password:  opts.Password,
		retention: opts.Retention,
		token:     token,
		salt:      salt,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashIP is stable per IP for the life of the process.
func (a *Admin) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Purge removes visitor rows older than the retention window.
func (a *Admin) Purge(ctx context.Context) (int64, error) {
	if a.retention <= 0 {
		return 0, nil
	}
	n, err := a.store.PurgeVisitsBefore(ctx, a.now().Add(-a.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.logger.Info("Privacy cleanup removed old visitor records",
			zap.Int64("removed", n),
			zap.Duration("retention", a.retention))
	}
	return n, nil
}

func untracked(path string) bool {
	for _, prefix := range []string{"/static/", "/admin", "/favicon", "/privacy"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Track records one visit per request with a hashed client IP. Requests
// sending DNT: 1 are not recorded. A failed insert is logged and the
// request carries on.
func (a *Admin) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if untracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		err := a.store.RecordVisit(c.Request.Context(), store.Visit{
			HashedIP:  a.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			VisitedAt: a.now(),
		})
		if err != nil {
			a.logger.Warn("Error recording visitor", zap.String("path", path), zap.Error(err))
		}
		c.Next()
	}
}

func (a *Admin) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *Admin) validCredentials(username, password string) bool {
	if a.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a *Admin) routes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin_login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if !a.validCredentials(c.PostForm("username"), c.PostForm("password")) {
			a.logger.Warn("Failed admin login", zap.String("client", a.hashIP(c.ClientIP())))
			c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
		a.logger.Info("Admin login", zap.String("client", a.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	g := r.Group("/admin")
	g.Use(a.requireLogin())

	g.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.fail(c, "Failed to load statistics", err)
			return
		}
		c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
			"title": "Dashboard",
			"stats": stats,
		})
	})

	g.GET("/messages", func(c *gin.Context) {
		messages, err := a.store.ListContactMessages(c.Request.Context(), 200)
		if err != nil {
			a.fail(c, "Failed to load messages", err)
			return
		}
		c.HTML(http.StatusOK, "admin_messages.html", gin.H{
			"title":    "Messages",
			"messages": messages,
		})
	})

	g.GET("/visitors", func(c *gin.Context) {
		visits, err := a.store.RecentVisits(c.Request.Context(), 200)
		if err != nil {
			a.fail(c, "Failed to load visitors", err)
			return
		}
		c.HTML(http.StatusOK, "admin_visitors.html", gin.H{
			"title":  "Visitors",
			"visits": visits,
		})
	})

	g.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	g.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})

	g.POST("/privacy/purge", func(c *gin.Context) {
		n, err := a.Purge(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})
}

func (a *Admin) fail(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	a.logger.Error(msg, zap.Error(err))
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"title": "Server Error",
		"error": msg,
	})
}
