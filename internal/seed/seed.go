// Package seed loads portfolio content from a YAML document into the store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/model"
)

//go:embed schema.json
var schemaJSON string

type Document struct {
	Projects     []Project     `yaml:"projects"`
	Skills       []Skill       `yaml:"skills"`
	Experience   []Experience  `yaml:"experience"`
	Education    []Education   `yaml:"education"`
	Certificates []Certificate `yaml:"certificates"`
	Resumes      []Resume      `yaml:"resumes"`
}

type Project struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	IntroBlurb  string `yaml:"intro_blurb"`
	Description string `yaml:"description"`
	TechStack   string `yaml:"tech_stack"`
	GithubURL   string `yaml:"github_url"`
	LiveURL     string `yaml:"live_url"`
	Featured    bool   `yaml:"featured"`
	SortOrder   int    `yaml:"sort_order"`
}

type Skill struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Level     string `yaml:"level"`
	SortOrder int    `yaml:"sort_order"`
}

type Experience struct {
	Role         string `yaml:"role"`
	Organization string `yaml:"organization"`
	Location     string `yaml:"location"`
	Start        string `yaml:"start"`
	End          string `yaml:"end"`
	Current      bool   `yaml:"current"`
	Description  string `yaml:"description"`
	SortOrder    int    `yaml:"sort_order"`
}

type Education struct {
	Institution string `yaml:"institution"`
	Degree      string `yaml:"degree"`
	Field       string `yaml:"field"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	GPA         string `yaml:"gpa"`
	Focus       string `yaml:"focus"`
	SortOrder   int    `yaml:"sort_order"`
}

type Certificate struct {
	Title         string `yaml:"title"`
	Issuer        string `yaml:"issuer"`
	Issued        string `yaml:"issued"`
	CredentialURL string `yaml:"credential_url"`
	SortOrder     int    `yaml:"sort_order"`
}

type Resume struct {
	Title   string `yaml:"title"`
	FileURL string `yaml:"file_url"`
	Updated string `yaml:"updated"`
}

// Writer is the subset of the store the importer needs.
type Writer interface {
	ClearContent(ctx context.Context) error
	CreateProject(ctx context.Context, p *model.Project) error
	CreateSkill(ctx context.Context, s *model.Skill) error
	CreateExperience(ctx context.Context, e *model.Experience) error
	CreateEducation(ctx context.Context, e *model.Education) error
	CreateCertificate(ctx context.Context, c *model.Certificate) error
	CreateResume(ctx context.Context, r *model.Resume) error
}

// Counts reports how many records of each kind were written.
type Counts struct {
	Projects     int
	Skills       int
	Experience   int
	Education    int
	Certificates int
	Resumes      int
}

func (c Counts) String() string {
	return fmt.Sprintf("projects=%d skills=%d experience=%d education=%d certificates=%d resumes=%d",
		c.Projects, c.Skills, c.Experience, c.Education, c.Certificates, c.Resumes)
}

// LoadFile reads and parses the seed document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	return &doc, nil
}

func validate(raw map[string]any) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validate seed: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("seed schema validation failed: %s", strings.Join(msgs, "; "))
}

// Apply writes doc through w. With reset, existing content is removed first.
// Contact messages and visitor data are never touched.
func Apply(ctx context.Context, w Writer, doc *Document, reset bool, logger *zap.Logger) (Counts, error) {
	var n Counts
	if reset {
		if err := w.ClearContent(ctx); err != nil {
			return n, err
		}
		logger.Info("Cleared existing content")
	}

	for _, p := range doc.Projects {
		slug, err := content.ProjectSlug(p.Slug, p.Title)
		if err != nil {
			return n, fmt.Errorf("project %q: %w", p.Title, err)
		}
		err = w.CreateProject(ctx, &model.Project{
			Title:       p.Title,
			Slug:        slug,
			IntroBlurb:  p.IntroBlurb,
			Description: p.Description,
			TechStack:   p.TechStack,
			GithubURL:   p.GithubURL,
			LiveURL:     p.LiveURL,
			IsFeatured:  p.Featured,
			SortOrder:   p.SortOrder,
		})
		if err != nil {
			return n, err
		}
		n.Projects++
	}

	for _, s := range doc.Skills {
		err := w.CreateSkill(ctx, &model.Skill{
			Name:      s.Name,
			Category:  s.Category,
			Level:     s.Level,
			SortOrder: s.SortOrder,
		})
		if err != nil {
			return n, err
		}
		n.Skills++
	}

	for _, e := range doc.Experience {
		start, err := parseDate(e.Start)
		if err != nil {
			return n, fmt.Errorf("experience %q start: %w", e.Role, err)
		}
		end, err := parseDate(e.End)
		if err != nil {
			return n, fmt.Errorf("experience %q end: %w", e.Role, err)
		}
		err = w.CreateExperience(ctx, &model.Experience{
			Role:         e.Role,
			Organization: e.Organization,
			Location:     e.Location,
			StartDate:    start,
			EndDate:      end,
			IsCurrent:    e.Current,
			Description:  e.Description,
			SortOrder:    e.SortOrder,
		})
		if err != nil {
			return n, err
		}
		n.Experience++
	}

	for _, e := range doc.Education {
		start, err := parseDate(e.Start)
		if err != nil {
			return n, fmt.Errorf("education %q start: %w", e.Degree, err)
		}
		end, err := parseDate(e.End)
		if err != nil {
			return n, fmt.Errorf("education %q end: %w", e.Degree, err)
		}
		err = w.CreateEducation(ctx, &model.Education{
			Institution: e.Institution,
			Degree:      e.Degree,
			Field:       e.Field,
			StartYear:   start,
			EndYear:     end,
			GPA:         e.GPA,
			Focus:       e.Focus,
			SortOrder:   e.SortOrder,
		})
		if err != nil {
			return n, err
		}
		n.Education++
	}

	for _, c := range doc.Certificates {
		issued, err := parseDate(c.Issued)
		if err != nil {
			return n, fmt.Errorf("certificate %q: %w", c.Title, err)
		}
		err = w.CreateCertificate(ctx, &model.Certificate{
			Title:         c.Title,
			Issuer:        c.Issuer,
			IssuedDate:    issued,
			CredentialURL: c.CredentialURL,
			SortOrder:     c.SortOrder,
		})
		if err != nil {
			return n, err
		}
		n.Certificates++
	}

	for _, r := range doc.Resumes {
		updated, err := parseDate(r.Updated)
		if err != nil {
			return n, fmt.Errorf("resume %q: %w", r.Title, err)
		}
		res := &model.Resume{Title: r.Title, FileURL: r.FileURL}
		if updated != nil {
			res.UpdatedAt = *updated
		}
		if err := w.CreateResume(ctx, res); err != nil {
			return n, err
		}
		n.Resumes++
	}

	logger.Info("Seed applied", zap.Stringer("counts", n))
	return n, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// parseDate accepts a full date, a year and month, or a bare year. Blank
// input means no date.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}
