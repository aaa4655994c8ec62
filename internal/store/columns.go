package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/schema"
)

// column binds a table column to a field of T for both reads and writes.
type column[T any] struct {
	name     string
	required bool
	scan     func(*T) any
	value    func(*T) any
}

func required[T any](c column[T]) column[T] {
	c.required = true
	return c
}

func idCol[T any](name string, f func(*T) *int64) column[T] {
	return column[T]{
		name:  name,
		scan:  func(v *T) any { return f(v) },
		value: func(v *T) any { return *f(v) },
	}
}

func intCol[T any](name string, f func(*T) *int) column[T] {
	return column[T]{
		name:  name,
		scan:  func(v *T) any { return &nullInt{dst: f(v)} },
		value: func(v *T) any { return *f(v) },
	}
}

func textCol[T any](name string, f func(*T) *string) column[T] {
	return column[T]{
		name:  name,
		scan:  func(v *T) any { return &nullText{dst: f(v)} },
		value: func(v *T) any { return *f(v) },
	}
}

func boolCol[T any](name string, f func(*T) *bool) column[T] {
	return column[T]{
		name:  name,
		scan:  func(v *T) any { return &nullBool{dst: f(v)} },
		value: func(v *T) any { return *f(v) },
	}
}

func timeCol[T any](name string, f func(*T) *time.Time) column[T] {
	return column[T]{
		name: name,
		scan: func(v *T) any { return &timeValue{dst: f(v)} },
		value: func(v *T) any {
			return f(v).UTC()
		},
	}
}

func dateCol[T any](name string, f func(*T) **time.Time) column[T] {
	return column[T]{
		name: name,
		scan: func(v *T) any { return &nullDate{dst: f(v)} },
		value: func(v *T) any {
			if t := *f(v); t != nil {
				return t.UTC()
			}
			return nil
		},
	}
}

// present keeps the required columns and the optional ones the schema has.
func present[T any](fields schema.Fields, cols []column[T]) []column[T] {
	var out []column[T]
	for _, c := range cols {
		if c.required || fields.Has(c.name) {
			out = append(out, c)
		}
	}
	return out
}

func columnNames[T any](cols []column[T]) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow[T any](row rowScanner, cols []column[T]) (T, error) {
	var v T
	dests := make([]any, len(cols))
	for i, c := range cols {
		dests[i] = c.scan(&v)
	}
	err := row.Scan(dests...)
	return v, err
}

var (
	projectColumns = []column[model.Project]{
		required(idCol("id", func(p *model.Project) *int64 { return &p.ID })),
		required(textCol("title", func(p *model.Project) *string { return &p.Title })),
		textCol("slug", func(p *model.Project) *string { return &p.Slug }),
		textCol("intro_blurb", func(p *model.Project) *string { return &p.IntroBlurb }),
		textCol("description", func(p *model.Project) *string { return &p.Description }),
		textCol("tech_stack", func(p *model.Project) *string { return &p.TechStack }),
		textCol("github_url", func(p *model.Project) *string { return &p.GithubURL }),
		textCol("live_url", func(p *model.Project) *string { return &p.LiveURL }),
		boolCol("is_featured", func(p *model.Project) *bool { return &p.IsFeatured }),
		intCol("sort_order", func(p *model.Project) *int { return &p.SortOrder }),
		timeCol("created_at", func(p *model.Project) *time.Time { return &p.CreatedAt }),
	}

	// legacyFeaturedColumn is read into IsFeatured when a schema names the
	// flag "featured" instead of "is_featured".
	legacyFeaturedColumn = boolCol("featured", func(p *model.Project) *bool { return &p.IsFeatured })

	skillColumns = []column[model.Skill]{
		required(idCol("id", func(s *model.Skill) *int64 { return &s.ID })),
		required(textCol("name", func(s *model.Skill) *string { return &s.Name })),
		textCol("category", func(s *model.Skill) *string { return &s.Category }),
		textCol("level", func(s *model.Skill) *string { return &s.Level }),
		intCol("sort_order", func(s *model.Skill) *int { return &s.SortOrder }),
	}

	experienceColumns = []column[model.Experience]{
		required(idCol("id", func(e *model.Experience) *int64 { return &e.ID })),
		required(textCol("role", func(e *model.Experience) *string { return &e.Role })),
		required(textCol("organization", func(e *model.Experience) *string { return &e.Organization })),
		textCol("location", func(e *model.Experience) *string { return &e.Location }),
		dateCol("start_date", func(e *model.Experience) **time.Time { return &e.StartDate }),
		dateCol("end_date", func(e *model.Experience) **time.Time { return &e.EndDate }),
		boolCol("is_current", func(e *model.Experience) *bool { return &e.IsCurrent }),
		textCol("description", func(e *model.Experience) *string { return &e.Description }),
		intCol("sort_order", func(e *model.Experience) *int { return &e.SortOrder }),
	}

	educationColumns = []column[model.Education]{
		required(idCol("id", func(e *model.Education) *int64 { return &e.ID })),
		required(textCol("institution", func(e *model.Education) *string { return &e.Institution })),
		required(textCol("degree", func(e *model.Education) *string { return &e.Degree })),
		textCol("field", func(e *model.Education) *string { return &e.Field }),
		dateCol("start_year", func(e *model.Education) **time.Time { return &e.StartYear }),
		dateCol("end_year", func(e *model.Education) **time.Time { return &e.EndYear }),
		textCol("gpa", func(e *model.Education) *string { return &e.GPA }),
		textCol("focus", func(e *model.Education) *string { return &e.Focus }),
		intCol("sort_order", func(e *model.Education) *int { return &e.SortOrder }),
	}

	certificateColumns = []column[model.Certificate]{
		required(idCol("id", func(c *model.Certificate) *int64 { return &c.ID })),
		required(textCol("title", func(c *model.Certificate) *string { return &c.Title })),
		required(textCol("issuer", func(c *model.Certificate) *string { return &c.Issuer })),
		dateCol("issued_date", func(c *model.Certificate) **time.Time { return &c.IssuedDate }),
		textCol("credential_url", func(c *model.Certificate) *string { return &c.CredentialURL }),
		intCol("sort_order", func(c *model.Certificate) *int { return &c.SortOrder }),
	}

	resumeColumns = []column[model.Resume]{
		required(idCol("id", func(r *model.Resume) *int64 { return &r.ID })),
		required(textCol("title", func(r *model.Resume) *string { return &r.Title })),
		textCol("file_url", func(r *model.Resume) *string { return &r.FileURL }),
		timeCol("updated_at", func(r *model.Resume) *time.Time { return &r.UpdatedAt }),
	}
)

// Scanners below treat NULL as the field's zero value; older schemas allow
// NULL in columns the bundled migrations declare NOT NULL.

type nullText struct{ dst *string }

func (n *nullText) Scan(src any) error {
	var s sql.NullString
	if err := s.Scan(src); err != nil {
		return err
	}
	*n.dst = s.String
	return nil
}

type nullInt struct{ dst *int }

func (n *nullInt) Scan(src any) error {
	var i sql.NullInt64
	if err := i.Scan(src); err != nil {
		return err
	}
	*n.dst = int(i.Int64)
	return nil
}

type nullBool struct{ dst *bool }

func (n *nullBool) Scan(src any) error {
	var b sql.NullBool
	if err := b.Scan(src); err != nil {
		return err
	}
	*n.dst = b.Bool
	return nil
}

type timeValue struct{ dst *time.Time }

func (t *timeValue) Scan(src any) error {
	v, err := parseTime(src)
	if err != nil {
		return err
	}
	if v != nil {
		*t.dst = *v
	}
	return nil
}

type nullDate struct{ dst **time.Time }

func (d *nullDate) Scan(src any) error {
	v, err := parseTime(src)
	if err != nil {
		return err
	}
	*d.dst = v
	return nil
}

// timeLayouts covers what SQLite drivers write for DATE and DATETIME values.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(src any) (*time.Time, error) {
	var s string
	switch v := src.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t := v.UTC()
		return &t, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil, fmt.Errorf("cannot scan %T into time", src)
	}
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time value %q", s)
}
