// Package schema records which columns each content table actually has, so
// queries can skip optional attributes a deployment does not define.
//
// A Schema is resolved once at startup, either from the full column set
// (Default) or by listing the live database's columns (Detect). Nothing is
// inspected per request.
package schema

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Table names in the content store.
const (
	Projects        = "projects"
	Skills          = "skills"
	Experiences     = "experiences"
	Education       = "education"
	Certificates    = "certificates"
	Resumes         = "resumes"
	ContactMessages = "contact_messages"
)

// Fields is an immutable set of column names.
type Fields struct {
	names map[string]struct{}
}

func FieldsOf(names ...string) Fields {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Fields{names: set}
}

// Has reports whether the column exists.
func (f Fields) Has(name string) bool {
	_, ok := f.names[name]
	return ok
}

// Without returns a copy of f lacking the given columns.
func (f Fields) Without(names ...string) Fields {
	set := maps.Clone(f.names)
	if set == nil {
		set = map[string]struct{}{}
	}
	for _, n := range names {
		delete(set, n)
	}
	return Fields{names: set}
}

// Names lists the columns in sorted order.
func (f Fields) Names() []string {
	return slices.Sorted(maps.Keys(f.names))
}

// Schema is the column set of every content table plus the skill category
// labels. An empty SkillCategories map means categories are shown by code.
type Schema struct {
	Projects     Fields
	Skills       Fields
	Experiences  Fields
	Education    Fields
	Certificates Fields
	Resumes      Fields

	SkillCategories map[string]string
}

// Columns created by the bundled migrations.
var (
	ProjectColumns = []string{
		"id", "title", "slug", "intro_blurb", "description", "tech_stack",
		"github_url", "live_url", "is_featured", "sort_order", "created_at",
	}
	SkillColumns      = []string{"id", "name", "category", "level", "sort_order"}
	ExperienceColumns = []string{
		"id", "role", "organization", "location", "start_date", "end_date",
		"is_current", "description", "sort_order",
	}
	EducationColumns = []string{
		"id", "institution", "degree", "field", "start_year", "end_year",
		"gpa", "focus", "sort_order",
	}
	CertificateColumns = []string{"id", "title", "issuer", "issued_date", "credential_url", "sort_order"}
	ResumeColumns      = []string{"id", "title", "file_url", "updated_at"}
)

// Default declares every column the bundled migrations create.
func Default(categories map[string]string) Schema {
	return Schema{
		Projects:        FieldsOf(ProjectColumns...),
		Skills:          FieldsOf(SkillColumns...),
		Experiences:     FieldsOf(ExperienceColumns...),
		Education:       FieldsOf(EducationColumns...),
		Certificates:    FieldsOf(CertificateColumns...),
		Resumes:         FieldsOf(ResumeColumns...),
		SkillCategories: categories,
	}
}

// ColumnLister returns the column names of a table.
type ColumnLister func(ctx context.Context, table string) ([]string, error)

// Detect builds a Schema from the live tables. A table reporting no columns
// is treated as missing and fails detection.
func Detect(ctx context.Context, list ColumnLister, categories map[string]string) (Schema, error) {
	s := Schema{SkillCategories: categories}
	for _, t := range []struct {
		table string
		dest  *Fields
	}{
		{Projects, &s.Projects},
		{Skills, &s.Skills},
		{Experiences, &s.Experiences},
		{Education, &s.Education},
		{Certificates, &s.Certificates},
		{Resumes, &s.Resumes},
	} {
		cols, err := list(ctx, t.table)
		if err != nil {
			return Schema{}, fmt.Errorf("list columns of %s: %w", t.table, err)
		}
		if len(cols) == 0 {
			return Schema{}, fmt.Errorf("table %s not found", t.table)
		}
		*t.dest = FieldsOf(cols...)
	}
	return s, nil
}
