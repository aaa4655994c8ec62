// Package store is the content store: portfolio records in SQLite or
// PostgreSQL, read through query plans resolved from the deployed schema.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/schema"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProjectQuery selects projects. Limit <= 0 returns every match.
type ProjectQuery struct {
	FeaturedOnly bool
	Limit        int
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	schema  schema.Schema

	projects     plan[model.Project]
	featured     string
	skills       plan[model.Skill]
	experiences  plan[model.Experience]
	education    plan[model.Education]
	certificates plan[model.Certificate]
	resumes      plan[model.Resume]
}

// New resolves every query plan against sch once; later schema changes
// need a new Store.
func New(db *sql.DB, dialect Dialect, sch schema.Schema) *Store {
	s := &Store{
		db:           db,
		dialect:      dialect,
		schema:       sch,
		featured:     featuredColumn(sch.Projects),
		projects:     newPlan(schema.Projects, sch.Projects, projectColumns, projectOrder, "title"),
		skills:       newPlan(schema.Skills, sch.Skills, skillColumns, skillOrder, "name"),
		experiences:  newPlan(schema.Experiences, sch.Experiences, experienceColumns, experienceOrder, "role"),
		education:    newPlan(schema.Education, sch.Education, educationColumns, educationOrder, "degree"),
		certificates: newPlan(schema.Certificates, sch.Certificates, certificateColumns, certificateOrder, "title"),
		resumes:      newPlan(schema.Resumes, sch.Resumes, resumeColumns, resumeOrder, "-id"),
	}
	if s.featured == "featured" {
		s.projects.columns = append(s.projects.columns, legacyFeaturedColumn)
	}
	return s
}

// Schema returns the schema the plans were resolved against.
func (s *Store) Schema() schema.Schema {
	return s.schema
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ListProjects(ctx context.Context, q ProjectQuery) ([]model.Project, error) {
	var where string
	var args []any
	if q.FeaturedOnly && s.featured != "" {
		where = s.featured + " = ?"
		args = append(args, true)
	}
	query, limitArgs := s.projects.selectSQL(where, q.Limit)
	return list(ctx, s, query, append(args, limitArgs...), s.projects.columns)
}

// ProjectByKey looks a project up by slug, or by numeric id when the schema
// has no slug column.
func (s *Store) ProjectByKey(ctx context.Context, key string) (*model.Project, error) {
	var where string
	var arg any
	if s.schema.Projects.Has("slug") {
		where, arg = "slug = ?", key
	} else {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, ErrNotFound
		}
		where, arg = "id = ?", id
	}

	query, args := s.projects.selectSQL(where, 1)
	projects, err := list(ctx, s, query, append([]any{arg}, args...), s.projects.columns)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNotFound
	}
	return &projects[0], nil
}

func (s *Store) ListSkills(ctx context.Context) ([]model.Skill, error) {
	query, args := s.skills.selectSQL("", 0)
	return list(ctx, s, query, args, s.skills.columns)
}

func (s *Store) ListExperiences(ctx context.Context) ([]model.Experience, error) {
	query, args := s.experiences.selectSQL("", 0)
	return list(ctx, s, query, args, s.experiences.columns)
}

func (s *Store) ListEducation(ctx context.Context) ([]model.Education, error) {
	query, args := s.education.selectSQL("", 0)
	return list(ctx, s, query, args, s.education.columns)
}

func (s *Store) ListCertificates(ctx context.Context) ([]model.Certificate, error) {
	query, args := s.certificates.selectSQL("", 0)
	return list(ctx, s, query, args, s.certificates.columns)
}

// LatestResume returns the most recently updated résumé, or nil when there
// is none.
func (s *Store) LatestResume(ctx context.Context) (*model.Resume, error) {
	query, args := s.resumes.selectSQL("", 1)
	resumes, err := list(ctx, s, query, args, s.resumes.columns)
	if err != nil || len(resumes) == 0 {
		return nil, err
	}
	return &resumes[0], nil
}

func list[T any](ctx context.Context, s *Store, query string, args []any, cols []column[T]) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scanRow(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}
