package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/schema"
)

// contentTables are emptied by ClearContent. None references another.
var contentTables = []string{
	schema.Projects, schema.Skills, schema.Experiences,
	schema.Education, schema.Certificates, schema.Resumes,
}

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cols := present(s.schema.Projects, projectColumns)
	if s.featured == "featured" {
		cols = append(cols, legacyFeaturedColumn)
	}
	id, err := insert(ctx, s, schema.Projects, cols, p)
	if err != nil {
		return fmt.Errorf("create project %q: %w", p.Slug, err)
	}
	p.ID = id
	return nil
}

func (s *Store) CreateSkill(ctx context.Context, sk *model.Skill) error {
	id, err := insert(ctx, s, schema.Skills, present(s.schema.Skills, skillColumns), sk)
	if err != nil {
		return fmt.Errorf("create skill %q: %w", sk.Name, err)
	}
	sk.ID = id
	return nil
}

func (s *Store) CreateExperience(ctx context.Context, e *model.Experience) error {
	if e.IsCurrent {
		e.EndDate = nil
	}
	id, err := insert(ctx, s, schema.Experiences, present(s.schema.Experiences, experienceColumns), e)
	if err != nil {
		return fmt.Errorf("create experience %q: %w", e.Role, err)
	}
	e.ID = id
	return nil
}

func (s *Store) CreateEducation(ctx context.Context, e *model.Education) error {
	id, err := insert(ctx, s, schema.Education, present(s.schema.Education, educationColumns), e)
	if err != nil {
		return fmt.Errorf("create education %q: %w", e.Degree, err)
	}
	e.ID = id
	return nil
}

func (s *Store) CreateCertificate(ctx context.Context, c *model.Certificate) error {
	id, err := insert(ctx, s, schema.Certificates, present(s.schema.Certificates, certificateColumns), c)
	if err != nil {
		return fmt.Errorf("create certificate %q: %w", c.Title, err)
	}
	c.ID = id
	return nil
}

func (s *Store) CreateResume(ctx context.Context, r *model.Resume) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	id, err := insert(ctx, s, schema.Resumes, present(s.schema.Resumes, resumeColumns), r)
	if err != nil {
		return fmt.Errorf("create resume %q: %w", r.Title, err)
	}
	r.ID = id
	return nil
}

// ClearContent deletes every portfolio record. Contact messages and visitor
// rows are kept.
func (s *Store) ClearContent(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range contentTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// insert writes v into table, skipping the id column, and returns the new id.
func insert[T any](ctx context.Context, s *Store, table string, cols []column[T], v *T) (int64, error) {
	var names, marks []string
	var args []any
	for _, c := range cols {
		if c.name == "id" {
			continue
		}
		names = append(names, c.name)
		marks = append(marks, "?")
		args = append(args, c.value(v))
	}

	query := "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ") RETURNING id"

	var id int64
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
