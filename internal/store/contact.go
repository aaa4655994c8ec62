package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Zachkp/portfolio/internal/model"
)

// CreateContactMessage persists m and sets its id. CreatedAt must already be
// assigned by the caller.
func (s *Store) CreateContactMessage(ctx context.Context, m *model.ContactMessage) error {
	query := s.dialect.Rebind(`INSERT INTO contact_messages (name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	err := s.db.QueryRowContext(ctx, query,
		m.Name, m.Email, m.Subject, m.Message, m.CreatedAt.UTC()).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns the newest messages first.
func (s *Store) ListContactMessages(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	query := `SELECT id, name, email, subject, message, created_at
		FROM contact_messages ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		err := rows.Scan(&m.ID, &m.Name, &m.Email, &nullText{dst: &m.Subject}, &m.Message,
			&timeValue{dst: &m.CreatedAt})
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountContactMessages counts messages received at or after since; a zero
// since counts all of them.
func (s *Store) CountContactMessages(ctx context.Context, since time.Time) (int64, error) {
	query := "SELECT COUNT(*) FROM contact_messages"
	var args []any
	if !since.IsZero() {
		query += " WHERE created_at >= ?"
		args = append(args, since.UTC())
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}
