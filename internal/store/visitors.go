package store

import (
	"context"
	"fmt"
	"time"
)

// Visit is one tracked page view. The client IP is stored only as a salted hash.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	VisitedAt time.Time `json:"visited_at"`
}

// PathStat counts views of one path.
type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// Stats summarises traffic and contact messages for the admin dashboard.
type Stats struct {
	TotalVisitors    int64      `json:"total_visitors"`
	UniqueVisitors   int64      `json:"unique_visitors"`
	VisitorsToday    int64      `json:"visitors_today"`
	VisitorsThisWeek int64      `json:"visitors_this_week"`
	TotalMessages    int64      `json:"total_messages"`
	MessagesThisWeek int64      `json:"messages_this_week"`
	TopPaths         []PathStat `json:"top_paths"`
	RecentVisitors   []Visit    `json:"recent_visitors"`
}

func (s *Store) RecordVisit(ctx context.Context, v Visit) error {
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO visitors (hashed_ip, user_agent, path, visited_at)
		VALUES (?, ?, ?, ?)`),
		v.HashedIP, v.UserAgent, v.Path, v.VisitedAt.UTC())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// PurgeVisitsBefore deletes visitor rows older than cutoff and reports how
// many were removed.
func (s *Store) PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`DELETE FROM visitors WHERE visited_at < ?`), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge visits: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// RecentVisits returns the newest visits first.
func (s *Store) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT id, hashed_ip, user_agent, path, visited_at
		FROM visitors
		ORDER BY visited_at DESC, id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		err := rows.Scan(&v.ID, &v.HashedIP, &nullText{dst: &v.UserAgent}, &nullText{dst: &v.Path},
			&timeValue{dst: &v.VisitedAt})
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Stats gathers the dashboard numbers relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	for _, q := range []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, "SELECT COUNT(*) FROM visitors", nil},
		{&stats.UniqueVisitors, "SELECT COUNT(DISTINCT hashed_ip) FROM visitors", nil},
		{&stats.VisitorsToday, "SELECT COUNT(*) FROM visitors WHERE visited_at >= ?", []any{today}},
		{&stats.VisitorsThisWeek, "SELECT COUNT(*) FROM visitors WHERE visited_at >= ?", []any{weekAgo}},
	} {
		if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(q.query), q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("visitor stats: %w", err)
		}
	}

	var err error
	if stats.TotalMessages, err = s.CountContactMessages(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if stats.MessagesThisWeek, err = s.CountContactMessages(ctx, weekAgo); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p PathStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("scan top path: %w", err)
		}
		stats.TopPaths = append(stats.TopPaths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}

	if stats.RecentVisitors, err = s.RecentVisits(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}
