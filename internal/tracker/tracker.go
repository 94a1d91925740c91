// Package tracker is the SQLite-backed tracking store: one row per
// alert under investigation. It satisfies the deduplicator's
// record-listing port and gives the orchestrator its write side
// (create, comment, close).
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/oncallops/triage/internal/dedup"
)

// Issue is one tracking record as stored
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	Labels    []string   `json:"labels,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Store is the SQLite tracking store
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the tracking store at path.
// The special path ":memory:" creates an in-memory store for tests.
func New(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create tracker directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracker database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping tracker database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tracker schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateIssue inserts a new open tracking record with the given labels
// and returns its number.
func (s *Store) CreateIssue(ctx context.Context, title, body string, labels []string) (int, error) {
	if title == "" {
		return 0, fmt.Errorf("title is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO issues (title, body, state, created_at, updated_at) VALUES (?, ?, 'open', ?, ?)`,
		title, body, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert issue: %w", err)
	}
	number, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read issue number: %w", err)
	}

	for _, label := range labels {
		if label == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO issue_labels (issue_number, label) VALUES (?, ?)`,
			number, label); err != nil {
			return 0, fmt.Errorf("failed to attach label %q: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit issue: %w", err)
	}
	return int(number), nil
}

// GetIssue fetches one record by number. Returns (nil, nil) when the
// record does not exist.
func (s *Store) GetIssue(ctx context.Context, number int) (*Issue, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT number, title, body, state, created_at, updated_at, closed_at FROM issues WHERE number = ?`,
		number)

	var issue Issue
	var closedAt sql.NullTime
	err := row.Scan(&issue.Number, &issue.Title, &issue.Body, &issue.State,
		&issue.CreatedAt, &issue.UpdatedAt, &closedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load issue %d: %w", number, err)
	}
	if closedAt.Valid {
		issue.ClosedAt = &closedAt.Time
	}

	labels, err := s.labels(ctx, number)
	if err != nil {
		return nil, err
	}
	issue.Labels = labels
	return &issue, nil
}

// AddComment appends a comment to an existing record
func (s *Store) AddComment(ctx context.Context, number int, author, body string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO issue_comments (issue_number, author, body, created_at)
		 SELECT number, ?, ?, ? FROM issues WHERE number = ?`,
		author, body, time.Now().UTC(), number)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("issue %d does not exist", number)
	}
	return nil
}

// CloseIssue marks a record closed
func (s *Store) CloseIssue(ctx context.Context, number int) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET state = 'closed', closed_at = ?, updated_at = ? WHERE number = ? AND state = 'open'`,
		now, now, number)
	if err != nil {
		return fmt.Errorf("failed to close issue %d: %w", number, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close issue %d: %w", number, err)
	}
	if n == 0 {
		return fmt.Errorf("issue %d is not open", number)
	}
	return nil
}

// ListIssues implements dedup.IssueLister: a single bounded batch of
// records matching the label/state/since filters, newest first.
func (s *Store) ListIssues(ctx context.Context, q dedup.IssueQuery) ([]*dedup.TrackedIssue, error) {
	var (
		conds []string
		args  []any
	)

	query := `SELECT i.number, i.title, i.body, i.state, i.created_at FROM issues i`
	if q.Label != "" {
		query += ` JOIN issue_labels l ON l.issue_number = i.number`
		conds = append(conds, `l.label = ?`)
		args = append(args, q.Label)
	}
	if q.State != "" && q.State != "all" {
		conds = append(conds, `i.state = ?`)
		args = append(args, q.State)
	}
	if !q.Since.IsZero() {
		conds = append(conds, `i.created_at >= ?`)
		args = append(args, q.Since.UTC())
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY i.created_at DESC, i.number DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var out []*dedup.TrackedIssue
	for rows.Next() {
		var issue dedup.TrackedIssue
		if err := rows.Scan(&issue.Number, &issue.Title, &issue.Body, &issue.State, &issue.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		out = append(out, &issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read issue rows: %w", err)
	}
	return out, nil
}

func (s *Store) labels(ctx context.Context, number int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label FROM issue_labels WHERE issue_number = ? ORDER BY label`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels for issue %d: %w", number, err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
