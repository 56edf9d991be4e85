// Package sqlite persists the recent-timers slot in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
	"timeat/recents"
)

// Store implements recents.Store using SQLite
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the schema
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the table if it doesn't exist
func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS recent_timers (
			position INTEGER PRIMARY KEY,
			entry_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			project_id INTEGER,
			tag_ids TEXT NOT NULL DEFAULT '',
			usage_count INTEGER NOT NULL DEFAULT 0
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Migration: add usage_count to databases created before usage tracking
	_, _ = s.db.Exec("ALTER TABLE recent_timers ADD COLUMN usage_count INTEGER NOT NULL DEFAULT 0")

	return nil
}

// Load returns the slot ordered front-first
func (s *Store) Load(ctx context.Context) ([]recents.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entry_id, description, project_id, tag_ids, usage_count FROM recent_timers ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []recents.Entry
	for rows.Next() {
		var e recents.Entry
		var projectID sql.NullInt64
		var tagIDs string
		if err := rows.Scan(&e.ID, &e.Description, &projectID, &tagIDs, &e.UsageCount); err != nil {
			return nil, err
		}
		if projectID.Valid {
			p := projectID.Int64
			e.ProjectID = &p
		}
		e.TagIDs, err = parseTagIDs(tagIDs)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the whole slot in one transaction
func (s *Store) Save(ctx context.Context, entries []recents.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM recent_timers"); err != nil {
		return err
	}
	for i, e := range entries {
		var projectID sql.NullInt64
		if e.ProjectID != nil {
			projectID = sql.NullInt64{Int64: *e.ProjectID, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO recent_timers (position, entry_id, description, project_id, tag_ids, usage_count) VALUES (?, ?, ?, ?, ?, ?)",
			i, e.ID, e.Description, projectID, formatTagIDs(e.TagIDs), e.UsageCount)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Tag sets are stored as a comma-separated column, preserving order.
func formatTagIDs(tagIDs []int64) string {
	parts := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func parseTagIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

var _ recents.Store = (*Store)(nil)
