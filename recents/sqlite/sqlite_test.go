package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"timeat/recents"
)

// mustNewStore creates an in-memory store and registers cleanup
func mustNewStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, context.Background()
}

func ptr(v int64) *int64 { return &v }

// TestStoreImplementsInterface verifies Store satisfies recents.Store.
func TestStoreImplementsInterface(t *testing.T) {
	var _ recents.Store = (*Store)(nil)
}

// TestEmptyDatabaseLoadsEmpty verifies a fresh database reads as an empty
// slot.
func TestEmptyDatabaseLoadsEmpty(t *testing.T) {
	s, ctx := mustNewStore(t)

	entries, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

// TestSaveLoadRoundTrip verifies order, optional project and tag order
// survive the round trip.
func TestSaveLoadRoundTrip(t *testing.T) {
	s, ctx := mustNewStore(t)

	saved := []recents.Entry{
		{ID: 10, Description: "review", ProjectID: ptr(7), TagIDs: []int64{3, 2}, UsageCount: 4},
		{ID: 20, Description: "emails"},
	}
	if err := s.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d entries, want 2", len(loaded))
	}
	if loaded[0].ID != 10 || loaded[1].ID != 20 {
		t.Errorf("order = [%d %d], want [10 20]", loaded[0].ID, loaded[1].ID)
	}
	if loaded[0].ProjectID == nil || *loaded[0].ProjectID != 7 {
		t.Errorf("ProjectID = %v, want 7", loaded[0].ProjectID)
	}
	if len(loaded[0].TagIDs) != 2 || loaded[0].TagIDs[0] != 3 || loaded[0].TagIDs[1] != 2 {
		t.Errorf("TagIDs = %v, want [3 2]", loaded[0].TagIDs)
	}
	if loaded[1].ProjectID != nil {
		t.Errorf("ProjectID = %v, want nil", loaded[1].ProjectID)
	}
	if loaded[1].TagIDs != nil {
		t.Errorf("TagIDs = %v, want nil", loaded[1].TagIDs)
	}
}

// TestSaveReplacesSlot verifies each save replaces the whole slot.
func TestSaveReplacesSlot(t *testing.T) {
	s, ctx := mustNewStore(t)

	if err := s.Save(ctx, []recents.Entry{{ID: 1, Description: "old"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, []recents.Entry{{ID: 2, Description: "new"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Description != "new" {
		t.Errorf("loaded = %+v, want just the new entry", loaded)
	}
}

// TestMigrationAddsUsageCount verifies databases created before usage
// tracking gain the column and read counts as 0.
func TestMigrationAddsUsageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recents.db")

	// Build an old-schema database by hand.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw database: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE recent_timers (
			position INTEGER PRIMARY KEY,
			entry_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			project_id INTEGER,
			tag_ids TEXT NOT NULL DEFAULT ''
		);
		INSERT INTO recent_timers (position, entry_id, description, project_id, tag_ids)
		VALUES (0, 1, 'review', NULL, '3,2');
	`)
	if err != nil {
		t.Fatalf("seed old schema: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw database: %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New on old schema: %v", err)
	}
	defer func() { _ = s.Close() }()

	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d entries, want 1", len(loaded))
	}
	if loaded[0].UsageCount != 0 {
		t.Errorf("UsageCount = %d, want 0 after migration", loaded[0].UsageCount)
	}
	if len(loaded[0].TagIDs) != 2 || loaded[0].TagIDs[0] != 3 {
		t.Errorf("TagIDs = %v, want [3 2]", loaded[0].TagIDs)
	}
}
