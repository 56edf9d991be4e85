package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"timeat/recents"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "recents.json"))
}

func ptr(v int64) *int64 { return &v }

// TestStoreImplementsInterface verifies Store satisfies recents.Store.
func TestStoreImplementsInterface(t *testing.T) {
	var _ recents.Store = (*Store)(nil)
}

// TestLoadMissingFileIsEmpty verifies a missing slot reads as empty, not
// as an error.
func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := tempStore(t)

	entries, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

// TestSaveLoadRoundTrip verifies save followed by load is content-equal.
func TestSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	saved := []recents.Entry{
		{ID: 1, Description: "review", ProjectID: ptr(7), TagIDs: []int64{3, 2}, UsageCount: 4},
		{ID: 2, Description: "emails"},
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
	if loaded[0].ID != 1 || loaded[0].Description != "review" || loaded[0].UsageCount != 4 {
		t.Errorf("first entry = %+v", loaded[0])
	}
	if loaded[0].ProjectID == nil || *loaded[0].ProjectID != 7 {
		t.Errorf("ProjectID = %v, want 7", loaded[0].ProjectID)
	}
	// Tag order is preserved on disk even though equality ignores it.
	if len(loaded[0].TagIDs) != 2 || loaded[0].TagIDs[0] != 3 || loaded[0].TagIDs[1] != 2 {
		t.Errorf("TagIDs = %v, want [3 2]", loaded[0].TagIDs)
	}
	if loaded[1].ProjectID != nil {
		t.Errorf("ProjectID = %v, want nil", loaded[1].ProjectID)
	}
}

// TestLoadCorruptFileFails verifies unparsable data surfaces an error for
// the cache layer to degrade on.
func TestLoadCorruptFileFails(t *testing.T) {
	s := tempStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(context.Background()); err == nil {
		t.Error("Load on corrupt file succeeded, want error")
	}
}

// TestLoadLegacyRecordsDefaultUsage verifies records written before usage
// tracking read back with a zero count.
func TestLoadLegacyRecordsDefaultUsage(t *testing.T) {
	s := tempStore(t)
	legacy := `[{"id":1,"description":"review","projectId":7,"tagIds":[3]}]`
	if err := os.WriteFile(s.Path(), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].UsageCount != 0 {
		t.Errorf("UsageCount = %d, want 0", entries[0].UsageCount)
	}
}

// TestSaveCreatesDirectory verifies Save works when the parent directory
// does not exist yet.
func TestSaveCreatesDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "dir", "recents.json"))

	if err := s.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}
