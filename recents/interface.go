// Package recents maintains a local cache of recently used timer
// configurations (description + project + tags) and ranks them for
// autocomplete-style suggestions.
package recents

import (
	"context"
	"sort"
)

// Entry represents one cached timer configuration
type Entry struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	ProjectID   *int64  `json:"projectId,omitempty"`
	TagIDs      []int64 `json:"tagIds,omitempty"`
	UsageCount  int     `json:"usageCount"`
}

// MaxDescriptionLen is the admission bound for reconciled entries.
// Descriptions must be non-empty and strictly shorter than this.
const MaxDescriptionLen = 60

// Store persists the entry list as a single slot. Load returns an empty
// list (not an error) when the slot does not exist yet.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

// SameConfiguration reports whether two entries describe the same logical
// timer configuration: equal description, project and tag set. Tag order
// is ignored; stored order is only kept for display.
func (e Entry) SameConfiguration(other Entry) bool {
	return e.Description == other.Description &&
		sameProject(e.ProjectID, other.ProjectID) &&
		sameTagSet(e.TagIDs, other.TagIDs)
}

func sameProject(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTagSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	as := sortedTags(a)
	bs := sortedTags(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedTags(tags []int64) []int64 {
	s := make([]int64, len(tags))
	copy(s, tags)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s
}
