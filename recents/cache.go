package recents

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"timeat/internal/utils"
)

// DefaultSearchLimit caps the suggestion list when the caller passes no limit.
const DefaultSearchLimit = 10

// Outcome reports how an operation interacted with the underlying store.
// The cache is a best-effort convenience layer: storage failures never
// surface as errors, they degrade and are reported here so callers and
// tests can observe the degradation.
type Outcome struct {
	LoadRecovered bool // the slot could not be read; an empty list was used
	SaveDropped   bool // the slot could not be written; the change was discarded
}

// Degraded reports whether the operation hit a storage failure.
func (o Outcome) Degraded() bool {
	return o.LoadRecovered || o.SaveDropped
}

func (o Outcome) merge(other Outcome) Outcome {
	return Outcome{
		LoadRecovered: o.LoadRecovered || other.LoadRecovered,
		SaveDropped:   o.SaveDropped || other.SaveDropped,
	}
}

// Cache is a handle on one recent-timers slot. Construct one per session
// with an explicit store; operations are synchronous and read and write
// the whole slot on every call. Not safe for concurrent use.
type Cache struct {
	store Store
}

// New creates a cache backed by the given store
func New(s Store) *Cache {
	return &Cache{store: s}
}

// Entries returns the stored sequence as-is, front (most recently touched)
// first.
func (c *Cache) Entries(ctx context.Context) ([]Entry, Outcome) {
	return c.load(ctx)
}

// Add upserts an entry at the front of the cache. An existing entry with
// the same logical configuration is removed first (the newer occurrence
// supersedes its ID and fields); failing that, an existing entry with the
// same ID but different data is removed as stale. The result holds at most
// one entry per logical configuration.
func (c *Cache) Add(ctx context.Context, entry Entry) Outcome {
	entries, out := c.load(ctx)
	entries = upsert(entries, entry)
	return out.merge(c.save(ctx, entries))
}

// Reconcile merges freshly fetched authoritative entries into the cache.
// Cached entries whose ID appears in fetched with different data are
// dropped as stale; IDs absent from fetched are kept (they may belong to a
// time range the fetch did not cover). Fetched entries pass an admission
// filter (non-empty description shorter than MaxDescriptionLen) and are
// then upserted in input order, carrying forward the usage count of any
// logically identical survivor. UsageCount on the fetched entries
// themselves is ignored.
//
// An empty fetched sequence degenerates to a pure cleanup pass.
func (c *Cache) Reconcile(ctx context.Context, fetched []Entry) Outcome {
	entries, out := c.load(ctx)

	byID := make(map[int64]Entry, len(fetched))
	for _, f := range fetched {
		byID[f.ID] = f
	}

	baseline := entries[:0:0]
	for _, e := range entries {
		f, ok := byID[e.ID]
		if ok && !e.SameConfiguration(f) {
			continue
		}
		baseline = append(baseline, e)
	}
	out = out.merge(c.save(ctx, baseline))

	merged := baseline
	changed := false
	for _, f := range fetched {
		if !Admissible(f.Description) {
			continue
		}
		f.UsageCount = 0
		if i := indexOfConfiguration(baseline, f); i >= 0 {
			f.UsageCount = baseline[i].UsageCount
		}
		merged = upsert(merged, f)
		changed = true
	}
	if changed {
		out = out.merge(c.save(ctx, merged))
	}
	return out
}

// Admissible reports whether a description may enter the cache through
// reconciliation: non-empty and strictly shorter than MaxDescriptionLen.
func Admissible(description string) bool {
	n := utf8.RuneCountInString(description)
	return n > 0 && n < MaxDescriptionLen
}

// IncrementUsage bumps the usage counter of the entry matching the given
// configuration. Missing configurations are a silent no-op; only Add and
// Reconcile create entries.
func (c *Cache) IncrementUsage(ctx context.Context, description string, projectID *int64, tagIDs []int64) Outcome {
	entries, out := c.load(ctx)
	probe := Entry{Description: description, ProjectID: projectID, TagIDs: tagIDs}
	i := indexOfConfiguration(entries, probe)
	if i < 0 {
		return out
	}
	entries[i].UsageCount++
	return out.merge(c.save(ctx, entries))
}

// Search returns up to limit suggestions for query. A blank query ranks
// the whole cache by usage count (stable on stored order). A non-blank
// query keeps fuzzy matches only, sorted by score, truncates to limit and
// then re-sorts that window by usage count, so usage can reorder results
// only within the window already selected by relevance. limit <= 0 falls
// back to DefaultSearchLimit.
func (c *Cache) Search(ctx context.Context, query string, limit int) ([]Entry, Outcome) {
	entries, out := c.load(ctx)
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query = strings.TrimSpace(query)
	if query == "" {
		ranked := make([]Entry, len(entries))
		copy(ranked, entries)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].UsageCount > ranked[j].UsageCount
		})
		return truncate(ranked, limit), out
	}

	type scored struct {
		entry Entry
		score int
	}
	var matches []scored
	for _, e := range entries {
		m := FuzzyMatch(query, e.Description)
		if !m.Matched {
			continue
		}
		matches = append(matches, scored{entry: e, score: m.Score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].entry.UsageCount > matches[j].entry.UsageCount
	})

	result := make([]Entry, len(matches))
	for i, m := range matches {
		result[i] = m.entry
	}
	return result, out
}

func truncate(entries []Entry, limit int) []Entry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// upsert implements the add algorithm: evict the logical duplicate, or
// else the stale entry sharing the ID, then insert at the front.
func upsert(entries []Entry, entry Entry) []Entry {
	if i := indexOfConfiguration(entries, entry); i >= 0 {
		entries = append(entries[:i:i], entries[i+1:]...)
	} else if i := indexOfID(entries, entry.ID); i >= 0 {
		entries = append(entries[:i:i], entries[i+1:]...)
	}
	if entry.UsageCount < 0 {
		entry.UsageCount = 0
	}
	return append([]Entry{entry}, entries...)
}

func indexOfConfiguration(entries []Entry, probe Entry) int {
	for i, e := range entries {
		if e.SameConfiguration(probe) {
			return i
		}
	}
	return -1
}

func indexOfID(entries []Entry, id int64) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) load(ctx context.Context) ([]Entry, Outcome) {
	entries, err := c.store.Load(ctx)
	if err != nil {
		utils.Warnf("recents: reading cache failed, starting empty: %v", err)
		return nil, Outcome{LoadRecovered: true}
	}
	return entries, Outcome{}
}

func (c *Cache) save(ctx context.Context, entries []Entry) Outcome {
	if err := c.store.Save(ctx, entries); err != nil {
		utils.Warnf("recents: writing cache failed, change dropped: %v", err)
		return Outcome{SaveDropped: true}
	}
	return Outcome{}
}
