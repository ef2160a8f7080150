package catalog

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Category is the closed two-way split of the assessment catalog.
// Every item is exactly one of the two; the balance selector relies on
// this being exhaustive.
type Category string

const (
	// CategoryKnowledge covers knowledge and skill assessments (K).
	CategoryKnowledge Category = "knowledge"
	// CategoryPersonality covers personality and behavioral assessments (P).
	CategoryPersonality Category = "personality"
)

// DurationUnknown marks items whose duration is not stated in the catalog.
const DurationUnknown = -1

// Item is a single assessment in the catalog. Items are created once per
// catalog build and read-only afterwards.
type Item struct {
	ID              string   `json:"id" mapstructure:"id"`
	Name            string   `json:"name" mapstructure:"name"`
	URL             string   `json:"url" mapstructure:"url"`
	Category        Category `json:"category" mapstructure:"category"`
	DurationMinutes int      `json:"duration_minutes" mapstructure:"duration_minutes"`
	IsBundle        bool     `json:"is_bundle" mapstructure:"is_bundle"`
	AdaptiveSupport bool     `json:"adaptive_support" mapstructure:"adaptive_support"`
	RemoteSupport   bool     `json:"remote_support" mapstructure:"remote_support"`
	Tags            []string `json:"tags" mapstructure:"tags"`
	Description     string   `json:"description" mapstructure:"description"`
}

// HasKnownDuration reports whether the catalog states a duration for the item.
func (i *Item) HasKnownDuration() bool {
	return i.DurationMinutes >= 0
}

// IndexText returns the text representation used by both indices.
func (i *Item) IndexText() string {
	parts := []string{i.Name, i.Description}
	if len(i.Tags) > 0 {
		parts = append(parts, strings.Join(i.Tags, " "))
	}
	return strings.Join(parts, ". ")
}

// Snapshot is an immutable, versioned view of the whole catalog. It is safe
// for concurrent reads and is replaced, never mutated, on catalog rebuilds.
type Snapshot struct {
	version string
	items   []*Item
	byID    map[string]*Item
}

// NewSnapshot builds a snapshot from the given items. Items are sorted by id
// so iteration order is stable across processes.
func NewSnapshot(version string, items []*Item) *Snapshot {
	sorted := make([]*Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ID < sorted[b].ID })

	byID := make(map[string]*Item, len(sorted))
	for _, item := range sorted {
		byID[item.ID] = item
	}

	return &Snapshot{version: version, items: sorted, byID: byID}
}

// Version returns the catalog version token.
func (s *Snapshot) Version() string { return s.version }

// Item returns the item with the given id, or nil.
func (s *Snapshot) Item(id string) *Item { return s.byID[id] }

// Items returns all items in id order. The returned slice must not be modified.
func (s *Snapshot) Items() []*Item { return s.items }

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int { return len(s.items) }

// Holder is a shared handle to the current snapshot. Reloading a rebuilt
// catalog swaps the pointer atomically so in-flight requests keep the
// snapshot they started with.
type Holder[T any] struct {
	current atomic.Pointer[T]
}

// NewHolder creates a holder seeded with the given value.
func NewHolder[T any](v *T) *Holder[T] {
	h := &Holder[T]{}
	h.current.Store(v)
	return h
}

// Get returns the current value. It may be nil when nothing is loaded yet.
func (h *Holder[T]) Get() *T { return h.current.Load() }

// Swap replaces the current value.
func (h *Holder[T]) Swap(v *T) { h.current.Store(v) }
