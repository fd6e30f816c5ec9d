// Package fingerprint implements the element fingerprint cache. A
// fingerprint is derived from an element's tag, id, class list and a 32-bit
// rolling hash of its serialised subtree; structurally identical elements
// share a fingerprint. The cache is an optimisation, not a correctness
// requirement: collisions produce accepted false negatives.
package fingerprint

import (
	"fmt"
	"strings"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

// Hash is the iterative h = h*31 + b rolling hash, truncated to 32-bit
// signed, matching the classic string-hash convention.
func Hash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	return h
}

// Key derives the cache key for an element.
func Key(el *dom.Element) string {
	return fmt.Sprintf("%s#%s.%s:%d",
		el.Tag(),
		el.ID(),
		strings.Join(el.Classes(), "."),
		Hash(el.OuterHTML()),
	)
}

// Finding is one cached violation, stored without the live element handle:
// handles are borrowed per-snapshot, so the cache keeps only the durable
// parts and hits are rehydrated with the current handle.
type Finding struct {
	RuleID   string
	Selector string
	Impact   float64
}

// Entry is the cached outcome for one fingerprint: either the violations of
// the last analysis, or an explicit passed marker.
type Entry struct {
	Findings []Finding
	Passed   bool
}

// Cache maps fingerprints to their last-known outcome. It has exactly one
// writer — the engine's analysis path, serialised by the in-flight guard —
// so it carries no lock.
type Cache struct {
	entries map[string]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for a key and whether it exists.
func (c *Cache) Get(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Set records the outcome for a key, overwriting any previous entry.
func (c *Cache) Set(key string, e Entry) {
	c.entries[key] = e
}

// Clear purges the cache wholesale. Called on rule-set changes and engine
// stop; entries are never selectively invalidated.
func (c *Cache) Clear() {
	c.entries = make(map[string]Entry)
}

// Size returns the number of cached fingerprints.
func (c *Cache) Size() int {
	return len(c.entries)
}
