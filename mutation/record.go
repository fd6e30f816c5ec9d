// Package mutation defines the structured notifications delivered by a DOM
// observation source. These are the public contract between the host page
// (live browser or static document) and the analysis engine: any source
// produces Records, the engine's scheduler consumes Batches.
package mutation

import "time"

// Op is the type of DOM mutation observed.
type Op string

const (
	OpChildList Op = "childlist" // nodes added or removed under the target
	OpAttr      Op = "attr"      // a watched attribute changed on the target
	OpText      Op = "text"      // character data changed under the target
)

// Record is a single DOM mutation notification. Elements are referenced by
// their structural path (see dom.Element.Path); paths, not live handles,
// cross the source/engine boundary.
type Record struct {
	Op        Op       `json:"op"`
	Target    string   `json:"target"`              // path of the mutation target
	Added     []string `json:"added,omitempty"`     // paths of added element nodes
	Attribute string   `json:"attribute,omitempty"` // attribute name for attr ops
}

// Batch is the atomic unit emitted by a source: all records collected during
// one observer callback, plus the arrival timestamp used for debouncing.
type Batch struct {
	ID      string    `json:"id"`
	Records []Record  `json:"records"`
	At      time.Time `json:"at"`
}

// watchedAttributes is the set of attributes whose changes are relevant to
// accessibility analysis. Attribute mutations outside this set are filtered
// at the source and never reach the scheduler.
var watchedAttributes = map[string]struct{}{
	"alt":              {},
	"aria-label":       {},
	"aria-labelledby":  {},
	"aria-describedby": {},
	"aria-hidden":      {},
	"aria-expanded":    {},
	"aria-selected":    {},
	"aria-checked":     {},
	"role":             {},
	"tabindex":         {},
	"title":            {},
	"for":              {},
	"id":               {},
	"class":            {},
	"style":            {},
}

// WatchedAttribute reports whether changes to the named attribute should
// trigger re-analysis.
func WatchedAttribute(name string) bool {
	_, ok := watchedAttributes[name]
	return ok
}

// WatchedAttributes returns the attribute filter list in a stable order,
// suitable for handing to a MutationObserver attributeFilter.
func WatchedAttributes() []string {
	return []string{
		"alt", "aria-label", "aria-labelledby", "aria-describedby",
		"aria-hidden", "aria-expanded", "aria-selected", "aria-checked",
		"role", "tabindex", "title", "for", "id", "class", "style",
	}
}
