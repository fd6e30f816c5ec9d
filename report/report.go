// Package report turns raw rule-engine violations into presentation-ready
// results: deduplicated, prioritised, enriched with context and advice, and
// summarised. The Reporter holds the latest full set; each Process call
// replaces it wholesale.
package report

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// Fix is one actionable remediation with an example snippet.
type Fix struct {
	Description string `json:"description"`
	Snippet     string `json:"snippet,omitempty"`
}

// Education explains the rule behind a violation in plain terms.
type Education struct {
	Explanation string   `json:"explanation"`
	Analogy     string   `json:"analogy,omitempty"`
	Resources   []string `json:"resources,omitempty"`
}

// Context is the geometry snapshot taken at enrichment time.
type Context struct {
	Siblings   int      `json:"siblings"`
	Rendered   bool     `json:"rendered"`
	InViewport bool     `json:"inViewport"`
	Box        dom.Rect `json:"box"`
}

// Result is one enriched violation. The element handle it was derived from
// is deliberately not carried; Selector is the durable identity.
type Result struct {
	RuleID      string         `json:"ruleId"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	WCAG        string         `json:"wcag,omitempty"`
	Severity    rules.Severity `json:"severity"`
	Category    rules.Category `json:"category"`
	Selector    string         `json:"selector"`
	Message     string         `json:"message"`
	Suggestion  string         `json:"suggestion,omitempty"`
	Impact      float64        `json:"impact"`
	At          time.Time      `json:"at"`

	Location   string    `json:"location"`
	Purpose    string    `json:"purpose"`
	Context    Context   `json:"context"`
	Fixes      []Fix     `json:"fixes"`
	Education  Education `json:"education"`
	UserImpact string    `json:"userImpact"`
	Excerpt    string    `json:"excerpt,omitempty"`
}

// Summary is the running tally over the latest processed set.
type Summary struct {
	Total      int                    `json:"total"`
	Errors     int                    `json:"errors"`
	Warnings   int                    `json:"warnings"`
	Info       int                    `json:"info"`
	Categories map[rules.Category]int `json:"categories"`
	LastUpdate time.Time              `json:"lastUpdate"`
}

// Reporter processes raw violations and publishes the latest result set.
// Process runs from the engine's single analysis goroutine; Results,
// GetSummary and Export may be called concurrently by HTTP and MCP readers.
type Reporter struct {
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	results []*Result
	summary Summary
}

// New returns an empty Reporter.
func New(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		logger: logger,
		now:    time.Now,
		summary: Summary{
			Categories: map[rules.Category]int{},
		},
	}
}

// Process deduplicates, prioritises, enriches and summarises one analysis
// pass, replacing the published set atomically. It returns the new set.
func (r *Reporter) Process(raw []rules.Violation) []*Result {
	deduped := dedupe(raw)
	prioritize(deduped)

	out := make([]*Result, 0, len(deduped))
	for _, v := range deduped {
		out = append(out, r.enrich(v))
	}
	sum := summarize(out, r.now())

	r.mu.Lock()
	r.results = out
	r.summary = sum
	r.mu.Unlock()

	r.logger.Debug("report: processed",
		"raw", len(raw), "results", len(out))
	return out
}

// Results returns the latest processed set.
func (r *Reporter) Results() []*Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.results
}

// GetSummary returns the latest summary.
func (r *Reporter) GetSummary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}

// Reset drops the published set, as on engine stop.
func (r *Reporter) Reset() {
	r.mu.Lock()
	r.results = nil
	r.summary = Summary{Categories: map[rules.Category]int{}}
	r.mu.Unlock()
}

// dedupe collapses violations sharing (rule id, selector), keeping the
// first occurrence in input order.
func dedupe(raw []rules.Violation) []rules.Violation {
	type key struct{ rule, sel string }
	seen := make(map[key]struct{}, len(raw))
	out := make([]rules.Violation, 0, len(raw))
	for _, v := range raw {
		if v.Rule == nil {
			continue
		}
		k := key{v.Rule.ID, v.Selector}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// prioritize sorts in place: severity rank descending, impact descending,
// WCAG level ascending with missing references last, rule name ascending.
// The sort is stable so engine output order breaks any remaining ties.
func prioritize(vs []rules.Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if ra, rb := a.Rule.Severity.Rank(), b.Rule.Severity.Rank(); ra != rb {
			return ra > rb
		}
		if a.Impact != b.Impact {
			return a.Impact > b.Impact
		}
		if wa, wb := wcagLevel(a.Rule.WCAG), wcagLevel(b.Rule.WCAG); wa != wb {
			return wa < wb
		}
		return a.Rule.Name < b.Rule.Name
	})
}

// wcagLevel maps a success-criterion reference like "1.4.3" onto a single
// comparable integer. Missing or unparseable references sort after all
// real ones.
func wcagLevel(ref string) int {
	if ref == "" {
		return math.MaxInt
	}
	level := 0
	parts := strings.SplitN(ref, ".", 3)
	for i := 0; i < 3; i++ {
		n := 0
		if i < len(parts) {
			v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil {
				return math.MaxInt
			}
			n = v
		}
		level = level*100 + n
	}
	return level
}

func summarize(results []*Result, at time.Time) Summary {
	sum := Summary{
		Total:      len(results),
		Categories: map[rules.Category]int{},
		LastUpdate: at,
	}
	for _, res := range results {
		switch res.Severity {
		case rules.SeverityError:
			sum.Errors++
		case rules.SeverityWarning:
			sum.Warnings++
		case rules.SeverityInfo:
			sum.Info++
		}
		sum.Categories[res.Category]++
	}
	return sum
}
