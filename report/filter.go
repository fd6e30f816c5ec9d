package report

import (
	"strings"

	"github.com/Kvnq-Poza/a11y-live/rules"
)

// Filter narrows the published result set. Severities and Categories are
// accept lists (OR within each list); the dimensions combine with AND.
// Search matches case-insensitively against name, message and description.
type Filter struct {
	Severities []rules.Severity
	Categories []rules.Category
	Search     string
}

func (f Filter) empty() bool {
	return len(f.Severities) == 0 && len(f.Categories) == 0 && f.Search == ""
}

func (f Filter) matches(res *Result) bool {
	if len(f.Severities) > 0 && !containsSeverity(f.Severities, res.Severity) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, res.Category) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(res.Name), q) &&
			!strings.Contains(strings.ToLower(res.Message), q) &&
			!strings.Contains(strings.ToLower(res.Description), q) {
			return false
		}
	}
	return true
}

// Filtered returns the subset of the latest results accepted by f, in the
// published (prioritised) order.
func (r *Reporter) Filtered(f Filter) []*Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f.empty() {
		return r.results
	}
	var out []*Result
	for _, res := range r.results {
		if f.matches(res) {
			out = append(out, res)
		}
	}
	return out
}

func containsSeverity(list []rules.Severity, s rules.Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsCategory(list []rules.Category, c rules.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
