// Package runner is the rule execution engine: it matches elements against
// the enabled subset of the catalog and runs each applicable rule's test,
// producing raw violations. Failures of individual (element, rule) pairs are
// logged and skipped — a broken rule or selector never aborts a batch.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// Runner executes catalog rules over element batches.
type Runner struct {
	catalog *rules.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Runner over the given catalog.
func New(catalog *rules.Catalog, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{catalog: catalog, logger: logger, now: time.Now}
}

// Execute runs every enabled, applicable rule against every element, in
// element order then catalog order, and returns the violations found.
func (r *Runner) Execute(ctx context.Context, elements []*dom.Element) []rules.Violation {
	enabled := r.catalog.Enabled()
	var out []rules.Violation

	for _, el := range elements {
		if el == nil {
			continue
		}
		out = append(out, r.executeElement(ctx, el, enabled)...)
	}
	return out
}

func (r *Runner) executeElement(ctx context.Context, el *dom.Element, enabled []*rules.Rule) []rules.Violation {
	var out []rules.Violation

	for _, rule := range enabled {
		sel, err := dom.Compile(rule.Selector)
		if err != nil {
			r.logger.Warn("runner: invalid rule selector",
				"rule", rule.ID, "selector", rule.Selector, "error", err)
			continue
		}
		if !sel.Match(el.Node()) {
			continue
		}

		pass, err := runTest(ctx, rule, el)
		if err != nil {
			// A throwing test is a rule failure, not a violation and not a pass.
			r.logger.Warn("runner: rule test failed",
				"rule", rule.ID, "element", el.Tag(), "error", err)
			continue
		}
		if pass {
			continue
		}

		out = append(out, rules.Violation{
			Rule:     rule,
			Element:  el,
			Selector: PathSelector(el),
			Impact:   Score(el, rule.Severity),
			At:       r.now(),
		})
	}
	return out
}

// runTest isolates one rule test invocation, converting panics in custom
// rule code into errors so they follow the skip-and-continue path.
func runTest(ctx context.Context, rule *rules.Rule, el *dom.Element) (pass bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pass = false
			err = panicError{rule: rule.ID, value: rec}
		}
	}()
	return rule.Test(ctx, el)
}

type panicError struct {
	rule  string
	value any
}

func (e panicError) Error() string {
	return "rule " + e.rule + " panicked"
}
