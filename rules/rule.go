// Package rules defines the accessibility rule catalog: the Rule contract,
// the built-in WCAG-derived checks, and the Catalog that tracks which rules
// are enabled. Rule tests are heuristics over one element's current state;
// they never mutate the document or any engine state.
package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities for prioritisation: error > warning > info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Multiplier is the severity factor of the impact score.
func (s Severity) Multiplier() float64 {
	switch s {
	case SeverityError:
		return 3.0
	case SeverityWarning:
		return 2.0
	case SeverityInfo:
		return 1.0
	}
	return 1.0
}

func (s Severity) valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Category groups rules for filtering and summary breakdowns.
type Category string

const (
	CategoryImages     Category = "images"
	CategoryForms      Category = "forms"
	CategoryStructure  Category = "structure"
	CategoryNavigation Category = "navigation"
	CategoryAria       Category = "aria"
	CategoryKeyboard   Category = "keyboard"
	CategoryColor      Category = "color"
	CategoryLanguage   Category = "language"
)

// TestFunc is a rule's predicate over one element. It returns true when the
// element passes. Tests receive a context because custom rules may consult
// slow host facilities; built-ins never block.
type TestFunc func(ctx context.Context, el *dom.Element) (bool, error)

// Rule is one accessibility check. Immutable after catalog insertion; only
// the catalog's enabled set changes at runtime.
type Rule struct {
	ID          string
	Name        string
	Description string
	WCAG        string // WCAG success criterion reference, e.g. "1.1.1"
	Severity    Severity
	Category    Category
	Selector    string // CSS selector scoping applicability
	Test        TestFunc
	Message     string
	Suggestion  string
	Resources   []string
}

// Validate checks the structural contract every rule, built-in or custom,
// must satisfy before entering the catalog.
func (r *Rule) Validate() error {
	if r == nil {
		return fmt.Errorf("rules: nil rule")
	}
	if r.ID == "" {
		return fmt.Errorf("rules: rule missing id")
	}
	if r.Name == "" {
		return fmt.Errorf("rules: rule %s missing name", r.ID)
	}
	if !r.Severity.valid() {
		return fmt.Errorf("rules: rule %s has invalid severity %q", r.ID, r.Severity)
	}
	if r.Category == "" {
		return fmt.Errorf("rules: rule %s missing category", r.ID)
	}
	if r.Selector == "" {
		return fmt.Errorf("rules: rule %s missing selector", r.ID)
	}
	if r.Test == nil {
		return fmt.Errorf("rules: rule %s missing test", r.ID)
	}
	return nil
}

// Violation is one failed (element, rule) pair, produced by the rule engine.
// The Element handle is borrowed from the current snapshot; Selector is the
// durable identity that outlives it.
type Violation struct {
	Rule     *Rule
	Element  *dom.Element
	Selector string
	Impact   float64
	At       time.Time
}
