package rules

import (
	"context"
	"testing"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

func TestNewCatalogLoadsBuiltins(t *testing.T) {
	c := NewCatalog()
	if len(c.All()) == 0 {
		t.Fatal("catalog has no built-in rules")
	}
	for _, id := range []string{"missing-alt-text", "empty-buttons", "missing-heading-structure"} {
		r := c.Get(id)
		if r == nil {
			t.Fatalf("built-in rule %q missing", id)
		}
		if !c.IsEnabled(id) {
			t.Errorf("built-in rule %q not enabled by default", id)
		}
		if err := r.Validate(); err != nil {
			t.Errorf("built-in rule %q invalid: %v", id, err)
		}
	}
}

func TestCatalogOrderStable(t *testing.T) {
	c := NewCatalog()
	all := c.All()
	enabled := c.Enabled()
	if len(all) != len(enabled) {
		t.Fatalf("all=%d enabled=%d, want equal", len(all), len(enabled))
	}
	for i := range all {
		if all[i].ID != enabled[i].ID {
			t.Fatalf("iteration order differs at %d: %s vs %s", i, all[i].ID, enabled[i].ID)
		}
	}
}

func TestUpdateEnabled(t *testing.T) {
	c := NewCatalog()

	changed := c.UpdateEnabled([]string{"missing-alt-text", "no-such-rule"})
	if !changed {
		t.Error("UpdateEnabled: want changed=true")
	}
	if got := len(c.Enabled()); got != 1 {
		t.Fatalf("enabled: got %d, want 1 (unknown ids silently dropped)", got)
	}
	if c.Enabled()[0].ID != "missing-alt-text" {
		t.Errorf("enabled[0] = %s", c.Enabled()[0].ID)
	}

	// Same set again: no change.
	if c.UpdateEnabled([]string{"missing-alt-text"}) {
		t.Error("UpdateEnabled with identical set: want changed=false")
	}

	c.EnableAll()
	if len(c.Enabled()) != len(c.All()) {
		t.Error("EnableAll did not restore the full set")
	}
}

func TestByCategory(t *testing.T) {
	c := NewCatalog()
	imgs := c.ByCategory(CategoryImages)
	if len(imgs) == 0 {
		t.Fatal("no image rules")
	}
	for _, r := range imgs {
		if r.Category != CategoryImages {
			t.Errorf("rule %s category = %s", r.ID, r.Category)
		}
	}
}

func TestAddCustomRule(t *testing.T) {
	c := NewCatalog()
	before := len(c.All())

	err := c.Add(&Rule{
		ID:       "no-marquee",
		Name:     "No marquee elements",
		Severity: SeverityError,
		Category: CategoryStructure,
		Selector: "marquee",
		Test: func(ctx context.Context, el *dom.Element) (bool, error) {
			return false, nil
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(c.All()) != before+1 {
		t.Error("custom rule not inserted")
	}
	if !c.IsEnabled("no-marquee") {
		t.Error("new custom rule should start enabled")
	}

	// Replace keeps enabled state.
	c.UpdateEnabled([]string{"missing-alt-text"})
	err = c.Add(&Rule{
		ID:       "no-marquee",
		Name:     "No marquee elements v2",
		Severity: SeverityWarning,
		Category: CategoryStructure,
		Selector: "marquee",
		Test: func(ctx context.Context, el *dom.Element) (bool, error) {
			return false, nil
		},
	})
	if err != nil {
		t.Fatalf("Add replace: %v", err)
	}
	if c.IsEnabled("no-marquee") {
		t.Error("replacing a disabled rule must not re-enable it")
	}
	if got := c.Get("no-marquee").Name; got != "No marquee elements v2" {
		t.Errorf("replace did not take: %q", got)
	}
}

func TestAddInvalidRule(t *testing.T) {
	c := NewCatalog()
	cases := []*Rule{
		{},
		{ID: "x"},
		{ID: "x", Name: "X", Severity: "fatal", Category: CategoryAria, Selector: "*", Test: alwaysPass},
		{ID: "x", Name: "X", Severity: SeverityError, Category: CategoryAria, Selector: "*"},
		{ID: "x", Name: "X", Severity: SeverityError, Category: CategoryAria, Test: alwaysPass},
	}
	for i, r := range cases {
		if err := c.Add(r); err == nil {
			t.Errorf("case %d: Add accepted an invalid rule", i)
		}
	}
}

func alwaysPass(ctx context.Context, el *dom.Element) (bool, error) { return true, nil }

func TestSeverityRankAndMultiplier(t *testing.T) {
	if !(SeverityError.Rank() > SeverityWarning.Rank() && SeverityWarning.Rank() > SeverityInfo.Rank()) {
		t.Error("severity ranks out of order")
	}
	if SeverityError.Multiplier() != 3.0 || SeverityWarning.Multiplier() != 2.0 || SeverityInfo.Multiplier() != 1.0 {
		t.Error("severity multipliers wrong")
	}
}
