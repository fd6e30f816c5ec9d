package rules

// Catalog holds the rule definitions and the enabled set. Definitions are
// insert-or-replace by id; the enabled set is the only aspect that changes
// during normal operation. The catalog is not safe for concurrent mutation:
// the engine is its single writer.
type Catalog struct {
	byID    map[string]*Rule
	order   []string // catalog iteration order = insertion order
	enabled map[string]struct{}
}

// NewCatalog returns a catalog preloaded with the built-in rules, all
// enabled.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:    make(map[string]*Rule),
		enabled: make(map[string]struct{}),
	}
	for _, r := range builtinRules() {
		// Built-ins satisfy Validate by construction.
		c.insert(r)
		c.enabled[r.ID] = struct{}{}
	}
	return c
}

// Get returns the rule with the given id, or nil.
func (c *Catalog) Get(id string) *Rule {
	return c.byID[id]
}

// All returns every rule in catalog iteration order.
func (c *Catalog) All() []*Rule {
	out := make([]*Rule, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ByCategory returns the rules of one category, catalog order.
func (c *Catalog) ByCategory(cat Category) []*Rule {
	var out []*Rule
	for _, id := range c.order {
		if r := c.byID[id]; r.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

// Enabled returns the enabled rules in catalog iteration order.
func (c *Catalog) Enabled() []*Rule {
	out := make([]*Rule, 0, len(c.enabled))
	for _, id := range c.order {
		if _, ok := c.enabled[id]; ok {
			out = append(out, c.byID[id])
		}
	}
	return out
}

// IsEnabled reports whether the rule id is currently enabled.
func (c *Catalog) IsEnabled(id string) bool {
	_, ok := c.enabled[id]
	return ok
}

// UpdateEnabled replaces the enabled set. Unknown ids are silently dropped:
// callers routinely pass rule lists written for other versions of the
// catalog, and a stale id is not worth failing over. Returns true when the
// resulting set differs from the previous one.
func (c *Catalog) UpdateEnabled(ids []string) bool {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, known := c.byID[id]; known {
			next[id] = struct{}{}
		}
	}

	changed := len(next) != len(c.enabled)
	if !changed {
		for id := range next {
			if _, ok := c.enabled[id]; !ok {
				changed = true
				break
			}
		}
	}

	c.enabled = next
	return changed
}

// EnableAll re-enables every rule in the catalog.
func (c *Catalog) EnableAll() {
	c.enabled = make(map[string]struct{}, len(c.order))
	for _, id := range c.order {
		c.enabled[id] = struct{}{}
	}
}

// Add inserts or replaces a rule after validating it. New rules start
// enabled; replacing an existing rule keeps its enabled state.
func (c *Catalog) Add(r *Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, existed := c.byID[r.ID]
	c.insert(r)
	if !existed {
		c.enabled[r.ID] = struct{}{}
	}
	return nil
}

func (c *Catalog) insert(r *Rule) {
	if _, ok := c.byID[r.ID]; !ok {
		c.order = append(c.order, r.ID)
	}
	c.byID[r.ID] = r
}
