package rules

import (
	"context"
	"strconv"
	"strings"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

// builtinRules returns the built-in rule set in catalog order. The checks
// are heuristics: they evaluate what is actually present in the snapshot,
// not authoritative WCAG conformance.
func builtinRules() []*Rule {
	return []*Rule{
		{
			ID:          "missing-alt-text",
			Name:        "Images must have alternative text",
			Description: "Every informative image needs an alt attribute so screen reader users know what it shows. Decorative images must be marked as such.",
			WCAG:        "1.1.1",
			Severity:    SeverityError,
			Category:    CategoryImages,
			Selector:    "img",
			Message:     "Image has no alt attribute",
			Suggestion:  `Add alt="description of the image", or role="presentation" if purely decorative`,
			Resources:   []string{"https://www.w3.org/WAI/tutorials/images/"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				if isDecorative(el) {
					return true, nil
				}
				_, ok := el.Attr("alt")
				return ok, nil
			},
		},
		{
			ID:          "empty-buttons",
			Name:        "Buttons must have an accessible name",
			Description: "A button with no text, label or titled image is announced as just \"button\", leaving assistive technology users guessing.",
			WCAG:        "4.1.2",
			Severity:    SeverityError,
			Category:    CategoryForms,
			Selector:    "button, [role=button]",
			Message:     "Button has no accessible name",
			Suggestion:  "Add visible text, an aria-label, or an img with alt text inside the button",
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				return AccessibleName(el) != "", nil
			},
		},
		{
			ID:          "empty-links",
			Name:        "Links must have an accessible name",
			Description: "Links without discernible text give no indication of their destination.",
			WCAG:        "2.4.4",
			Severity:    SeverityError,
			Category:    CategoryNavigation,
			Selector:    "a[href]",
			Message:     "Link has no accessible name",
			Suggestion:  "Add link text, an aria-label, or alt text on the image inside the link",
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/link-purpose-in-context.html"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				return AccessibleName(el) != "", nil
			},
		},
		{
			ID:          "missing-form-labels",
			Name:        "Form fields must be labelled",
			Description: "Inputs without an associated label are unusable with a screen reader: the user hears the type of the field but not its purpose.",
			WCAG:        "3.3.2",
			Severity:    SeverityError,
			Category:    CategoryForms,
			Selector:    "input, select, textarea",
			Message:     "Form field has no label",
			Suggestion:  `Associate a <label for="..."> with the field, or add aria-label / aria-labelledby`,
			Resources:   []string{"https://www.w3.org/WAI/tutorials/forms/labels/"},
			Test:        testFormLabel,
		},
		{
			ID:          "missing-heading-structure",
			Name:        "Heading levels must not skip",
			Description: "Headings outline the page. Jumping from h1 to h3 breaks the outline screen reader users navigate by.",
			WCAG:        "1.3.1",
			Severity:    SeverityWarning,
			Category:    CategoryStructure,
			Selector:    "h1, h2, h3, h4, h5, h6",
			Message:     "Heading level skips over the previous level",
			Suggestion:  "Use heading levels in order; style them with CSS rather than picking a tag for its size",
			Resources:   []string{"https://www.w3.org/WAI/tutorials/page-structure/headings/"},
			Test:        testHeadingStructure,
		},
		{
			ID:          "missing-lang",
			Name:        "Document must declare its language",
			Description: "Without a lang attribute on <html>, screen readers fall back to the user's default voice and mispronounce the content.",
			WCAG:        "3.1.1",
			Severity:    SeverityError,
			Category:    CategoryLanguage,
			Selector:    "html",
			Message:     "Document has no lang attribute",
			Suggestion:  `Add lang="en" (or the page's actual language) to the <html> element`,
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/language-of-page.html"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				return strings.TrimSpace(el.AttrOr("lang", "")) != "", nil
			},
		},
		{
			ID:          "low-contrast-text",
			Name:        "Text must have sufficient contrast",
			Description: "Low contrast between text and its background makes content unreadable for users with low vision. This check only evaluates inline styles.",
			WCAG:        "1.4.3",
			Severity:    SeverityWarning,
			Category:    CategoryColor,
			Selector:    "[style*=color]",
			Message:     "Text colour has insufficient contrast with its background",
			Suggestion:  "Aim for a contrast ratio of at least 4.5:1 for body text (3:1 for large text)",
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/contrast-minimum.html"},
			Test:        testContrast,
		},
		{
			ID:          "missing-iframe-title",
			Name:        "Frames must have a title",
			Description: "Screen readers announce iframes by their title; an untitled frame is an anonymous hole in the page.",
			WCAG:        "4.1.2",
			Severity:    SeverityWarning,
			Category:    CategoryStructure,
			Selector:    "iframe",
			Message:     "Frame has no title attribute",
			Suggestion:  `Add title="purpose of the embedded content" to the iframe`,
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Techniques/html/H64"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				return strings.TrimSpace(el.AttrOr("title", "")) != "", nil
			},
		},
		{
			ID:          "positive-tabindex",
			Name:        "Avoid positive tabindex values",
			Description: "A tabindex greater than zero hijacks the natural tab order and almost always produces a confusing focus sequence.",
			WCAG:        "2.4.3",
			Severity:    SeverityWarning,
			Category:    CategoryKeyboard,
			Selector:    "[tabindex]",
			Message:     "Element uses a positive tabindex",
			Suggestion:  `Use tabindex="0" to join the natural order or tabindex="-1" for programmatic focus`,
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/focus-order.html"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				n, err := strconv.Atoi(strings.TrimSpace(el.AttrOr("tabindex", "0")))
				if err != nil {
					return true, nil // non-numeric tabindex is ignored by browsers
				}
				return n <= 0, nil
			},
		},
		{
			ID:          "duplicate-ids",
			Name:        "Element ids must be unique",
			Description: "Duplicate ids break label/for and aria-labelledby associations, which resolve to the first match only.",
			WCAG:        "4.1.1",
			Severity:    SeverityWarning,
			Category:    CategoryStructure,
			Selector:    "[id]",
			Message:     "Element id is used more than once in the document",
			Suggestion:  "Rename one of the elements so every id is unique",
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Techniques/html/H93"},
			Test:        testDuplicateID,
		},
		{
			ID:          "missing-table-headers",
			Name:        "Data tables must have headers",
			Description: "Without th cells a screen reader reads a table as a flat stream of values with no column or row context.",
			WCAG:        "1.3.1",
			Severity:    SeverityWarning,
			Category:    CategoryStructure,
			Selector:    "table",
			Message:     "Table has no header cells",
			Suggestion:  "Mark header cells with <th scope=\"col\"> or <th scope=\"row\">",
			Resources:   []string{"https://www.w3.org/WAI/tutorials/tables/"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				if el.AttrOr("role", "") == "presentation" || el.AttrOr("role", "") == "none" {
					return true, nil
				}
				return len(el.Find("th")) > 0 || len(el.Find("[role=columnheader], [role=rowheader]")) > 0, nil
			},
		},
		{
			ID:          "generic-link-text",
			Name:        "Link text should describe the destination",
			Description: "\"Click here\" or \"read more\" mean nothing when links are listed out of context, which is how many screen reader users browse.",
			WCAG:        "2.4.4",
			Severity:    SeverityInfo,
			Category:    CategoryNavigation,
			Selector:    "a[href]",
			Message:     "Link text is generic",
			Suggestion:  "Rewrite the link text to name its destination, e.g. \"read the pricing guide\"",
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/link-purpose-in-context.html"},
			Test:        testGenericLinkText,
		},
		{
			ID:          "aria-hidden-focusable",
			Name:        "Hidden elements must not be focusable",
			Description: "An element hidden with aria-hidden=\"true\" that still receives keyboard focus puts the user inside invisible content.",
			WCAG:        "4.1.2",
			Severity:    SeverityWarning,
			Category:    CategoryAria,
			Selector:    "[aria-hidden=true]",
			Message:     "aria-hidden element contains focusable content",
			Suggestion:  `Add tabindex="-1" (or disabled) to focusable descendants of aria-hidden containers`,
			Resources:   []string{"https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html"},
			Test:        testAriaHiddenFocusable,
		},
		{
			ID:          "missing-main-landmark",
			Name:        "Page should have a main landmark",
			Description: "A main landmark lets assistive technology users jump straight to the content, skipping repeated chrome.",
			WCAG:        "1.3.1",
			Severity:    SeverityInfo,
			Category:    CategoryStructure,
			Selector:    "body",
			Message:     "No main landmark found",
			Suggestion:  `Wrap the primary content in <main> or role="main"`,
			Resources:   []string{"https://www.w3.org/WAI/ARIA/apg/patterns/landmarks/"},
			Test: func(ctx context.Context, el *dom.Element) (bool, error) {
				return len(el.Find("main, [role=main]")) > 0, nil
			},
		},
	}
}

// AccessibleName computes a rough accessible name for an element: aria-label,
// aria-labelledby (resolved against the document), descendant text, alt text
// of descendant images, then the title attribute. This is a heuristic subset
// of the accname algorithm, sufficient for emptiness checks.
func AccessibleName(el *dom.Element) string {
	if v := strings.TrimSpace(el.AttrOr("aria-label", "")); v != "" {
		return v
	}
	if ids := strings.Fields(el.AttrOr("aria-labelledby", "")); len(ids) > 0 {
		var parts []string
		for _, id := range ids {
			if ref := el.Document().ByID(id); ref != nil {
				if t := ref.Text(); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if t := el.Text(); t != "" {
		return t
	}
	for _, img := range el.Find("img") {
		if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
			return alt
		}
	}
	return strings.TrimSpace(el.AttrOr("title", ""))
}

// IsFocusable reports whether an element can receive keyboard focus.
func IsFocusable(el *dom.Element) bool {
	if v, ok := el.Attr("tabindex"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n >= 0
		}
	}
	if _, disabled := el.Attr("disabled"); disabled {
		return false
	}
	switch el.Tag() {
	case "a", "area":
		_, ok := el.Attr("href")
		return ok
	case "input", "select", "textarea", "button":
		return true
	}
	return false
}

// IsInteractive reports whether an element is natively interactive,
// keyboard-focusable, or carries a click handler attribute.
func IsInteractive(el *dom.Element) bool {
	if IsFocusable(el) {
		return true
	}
	switch el.AttrOr("role", "") {
	case "button", "link", "checkbox", "radio", "tab", "menuitem", "switch", "slider":
		return true
	}
	_, onclick := el.Attr("onclick")
	return onclick
}

// isDecorative reports whether an image is explicitly marked decorative.
func isDecorative(el *dom.Element) bool {
	switch el.AttrOr("role", "") {
	case "presentation", "none":
		return true
	}
	return el.AttrOr("aria-hidden", "") == "true"
}

func testFormLabel(ctx context.Context, el *dom.Element) (bool, error) {
	if el.Tag() == "input" {
		switch el.AttrOr("type", "text") {
		case "hidden", "submit", "reset", "button", "image":
			return true, nil
		}
	}
	if strings.TrimSpace(el.AttrOr("aria-label", "")) != "" {
		return true, nil
	}
	if el.AttrOr("aria-labelledby", "") != "" {
		return true, nil
	}
	if strings.TrimSpace(el.AttrOr("title", "")) != "" {
		return true, nil
	}
	if id := el.ID(); id != "" {
		for _, lbl := range el.Document().Root().Find("label") {
			if lbl.AttrOr("for", "") == id {
				return true, nil
			}
		}
	}
	// Wrapping label counts too.
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag() == "label" {
			return true, nil
		}
	}
	return false, nil
}

func testHeadingStructure(ctx context.Context, el *dom.Element) (bool, error) {
	level := headingLevel(el.Tag())
	if level == 0 {
		return true, nil
	}
	prev := previousHeading(el)
	if prev == 0 {
		return true, nil // first heading sets the baseline
	}
	return level <= prev+1, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// previousHeading returns the level of the heading preceding el in document
// order, 0 when el is the first heading.
func previousHeading(el *dom.Element) int {
	headings, err := el.Document().QueryAll("h1, h2, h3, h4, h5, h6")
	if err != nil {
		return 0
	}
	prev := 0
	for _, h := range headings {
		if h.Node() == el.Node() {
			return prev
		}
		prev = headingLevel(h.Tag())
	}
	return 0
}

func testDuplicateID(ctx context.Context, el *dom.Element) (bool, error) {
	id := el.ID()
	if id == "" {
		return true, nil
	}
	count := 0
	root := el.Document().Root()
	if root.ID() == id {
		count++
	}
	for _, other := range root.Find("[id]") {
		if other.ID() == id {
			count++
		}
	}
	return count <= 1, nil
}

var genericLinkPhrases = map[string]struct{}{
	"click here": {}, "click": {}, "here": {}, "read more": {}, "more": {},
	"learn more": {}, "details": {}, "link": {}, "this": {}, "go": {},
}

func testGenericLinkText(ctx context.Context, el *dom.Element) (bool, error) {
	text := strings.ToLower(strings.TrimSpace(el.Text()))
	if text == "" {
		return true, nil // empty-links covers this case
	}
	_, generic := genericLinkPhrases[text]
	return !generic, nil
}

func testAriaHiddenFocusable(ctx context.Context, el *dom.Element) (bool, error) {
	if IsFocusable(el) {
		return false, nil
	}
	for _, d := range el.Descendants() {
		if IsFocusable(d) {
			return false, nil
		}
	}
	return true, nil
}
