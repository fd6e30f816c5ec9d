package report

import (
	"strings"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// enrich builds the presentation-ready Result for one surviving violation.
// The element handle may be nil (cache-rehydrated violations whose node no
// longer resolves); enrichment then falls back to defaults.
func (r *Reporter) enrich(v rules.Violation) *Result {
	res := &Result{
		RuleID:      v.Rule.ID,
		Name:        v.Rule.Name,
		Description: v.Rule.Description,
		WCAG:        v.Rule.WCAG,
		Severity:    v.Rule.Severity,
		Category:    v.Rule.Category,
		Selector:    v.Selector,
		Message:     v.Rule.Message,
		Suggestion:  v.Rule.Suggestion,
		Impact:      v.Impact,
		At:          v.At,

		Location:   landmarkPath(v.Element),
		Purpose:    purposeOf(v.Element),
		Context:    contextOf(v.Element),
		Fixes:      fixesFor(v.Rule.ID),
		Education:  educationFor(v.Rule.ID, v.Rule.Resources),
		UserImpact: userImpactFor(v.Rule.ID),
	}
	if v.Element != nil {
		res.Excerpt = excerpt(v.Element.OuterHTML())
	}
	return res
}

// landmarkNames maps landmark tags and roles to reader-facing labels.
var landmarkNames = map[string]string{
	"header":        "header",
	"banner":        "header",
	"nav":           "navigation",
	"navigation":    "navigation",
	"main":          "main content",
	"aside":         "sidebar",
	"complementary": "sidebar",
	"footer":        "footer",
	"contentinfo":   "footer",
	"form":          "form",
	"search":        "search",
	"region":        "region",
	"article":       "article",
	"section":       "section",
}

// landmarkPath walks the element's ancestors collecting semantic landmarks
// and composes them top-down, e.g. "main content → form". Elements outside
// any landmark report "page content".
func landmarkPath(el *dom.Element) string {
	if el == nil {
		return "page content"
	}
	var names []string
	for p := el.Parent(); p != nil; p = p.Parent() {
		label := ""
		if role := p.AttrOr("role", ""); role != "" {
			label = landmarkNames[strings.ToLower(role)]
		}
		if label == "" {
			label = landmarkNames[p.Tag()]
		}
		if label == "section" || label == "region" {
			// Anonymous sections are not landmarks.
			if p.AttrOr("aria-label", "") == "" && p.AttrOr("aria-labelledby", "") == "" {
				continue
			}
		}
		if label != "" {
			names = append(names, label)
		}
	}
	if len(names) == 0 {
		return "page content"
	}
	// Collected bottom-up; present top-down.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " → ")
}

var tagPurposes = map[string]string{
	"a":        "link",
	"button":   "button",
	"img":      "image",
	"input":    "form field",
	"select":   "dropdown",
	"textarea": "text area",
	"label":    "form label",
	"table":    "data table",
	"iframe":   "embedded frame",
	"video":    "video player",
	"audio":    "audio player",
	"form":     "form",
	"nav":      "navigation menu",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"ul":       "list",
	"ol":       "list",
	"p":        "paragraph",
}

var inputPurposes = map[string]string{
	"text":     "text field",
	"email":    "email field",
	"password": "password field",
	"search":   "search field",
	"tel":      "phone field",
	"url":      "URL field",
	"number":   "number field",
	"checkbox": "checkbox",
	"radio":    "radio button",
	"submit":   "submit button",
	"button":   "button",
	"file":     "file picker",
	"range":    "slider",
	"date":     "date picker",
}

var rolePurposes = map[string]string{
	"button":   "button",
	"link":     "link",
	"checkbox": "checkbox",
	"radio":    "radio button",
	"tab":      "tab",
	"menuitem": "menu item",
	"dialog":   "dialog",
	"alert":    "alert",
	"img":      "image",
	"heading":  "heading",
	"textbox":  "text field",
	"combobox": "dropdown",
	"slider":   "slider",
	"switch":   "toggle switch",
}

// purposeOf infers a short human description of what the element is for.
func purposeOf(el *dom.Element) string {
	if el == nil {
		return "content element"
	}
	if role := strings.ToLower(el.AttrOr("role", "")); role != "" {
		if p, ok := rolePurposes[role]; ok {
			return p
		}
	}
	tag := el.Tag()
	if tag == "input" {
		typ := strings.ToLower(el.AttrOr("type", "text"))
		if p, ok := inputPurposes[typ]; ok {
			return p
		}
		return "form field"
	}
	if p, ok := tagPurposes[tag]; ok {
		return p
	}
	return "content element"
}

// contextOf snapshots sibling count and geometry relative to the viewport.
func contextOf(el *dom.Element) Context {
	if el == nil {
		return Context{}
	}
	c := Context{Siblings: el.SiblingCount()}
	geo, ok := el.Geometry()
	if !ok {
		return c
	}
	c.Rendered = geo.Visible && !geo.Box.Zero()
	c.Box = geo.Box
	vp := el.Document().Viewport()
	if !vp.Zero() {
		c.InViewport = geo.Box.X < vp.X+vp.Width &&
			geo.Box.X+geo.Box.Width > vp.X &&
			geo.Box.Y < vp.Y+vp.Height &&
			geo.Box.Y+geo.Box.Height > vp.Y
	}
	return c
}

const maxExcerpt = 300

// excerpt truncates serialized markup for display. The raw markup is
// sanitised again at export time.
func excerpt(markup string) string {
	markup = strings.TrimSpace(markup)
	if len(markup) <= maxExcerpt {
		return markup
	}
	return markup[:maxExcerpt] + "…"
}
