package runner

import (
	"fmt"
	"strings"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

// PathSelector derives a stable-ish CSS selector identifying an element:
// "#id" when the element has one, otherwise an ancestor-to-element
// tag.class path with positional indices for ambiguous same-tag siblings,
// stopping below the body boundary.
func PathSelector(el *dom.Element) string {
	if id := el.ID(); id != "" {
		return "#" + id
	}

	var parts []string
	for e := el; e != nil; e = e.Parent() {
		tag := e.Tag()
		if tag == "body" || tag == "html" {
			break
		}
		if id := e.ID(); id != "" {
			parts = append(parts, "#"+id)
			break
		}
		parts = append(parts, segment(e))
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	if len(parts) == 0 {
		return el.Tag()
	}
	return strings.Join(parts, " > ")
}

func segment(e *dom.Element) string {
	seg := e.Tag()
	if cls := e.Classes(); len(cls) > 0 {
		seg += "." + strings.Join(cls, ".")
	}

	// Disambiguate same-tag siblings positionally.
	p := e.Parent()
	if p == nil {
		return seg
	}
	idx, same := 0, 0
	for _, sib := range p.Children() {
		if sib.Tag() == e.Tag() {
			same++
			if sib.Node() == e.Node() {
				idx = same
			}
		}
	}
	if same > 1 {
		seg += fmt.Sprintf(":nth-of-type(%d)", idx)
	}
	return seg
}
