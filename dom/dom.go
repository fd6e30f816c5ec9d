// Package dom provides parsed-document element handles for accessibility
// analysis. A Document is one snapshot of a host page's DOM; Elements are
// borrowed references into that snapshot, valid only for the analysis cycle
// that produced it. The durable identity of an element across snapshots is
// its structural path, never the handle itself.
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Rect is an element's bounding box in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Zero reports whether the box has no area.
func (r Rect) Zero() bool { return r.Width == 0 || r.Height == 0 }

// Geometry is the rendered state of one element, captured by a live source
// alongside the DOM snapshot. Static documents have no geometry.
type Geometry struct {
	Box     Rect `json:"box"`
	Visible bool `json:"visible"`
}

// Document is one parsed DOM snapshot.
type Document struct {
	gq       *goquery.Document
	root     *html.Node // the <html> element node
	geo      map[string]Geometry
	viewport Rect
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}

	var root *html.Node
	for n := gq.Nodes[0]; n != nil; n = n.FirstChild {
		if n.Type == html.ElementNode && n.Data == "html" {
			root = n
			break
		}
		if n.Type == html.DocumentNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "html" {
					root = c
					break
				}
			}
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("dom: parse: no html element")
	}

	return &Document{gq: gq, root: root}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document's <html> element.
func (d *Document) Root() *Element {
	return &Element{doc: d, node: d.root}
}

// Body returns the <body> element, or nil if absent.
func (d *Document) Body() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "body" {
			return &Element{doc: d, node: c}
		}
	}
	return nil
}

// QueryAll returns all elements matching the CSS selector, in document order.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	nodes := sel.MatchAll(d.root)
	els := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Element{doc: d, node: n})
	}
	return els, nil
}

// ByID returns the element with the given id attribute, or nil.
func (d *Document) ByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				found = n
				return false
			}
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Element{doc: d, node: found}
}

// Resolve maps a structural path (as produced by Element.Path or the injected
// observer) back to an element in this snapshot. Returns nil for paths that
// no longer exist — removed nodes are not tracked, so stale paths are normal.
func (d *Document) Resolve(path string) *Element {
	if path == "" {
		return nil
	}
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return nil
	}
	tag, idx := splitSegment(segs[0])
	if tag != "html" || idx != 1 {
		return nil
	}
	n := d.root
	for _, seg := range segs[1:] {
		tag, idx := splitSegment(seg)
		n = nthChild(n, tag, idx)
		if n == nil {
			return nil
		}
	}
	return &Element{doc: d, node: n}
}

// SetGeometry attaches per-element rendered geometry and the viewport size,
// both captured by a live source at snapshot time. Keys are element paths.
func (d *Document) SetGeometry(geo map[string]Geometry, viewport Rect) {
	d.geo = geo
	d.viewport = viewport
}

// Viewport returns the viewport size, zero when unknown.
func (d *Document) Viewport() Rect { return d.viewport }

// Element is a borrowed handle onto one element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node exposes the underlying parse node for selector matching.
func (e *Element) Node() *html.Node { return e.node }

// Document returns the owning snapshot.
func (e *Element) Document() *Document { return e.doc }

// Tag returns the lowercase tag name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or a fallback.
func (e *Element) AttrOr(name, fallback string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return fallback
}

// ID returns the id attribute, empty if absent.
func (e *Element) ID() string { return e.AttrOr("id", "") }

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

// Text returns the trimmed concatenated text of the element's subtree.
func (e *Element) Text() string {
	return strings.TrimSpace(goquery.NewDocumentFromNode(e.node).Text())
}

// OuterHTML serialises the element and its subtree.
func (e *Element) OuterHTML() string {
	s, err := goquery.OuterHtml(goquery.NewDocumentFromNode(e.node).Selection)
	if err != nil {
		return ""
	}
	return s
}

// Parent returns the parent element, nil at the document root.
func (e *Element) Parent() *Element {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return &Element{doc: e.doc, node: p}
		}
	}
	return nil
}

// Children returns the direct child elements.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{doc: e.doc, node: c})
		}
	}
	return out
}

// Descendants returns all element descendants in document order, excluding
// the element itself.
func (e *Element) Descendants() []*Element {
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if n != e.node {
			out = append(out, &Element{doc: e.doc, node: n})
		}
		return true
	})
	return out
}

// Matches reports whether the element matches the CSS selector. Invalid
// selectors never match.
func (e *Element) Matches(selector string) bool {
	sel, err := Compile(selector)
	if err != nil {
		return false
	}
	return sel.Match(e.node)
}

// Find returns descendant elements matching the CSS selector.
func (e *Element) Find(selector string) []*Element {
	sel, err := Compile(selector)
	if err != nil {
		return nil
	}
	nodes := sel.MatchAll(e.node)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n == e.node {
			continue
		}
		out = append(out, &Element{doc: e.doc, node: n})
	}
	return out
}

// SiblingCount returns the number of sibling elements (excluding e).
func (e *Element) SiblingCount() int {
	p := e.node.Parent
	if p == nil {
		return 0
	}
	count := 0
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c != e.node {
			count++
		}
	}
	return count
}

// Path returns the element's structural path, e.g. "/html/body/div[2]/p".
// The index disambiguates same-tag siblings and is omitted for the first.
// The injected live observer computes the identical form.
func (e *Element) Path() string {
	var parts []string
	for n := e.node; n != nil && n.Type == html.ElementNode; {
		idx := 1
		for s := n.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == n.Data {
				idx++
			}
		}
		if idx > 1 {
			parts = append(parts, fmt.Sprintf("%s[%d]", n.Data, idx))
		} else {
			parts = append(parts, n.Data)
		}
		p := n.Parent
		n = nil
		if p != nil && p.Type == html.ElementNode {
			n = p
		}
	}
	// Reverse into root-first order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Geometry returns the element's rendered geometry, false when the snapshot
// carries none (static documents, or nodes added after capture).
func (e *Element) Geometry() (Geometry, bool) {
	if e.doc.geo == nil {
		return Geometry{}, false
	}
	g, ok := e.doc.geo[e.Path()]
	return g, ok
}

// Rendered reports whether the element is currently painted with a non-zero
// box. Without geometry this is always false: visibility is a live-page
// signal, not something a static parse can answer.
func (e *Element) Rendered() bool {
	g, ok := e.Geometry()
	return ok && g.Visible && !g.Box.Zero()
}

func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n.Type == html.ElementNode {
		if !fn(n) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func splitSegment(seg string) (tag string, idx int) {
	idx = 1
	if i := strings.IndexByte(seg, '['); i >= 0 {
		tag = seg[:i]
		fmt.Sscanf(seg[i:], "[%d]", &idx)
		return tag, idx
	}
	return seg, 1
}

func nthChild(parent *html.Node, tag string, idx int) *html.Node {
	seen := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			seen++
			if seen == idx {
				return c
			}
		}
	}
	return nil
}

// Selector compilation is cached: rule selectors are matched against every
// element of every batch, and cascadia parsing is not free.
var (
	selMu    sync.RWMutex
	selCache = map[string]cascadia.Selector{}
)

// Compile parses a CSS selector through the package cache. Callers that
// need to distinguish invalid selectors from non-matches use this directly.
func Compile(selector string) (cascadia.Selector, error) {
	selMu.RLock()
	sel, ok := selCache[selector]
	selMu.RUnlock()
	if ok {
		return sel, nil
	}

	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}

	selMu.Lock()
	selCache[selector] = sel
	selMu.Unlock()
	return sel, nil
}
