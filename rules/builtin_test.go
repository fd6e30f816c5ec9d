package rules

import (
	"context"
	"testing"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

func runRule(t *testing.T, id, page, selector string) []bool {
	t.Helper()
	d, err := dom.ParseString(page)
	if err != nil {
		t.Fatal(err)
	}
	r := NewCatalog().Get(id)
	if r == nil {
		t.Fatalf("rule %q not found", id)
	}
	els, err := d.QueryAll(selector)
	if err != nil {
		t.Fatal(err)
	}
	if len(els) == 0 {
		t.Fatalf("no elements for %q", selector)
	}
	var out []bool
	for _, el := range els {
		pass, err := r.Test(context.Background(), el)
		if err != nil {
			t.Fatalf("test error: %v", err)
		}
		out = append(out, pass)
	}
	return out
}

func TestMissingAltText(t *testing.T) {
	got := runRule(t, "missing-alt-text",
		`<html><body><img src="x.png"></body></html>`, "img")
	if got[0] {
		t.Error("img without alt must fail")
	}

	got = runRule(t, "missing-alt-text",
		`<html><body><img src="x.png" alt="a chart"></body></html>`, "img")
	if !got[0] {
		t.Error("img with alt must pass")
	}

	got = runRule(t, "missing-alt-text",
		`<html><body><img src="x.png" alt=""></body></html>`, "img")
	if !got[0] {
		t.Error("img with empty alt is explicitly decorative and must pass")
	}

	got = runRule(t, "missing-alt-text",
		`<html><body><img src="x.png" role="presentation"></body></html>`, "img")
	if !got[0] {
		t.Error("decorative img must pass")
	}
}

func TestEmptyButtons(t *testing.T) {
	got := runRule(t, "empty-buttons",
		`<html><body><button></button></body></html>`, "button")
	if got[0] {
		t.Error("empty button must fail")
	}

	for _, page := range []string{
		`<html><body><button>Save</button></body></html>`,
		`<html><body><button aria-label="Save"></button></body></html>`,
		`<html><body><span id="l">Save</span><button aria-labelledby="l"></button></body></html>`,
		`<html><body><button><img src="s.png" alt="Save"></button></body></html>`,
		`<html><body><button title="Save"></button></body></html>`,
	} {
		got = runRule(t, "empty-buttons", page, "button")
		if !got[0] {
			t.Errorf("button must pass: %s", page)
		}
	}
}

func TestEmptyLinks(t *testing.T) {
	got := runRule(t, "empty-links",
		`<html><body><a href="/x"></a></body></html>`, "a")
	if got[0] {
		t.Error("empty link must fail")
	}
	got = runRule(t, "empty-links",
		`<html><body><a href="/x">Pricing</a></body></html>`, "a")
	if !got[0] {
		t.Error("link with text must pass")
	}
}

func TestFormLabels(t *testing.T) {
	got := runRule(t, "missing-form-labels",
		`<html><body><input type="text" name="q"></body></html>`, "input")
	if got[0] {
		t.Error("unlabelled input must fail")
	}

	for _, page := range []string{
		`<html><body><label for="q">Query</label><input id="q" type="text"></body></html>`,
		`<html><body><label>Query <input type="text"></label></body></html>`,
		`<html><body><input type="text" aria-label="Query"></body></html>`,
		`<html><body><input type="hidden" name="token"></body></html>`,
		`<html><body><input type="submit" value="Go"></body></html>`,
	} {
		got = runRule(t, "missing-form-labels", page, "input")
		if !got[0] {
			t.Errorf("input must pass: %s", page)
		}
	}
}

func TestHeadingStructure(t *testing.T) {
	// h1 then h3 skips h2: the h3 fails.
	d, _ := dom.ParseString(`<html><body><h1>a</h1><h3>b</h3></body></html>`)
	r := NewCatalog().Get("missing-heading-structure")

	h3, _ := d.QueryAll("h3")
	pass, _ := r.Test(context.Background(), h3[0])
	if pass {
		t.Error("h1→h3 skip must fail on the h3")
	}
	h1, _ := d.QueryAll("h1")
	pass, _ = r.Test(context.Background(), h1[0])
	if !pass {
		t.Error("first heading must pass")
	}

	// Proper sequence passes everywhere.
	d, _ = dom.ParseString(`<html><body><h1>a</h1><h2>b</h2><h3>c</h3></body></html>`)
	hs, _ := d.QueryAll("h1, h2, h3")
	for _, h := range hs {
		if pass, _ := r.Test(context.Background(), h); !pass {
			t.Errorf("heading %s must pass in ordered document", h.Tag())
		}
	}

	// Going back up is fine.
	d, _ = dom.ParseString(`<html><body><h1>a</h1><h2>b</h2><h1>c</h1></body></html>`)
	hs, _ = d.QueryAll("h1, h2")
	for _, h := range hs {
		if pass, _ := r.Test(context.Background(), h); !pass {
			t.Errorf("heading %s must pass when levels decrease", h.Tag())
		}
	}
}

func TestMissingLang(t *testing.T) {
	got := runRule(t, "missing-lang", `<html><body></body></html>`, "html")
	if got[0] {
		t.Error("html without lang must fail")
	}
	got = runRule(t, "missing-lang", `<html lang="fr"><body></body></html>`, "html")
	if !got[0] {
		t.Error("html with lang must pass")
	}
}

func TestIframeTitle(t *testing.T) {
	got := runRule(t, "missing-iframe-title",
		`<html><body><iframe src="/x"></iframe></body></html>`, "iframe")
	if got[0] {
		t.Error("untitled iframe must fail")
	}
	got = runRule(t, "missing-iframe-title",
		`<html><body><iframe src="/x" title="map"></iframe></body></html>`, "iframe")
	if !got[0] {
		t.Error("titled iframe must pass")
	}
}

func TestPositiveTabindex(t *testing.T) {
	got := runRule(t, "positive-tabindex",
		`<html><body><div tabindex="5"></div></body></html>`, "div")
	if got[0] {
		t.Error("tabindex=5 must fail")
	}
	for _, page := range []string{
		`<html><body><div tabindex="0"></div></body></html>`,
		`<html><body><div tabindex="-1"></div></body></html>`,
		`<html><body><div tabindex="x"></div></body></html>`,
	} {
		got = runRule(t, "positive-tabindex", page, "div")
		if !got[0] {
			t.Errorf("must pass: %s", page)
		}
	}
}

func TestDuplicateIDs(t *testing.T) {
	got := runRule(t, "duplicate-ids",
		`<html><body><div id="a"></div><span id="a"></span></body></html>`, "div")
	if got[0] {
		t.Error("duplicate id must fail")
	}
	got = runRule(t, "duplicate-ids",
		`<html><body><div id="a"></div><span id="b"></span></body></html>`, "div")
	if !got[0] {
		t.Error("unique id must pass")
	}
}

func TestTableHeaders(t *testing.T) {
	got := runRule(t, "missing-table-headers",
		`<html><body><table><tr><td>1</td></tr></table></body></html>`, "table")
	if got[0] {
		t.Error("headerless table must fail")
	}
	for _, page := range []string{
		`<html><body><table><tr><th>n</th></tr><tr><td>1</td></tr></table></body></html>`,
		`<html><body><table role="presentation"><tr><td>1</td></tr></table></body></html>`,
	} {
		got = runRule(t, "missing-table-headers", page, "table")
		if !got[0] {
			t.Errorf("table must pass: %s", page)
		}
	}
}

func TestGenericLinkText(t *testing.T) {
	got := runRule(t, "generic-link-text",
		`<html><body><a href="/x">click here</a></body></html>`, "a")
	if got[0] {
		t.Error("'click here' must fail")
	}
	got = runRule(t, "generic-link-text",
		`<html><body><a href="/x">pricing guide</a></body></html>`, "a")
	if !got[0] {
		t.Error("descriptive text must pass")
	}
}

func TestAriaHiddenFocusable(t *testing.T) {
	got := runRule(t, "aria-hidden-focusable",
		`<html><body><div aria-hidden="true"><button>x</button></div></body></html>`, "div")
	if got[0] {
		t.Error("aria-hidden container with focusable child must fail")
	}
	got = runRule(t, "aria-hidden-focusable",
		`<html><body><div aria-hidden="true"><span>x</span></div></body></html>`, "div")
	if !got[0] {
		t.Error("aria-hidden container without focusable content must pass")
	}
}

func TestMissingMainLandmark(t *testing.T) {
	got := runRule(t, "missing-main-landmark",
		`<html><body><div>content</div></body></html>`, "body")
	if got[0] {
		t.Error("page without main must fail")
	}
	for _, page := range []string{
		`<html><body><main>content</main></body></html>`,
		`<html><body><div role="main">content</div></body></html>`,
	} {
		got = runRule(t, "missing-main-landmark", page, "body")
		if !got[0] {
			t.Errorf("must pass: %s", page)
		}
	}
}

func TestAccessibleName(t *testing.T) {
	d, _ := dom.ParseString(`<html><body>
		<span id="lbl">From label</span>
		<button aria-labelledby="lbl"></button>
		<a href="/x" title="t"></a>
	</body></html>`)

	btn, _ := d.QueryAll("button")
	if got := AccessibleName(btn[0]); got != "From label" {
		t.Errorf("AccessibleName via labelledby = %q", got)
	}
	a, _ := d.QueryAll("a")
	if got := AccessibleName(a[0]); got != "t" {
		t.Errorf("AccessibleName via title = %q", got)
	}
}

func TestIsInteractive(t *testing.T) {
	d, _ := dom.ParseString(`<html><body>
		<a href="/x">l</a>
		<div onclick="f()">d</div>
		<span role="button">s</span>
		<p>text</p>
		<button disabled>x</button>
	</body></html>`)

	check := func(sel string, want bool) {
		els, _ := d.QueryAll(sel)
		if got := IsInteractive(els[0]); got != want {
			t.Errorf("IsInteractive(%s) = %v, want %v", sel, got, want)
		}
	}
	check("a", true)
	check("div", true)
	check("span", true)
	check("p", false)
	check("button", false) // disabled controls are out of the tab order
}
