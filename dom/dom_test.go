package dom

import "testing"

const testPage = `<!DOCTYPE html>
<html lang="en">
<head><title>t</title></head>
<body>
  <header><nav><a href="/">Home</a></nav></header>
  <main id="content">
    <h1 class="title big">Hello</h1>
    <div><p>first</p><p>second</p></div>
    <img src="x.png">
  </main>
  <footer>fin</footer>
</body>
</html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	d, err := ParseString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRootAndBody(t *testing.T) {
	d := mustParse(t, testPage)
	if got := d.Root().Tag(); got != "html" {
		t.Errorf("Root().Tag() = %q, want html", got)
	}
	if got := d.Body().Tag(); got != "body" {
		t.Errorf("Body().Tag() = %q, want body", got)
	}
}

func TestQueryAll(t *testing.T) {
	d := mustParse(t, testPage)
	ps, err := d.QueryAll("main p")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 2 {
		t.Fatalf("QueryAll(main p): got %d, want 2", len(ps))
	}
	if ps[0].Text() != "first" || ps[1].Text() != "second" {
		t.Errorf("document order broken: %q, %q", ps[0].Text(), ps[1].Text())
	}
}

func TestQueryAllInvalidSelector(t *testing.T) {
	d := mustParse(t, testPage)
	if _, err := d.QueryAll("p[["); err == nil {
		t.Error("QueryAll with invalid selector: want error")
	}
}

func TestByID(t *testing.T) {
	d := mustParse(t, testPage)
	el := d.ByID("content")
	if el == nil || el.Tag() != "main" {
		t.Fatalf("ByID(content) = %v", el)
	}
	if d.ByID("nope") != nil {
		t.Error("ByID(nope): want nil")
	}
}

func TestPathAndResolve(t *testing.T) {
	d := mustParse(t, testPage)
	ps, _ := d.QueryAll("main div p")
	if len(ps) != 2 {
		t.Fatal("setup")
	}

	want := "/html/body/main/div/p"
	if got := ps[0].Path(); got != want {
		t.Errorf("Path: got %q, want %q", got, want)
	}
	want2 := "/html/body/main/div/p[2]"
	if got := ps[1].Path(); got != want2 {
		t.Errorf("Path: got %q, want %q", got, want2)
	}

	for _, p := range ps {
		back := d.Resolve(p.Path())
		if back == nil || back.Node() != p.Node() {
			t.Errorf("Resolve(%q) did not round-trip", p.Path())
		}
	}

	if d.Resolve("/html/body/main/div/p[9]") != nil {
		t.Error("Resolve of missing path: want nil")
	}
	if d.Resolve("") != nil {
		t.Error("Resolve of empty path: want nil")
	}
}

func TestAttrAndClasses(t *testing.T) {
	d := mustParse(t, testPage)
	h1, _ := d.QueryAll("h1")
	if len(h1) != 1 {
		t.Fatal("setup")
	}
	cls := h1[0].Classes()
	if len(cls) != 2 || cls[0] != "title" || cls[1] != "big" {
		t.Errorf("Classes = %v", cls)
	}
	if _, ok := h1[0].Attr("missing"); ok {
		t.Error("Attr(missing): want absent")
	}
	if got := h1[0].AttrOr("class", "x"); got != "title big" {
		t.Errorf("AttrOr = %q", got)
	}
}

func TestMatchesAndFind(t *testing.T) {
	d := mustParse(t, testPage)
	main := d.ByID("content")
	if !main.Matches("main#content") {
		t.Error("Matches(main#content) = false")
	}
	if main.Matches("[[bad") {
		t.Error("invalid selector must never match")
	}
	imgs := main.Find("img")
	if len(imgs) != 1 {
		t.Errorf("Find(img): got %d, want 1", len(imgs))
	}
}

func TestParentDescendants(t *testing.T) {
	d := mustParse(t, testPage)
	a, _ := d.QueryAll("nav a")
	if got := a[0].Parent().Tag(); got != "nav" {
		t.Errorf("Parent = %q, want nav", got)
	}
	root := d.Root()
	if root.Parent() != nil {
		t.Error("root Parent: want nil")
	}
	desc := d.Body().Descendants()
	// header, nav, a, main, h1, div, p, p, img, footer
	if len(desc) != 10 {
		t.Errorf("Descendants: got %d, want 10", len(desc))
	}
}

func TestGeometry(t *testing.T) {
	d := mustParse(t, testPage)
	img, _ := d.QueryAll("img")

	if img[0].Rendered() {
		t.Error("Rendered without geometry: want false")
	}

	d.SetGeometry(map[string]Geometry{
		img[0].Path(): {Box: Rect{X: 0, Y: 10, Width: 100, Height: 50}, Visible: true},
	}, Rect{Width: 1280, Height: 800})

	if !img[0].Rendered() {
		t.Error("Rendered with visible non-zero box: want true")
	}
	if d.Viewport().Height != 800 {
		t.Errorf("Viewport = %+v", d.Viewport())
	}

	g, ok := img[0].Geometry()
	if !ok || g.Box.Width != 100 {
		t.Errorf("Geometry = %+v, %v", g, ok)
	}
}

func TestSiblingCount(t *testing.T) {
	d := mustParse(t, testPage)
	ps, _ := d.QueryAll("main div p")
	if got := ps[0].SiblingCount(); got != 1 {
		t.Errorf("SiblingCount = %d, want 1", got)
	}
}
