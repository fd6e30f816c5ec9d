package rules

import (
	"context"
	"math"
	"testing"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

func TestContrastRatioKnownValues(t *testing.T) {
	// Black on white is the maximum, 21:1.
	if got := contrastRatio(rgb{0, 0, 0}, rgb{255, 255, 255}); math.Abs(got-21) > 0.01 {
		t.Errorf("black/white ratio = %.2f, want 21", got)
	}
	// A colour against itself is 1:1.
	if got := contrastRatio(rgb{40, 90, 200}, rgb{40, 90, 200}); math.Abs(got-1) > 0.001 {
		t.Errorf("self ratio = %.2f, want 1", got)
	}
	// Symmetry.
	a, b := rgb{120, 120, 120}, rgb{250, 250, 250}
	if contrastRatio(a, b) != contrastRatio(b, a) {
		t.Error("contrast ratio must be symmetric")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want rgb
		ok   bool
	}{
		{"#fff", rgb{255, 255, 255}, true},
		{"#000000", rgb{0, 0, 0}, true},
		{"#1a2B3c", rgb{26, 43, 60}, true},
		{"rgb(1, 2, 3)", rgb{1, 2, 3}, true},
		{"rgba(1,2,3,0.5)", rgb{1, 2, 3}, true},
		{"white", rgb{255, 255, 255}, true},
		{"", rgb{}, false},
		{"#12", rgb{}, false},
		{"blurple", rgb{}, false},
	}
	for _, c := range cases {
		got, ok := parseColor(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseColor(%q) = %+v,%v want %+v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestLowContrastRule(t *testing.T) {
	r := NewCatalog().Get("low-contrast-text")
	run := func(page string) bool {
		d, _ := dom.ParseString(page)
		els, _ := d.QueryAll("p[style]")
		if len(els) == 0 {
			t.Fatal("setup")
		}
		pass, err := r.Test(context.Background(), els[0])
		if err != nil {
			t.Fatal(err)
		}
		return pass
	}

	if run(`<html><body><p style="color:#ccc">faint text</p></body></html>`) {
		t.Error("light gray on default white must fail")
	}
	if !run(`<html><body><p style="color:#000">solid text</p></body></html>`) {
		t.Error("black on white must pass")
	}
	if !run(`<html><body><p style="color:#777; font-size: 32px">large text</p></body></html>`) {
		t.Error("mid gray at 32px falls under the large-text threshold and must pass")
	}
	// Background resolved from an ancestor's inline style.
	if !run(`<html><body><div style="background-color:#000"><p style="color:#fff">inverted</p></div></body></html>`) {
		t.Error("white on inherited black must pass")
	}
	// No text content: nothing to judge.
	if !run(`<html><body><p style="color:#eee"></p></body></html>`) {
		t.Error("empty element must pass")
	}
}
