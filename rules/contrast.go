package rules

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/Kvnq-Poza/a11y-live/dom"
)

// testContrast is a deliberately narrow heuristic: it only evaluates colours
// declared in inline style attributes, resolving the background by walking
// ancestor inline styles and defaulting to white. Computed stylesheets are
// out of reach of a snapshot, so absence of a verdict means "unknown", never
// a violation.
func testContrast(ctx context.Context, el *dom.Element) (bool, error) {
	style := parseInlineStyle(el.AttrOr("style", ""))

	fg, ok := parseColor(style["color"])
	if !ok {
		return true, nil
	}
	if strings.TrimSpace(el.Text()) == "" {
		return true, nil
	}

	bg, ok := parseColor(style["background-color"])
	if !ok {
		bg = backgroundOf(el)
	}

	ratio := contrastRatio(fg, bg)
	threshold := 4.5
	if isLargeText(style["font-size"]) {
		threshold = 3.0
	}
	return ratio >= threshold, nil
}

// backgroundOf walks ancestor inline styles for a background colour,
// defaulting to white.
func backgroundOf(el *dom.Element) rgb {
	for p := el.Parent(); p != nil; p = p.Parent() {
		style := parseInlineStyle(p.AttrOr("style", ""))
		if c, ok := parseColor(style["background-color"]); ok {
			return c
		}
	}
	return rgb{255, 255, 255}
}

func isLargeText(fontSize string) bool {
	s := strings.TrimSuffix(strings.TrimSpace(fontSize), "px")
	px, err := strconv.ParseFloat(s, 64)
	return err == nil && px >= 24
}

// parseInlineStyle splits "k: v; k2: v2" into a lowercase-keyed map.
func parseInlineStyle(style string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

type rgb struct{ r, g, b float64 }

var namedColors = map[string]rgb{
	"black": {0, 0, 0}, "white": {255, 255, 255}, "red": {255, 0, 0},
	"green": {0, 128, 0}, "blue": {0, 0, 255}, "yellow": {255, 255, 0},
	"gray": {128, 128, 128}, "grey": {128, 128, 128}, "silver": {192, 192, 192},
	"orange": {255, 165, 0}, "purple": {128, 0, 128}, "navy": {0, 0, 128},
	"lightgray": {211, 211, 211}, "lightgrey": {211, 211, 211},
	"darkgray": {169, 169, 169}, "darkgrey": {169, 169, 169},
}

func parseColor(s string) (rgb, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return rgb{}, false
	}
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		inner := s[strings.IndexByte(s, '(')+1:]
		inner = strings.TrimSuffix(inner, ")")
		parts := strings.Split(inner, ",")
		if len(parts) < 3 {
			return rgb{}, false
		}
		var vals [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if err != nil {
				return rgb{}, false
			}
			vals[i] = v
		}
		return rgb{vals[0], vals[1], vals[2]}, true
	}
	return rgb{}, false
}

func parseHex(s string) (rgb, bool) {
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return rgb{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(n >> 16 & 0xff), float64(n >> 8 & 0xff), float64(n & 0xff)}, true
}

// contrastRatio computes the WCAG contrast ratio between two colours.
func contrastRatio(a, b rgb) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// luminance is the WCAG relative luminance of an sRGB colour.
func luminance(c rgb) float64 {
	lin := func(v float64) float64 {
		v /= 255
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}
