package runner

import (
	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

const maxImpact = 10.0

// Score computes the heuristic impact of a violation on the given element:
// base 1.0 × severity × visibility × interactivity × main-content placement,
// capped at 10. It is a priority signal, not a normative measure.
func Score(el *dom.Element, sev rules.Severity) float64 {
	score := 1.0 * sev.Multiplier()

	if el.Rendered() {
		score *= 2.0
	}
	if rules.IsInteractive(el) {
		score *= 1.5
	}
	if inMainContent(el) {
		score *= 1.3
	}

	if score > maxImpact {
		return maxImpact
	}
	return score
}

// inMainContent reports whether the element sits inside a main landmark and
// outside the page chrome (header/footer/nav/aside landmarks).
func inMainContent(el *dom.Element) bool {
	inMain := false
	for p := el; p != nil; p = p.Parent() {
		switch p.Tag() {
		case "header", "footer", "nav", "aside":
			return false
		case "main":
			inMain = true
		}
		switch p.AttrOr("role", "") {
		case "banner", "contentinfo", "navigation", "complementary":
			return false
		case "main":
			inMain = true
		}
	}
	return inMain
}
