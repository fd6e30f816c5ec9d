package report

// Remediation and educational lookup tables, keyed by rule id. Every
// accessor falls back to generic advice for custom rules.

var fixTable = map[string][]Fix{
	"missing-alt-text": {
		{Description: "Describe the image's content or function in an alt attribute.",
			Snippet: `<img src="chart.png" alt="Q3 revenue by region">`},
		{Description: "Mark purely decorative images so screen readers skip them.",
			Snippet: `<img src="divider.png" alt="" role="presentation">`},
	},
	"empty-buttons": {
		{Description: "Give the button visible text.",
			Snippet: `<button>Save changes</button>`},
		{Description: "For icon-only buttons, add an aria-label.",
			Snippet: `<button aria-label="Close dialog"><svg …></svg></button>`},
	},
	"empty-links": {
		{Description: "Give the link text that describes its destination.",
			Snippet: `<a href="/pricing">View pricing</a>`},
		{Description: "For icon links, add an aria-label.",
			Snippet: `<a href="/" aria-label="Home"><svg …></svg></a>`},
	},
	"missing-form-labels": {
		{Description: "Associate a visible label with the control via for/id.",
			Snippet: `<label for="email">Email</label><input id="email" type="email">`},
		{Description: "Or wrap the control in its label.",
			Snippet: `<label>Email <input type="email"></label>`},
	},
	"missing-heading-structure": {
		{Description: "Use the next heading level down instead of skipping, then style with CSS.",
			Snippet: `<h1>Title</h1> <h2>Section</h2> <h3>Subsection</h3>`},
	},
	"missing-lang": {
		{Description: "Declare the page language on the html element.",
			Snippet: `<html lang="en">`},
	},
	"low-contrast-text": {
		{Description: "Darken the text or lighten the background until the contrast ratio reaches 4.5:1 (3:1 for large text).",
			Snippet: `style="color: #595959; background-color: #ffffff"`},
	},
	"missing-iframe-title": {
		{Description: "Add a title describing the frame's content.",
			Snippet: `<iframe src="map.html" title="Office location map"></iframe>`},
	},
	"positive-tabindex": {
		{Description: "Remove the positive tabindex and rely on document order.",
			Snippet: `<button tabindex="0">…</button>`},
		{Description: "If focus order is wrong, reorder the markup instead of overriding it."},
	},
	"duplicate-ids": {
		{Description: "Make every id unique within the document; update label for/aria-labelledby references to match."},
	},
	"missing-table-headers": {
		{Description: "Mark header cells with th and scope.",
			Snippet: `<tr><th scope="col">Name</th><th scope="col">Role</th></tr>`},
	},
	"generic-link-text": {
		{Description: "Replace generic phrases with the link's destination or action.",
			Snippet: `<a href="/report.pdf">Download the 2026 annual report</a>`},
	},
	"aria-hidden-focusable": {
		{Description: "Remove the element from the tab order while it is aria-hidden.",
			Snippet: `<button aria-hidden="true" tabindex="-1">…</button>`},
		{Description: "Or drop aria-hidden if the element should be reachable."},
	},
	"missing-main-landmark": {
		{Description: "Wrap the primary content in a main element.",
			Snippet: `<main>…page content…</main>`},
	},
}

var genericFixes = []Fix{
	{Description: "Review the element against the rule's WCAG success criterion and adjust markup or attributes accordingly."},
}

func fixesFor(ruleID string) []Fix {
	if fixes, ok := fixTable[ruleID]; ok {
		return fixes
	}
	return genericFixes
}

var educationTable = map[string]Education{
	"missing-alt-text": {
		Explanation: "Screen readers announce an image's alt text. Without it they fall back to the file name or say nothing, so the information in the image is lost.",
		Analogy:     "An image without alt text is like a photo in a newspaper with no caption, for someone who cannot see the photo.",
	},
	"empty-buttons": {
		Explanation: "A button with no accessible name is announced only as \"button\". The user knows something is clickable but not what it does.",
		Analogy:     "It is an unlabelled switch on a wall: you can flip it, but you have no idea what it controls.",
	},
	"empty-links": {
		Explanation: "Screen-reader users often navigate by a list of links pulled out of context. A link without a name is announced as just \"link\".",
	},
	"missing-form-labels": {
		Explanation: "Labels tell assistive technology what a field is for and give sighted users a larger click target. Placeholders disappear on input and are not a substitute.",
	},
	"missing-heading-structure": {
		Explanation: "Headings form the page's outline. Screen-reader users jump between them; a skipped level suggests content is missing.",
		Analogy:     "Skipping from chapter 1 straight to section 1.1.1 makes a book's table of contents impossible to follow.",
	},
	"missing-lang": {
		Explanation: "The lang attribute selects the speech synthesizer's pronunciation rules. Without it, text may be read with the wrong accent or phonemes.",
	},
	"low-contrast-text": {
		Explanation: "Users with low vision, and anyone on a sunlit screen, need sufficient luminance contrast between text and its background to read comfortably.",
	},
	"missing-iframe-title": {
		Explanation: "Frames appear as opaque containers to assistive technology. The title is the only hint of what is inside before entering it.",
	},
	"positive-tabindex": {
		Explanation: "Positive tabindex values pull elements to the front of the tab order, creating a focus sequence that no longer matches the visual layout.",
	},
	"duplicate-ids": {
		Explanation: "label for, aria-labelledby and anchor targets all resolve ids. With duplicates, assistive technology silently binds to the first match, which may be the wrong element.",
	},
	"missing-table-headers": {
		Explanation: "Header cells let screen readers announce the row and column context of each data cell. Without them a table is read as an undifferentiated stream of values.",
	},
	"generic-link-text": {
		Explanation: "\"Click here\" and \"read more\" carry no meaning when links are listed out of context, which is how many screen-reader users scan a page.",
	},
	"aria-hidden-focusable": {
		Explanation: "aria-hidden removes an element from the accessibility tree but not the tab order. Keyboard focus lands on something that, to a screen reader, does not exist.",
	},
	"missing-main-landmark": {
		Explanation: "The main landmark lets users skip repeated headers and navigation and jump straight to the page's primary content.",
	},
}

var genericEducation = Education{
	Explanation: "This check flags markup that commonly blocks assistive-technology users. See the linked resources for the underlying guideline.",
}

func educationFor(ruleID string, resources []string) Education {
	edu, ok := educationTable[ruleID]
	if !ok {
		edu = genericEducation
	}
	if len(edu.Resources) == 0 {
		edu.Resources = resources
	}
	return edu
}

var userImpactTable = map[string]string{
	"missing-alt-text":          "Blind and low-vision users miss the information the image conveys.",
	"empty-buttons":             "Screen-reader users cannot tell what the button does before pressing it.",
	"empty-links":               "Screen-reader users cannot tell where the link leads.",
	"missing-form-labels":       "Users of assistive technology cannot tell what to enter in the field.",
	"missing-heading-structure": "Screen-reader users navigating by headings get a confusing page outline.",
	"missing-lang":              "Text may be mispronounced by screen readers using the wrong language profile.",
	"low-contrast-text":         "Users with low vision or colour-vision deficiency struggle to read the text.",
	"missing-iframe-title":      "Screen-reader users cannot tell what the embedded frame contains.",
	"positive-tabindex":         "Keyboard users are moved through the page in an order that contradicts the layout.",
	"duplicate-ids":             "Assistive technology may announce the wrong label or target for the element.",
	"missing-table-headers":     "Screen-reader users lose the row and column context of every data cell.",
	"generic-link-text":         "Users scanning a link list cannot distinguish one destination from another.",
	"aria-hidden-focusable":     "Keyboard focus lands on an element that screen readers do not announce at all.",
	"missing-main-landmark":     "Assistive-technology users cannot skip directly to the primary content.",
}

const genericUserImpact = "Some users of assistive technology will have difficulty perceiving or operating this element."

func userImpactFor(ruleID string) string {
	if s, ok := userImpactTable[ruleID]; ok {
		return s
	}
	return genericUserImpact
}
