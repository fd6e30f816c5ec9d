package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Kvnq-Poza/a11y-live/rules"
)

func seededReporter(t *testing.T) *Reporter {
	t.Helper()
	r := New(nil)
	r.Process([]rules.Violation{
		{Rule: mkRule("missing-alt-text", "Missing Alt Text", "1.1.1", rules.SeverityError, rules.CategoryImages),
			Selector: "#hero-img", Impact: 6},
		{Rule: mkRule("empty-buttons", "Empty Buttons", "4.1.2", rules.SeverityError, rules.CategoryForms),
			Selector: `main > button:nth-of-type(2)`, Impact: 9},
		{Rule: mkRule("missing-heading-structure", "Heading Structure", "1.3.1", rules.SeverityWarning, rules.CategoryStructure),
			Selector: "#sub", Impact: 2},
	})
	return r
}

func TestExportUnsupportedFormat(t *testing.T) {
	r := seededReporter(t)
	if _, err := r.Export("pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Export(pdf) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := r.Export(""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Export(\"\") error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExportJSON(t *testing.T) {
	r := seededReporter(t)
	out, err := r.Export(FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Summary Summary                  `json:"summary"`
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.Summary.Total != 3 || len(doc.Results) != 3 {
		t.Fatalf("summary total = %d, results = %d", doc.Summary.Total, len(doc.Results))
	}
	// Selector stands in for the element; no element field is serialized.
	for _, res := range doc.Results {
		if _, ok := res["element"]; ok {
			t.Error("element handle leaked into JSON export")
		}
		if res["selector"] == "" {
			t.Error("result missing selector")
		}
	}
}

func TestExportCSV(t *testing.T) {
	r := New(nil)
	ru := mkRule("generic-link-text", `Generic "Link" Text`, "2.4.4", rules.SeverityWarning, rules.CategoryNavigation)
	ru.Message = `link says "click here", which is meaningless out of context`
	r.Process([]rules.Violation{{Rule: ru, Selector: "a.more", Impact: 3}})

	out, err := r.Export(FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d csv records, want header + 1 row", len(recs))
	}
	if recs[0][0] != "ruleId" {
		t.Errorf("header = %v", recs[0])
	}
	row := recs[1]
	if row[1] != `Generic "Link" Text` {
		t.Errorf("embedded quotes mangled: %q", row[1])
	}
	if row[7] != ru.Message {
		t.Errorf("message = %q", row[7])
	}
}

func TestExportHTML(t *testing.T) {
	r := seededReporter(t)
	out, err := r.Export(FormatHTML)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Missing Alt Text",
		"Empty Buttons",
		"WCAG 1.1.1",
		"#hero-img",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html export missing %q", want)
		}
	}
}

func TestExportHTMLEmpty(t *testing.T) {
	r := New(nil)
	r.Process(nil)
	out, err := r.Export(FormatHTML)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No violations found") {
		t.Error("empty report missing placeholder text")
	}
}

func TestExportMarkdown(t *testing.T) {
	r := seededReporter(t)
	out, err := r.Export(FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Accessibility Audit Report") {
		t.Error("markdown export missing title")
	}
	if strings.Contains(out, "<style>") {
		t.Error("markdown export carries raw HTML style block")
	}
	if !strings.Contains(out, "Missing Alt Text") {
		t.Error("markdown export missing violation name")
	}
}
