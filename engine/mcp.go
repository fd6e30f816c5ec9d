package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/kit"
	"github.com/Kvnq-Poza/a11y-live/report"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// RegisterMCP registers the engine's tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerAuditTool(srv)
	e.registerResultsTool(srv)
	e.registerExportTool(srv)
}

// wrap composes the cross-cutting middleware every tool endpoint runs
// under.
func (e *Engine) wrap(name string, endpoint kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.Logging(e.logger, name))(endpoint)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- audit ---

type auditReq struct {
	URL  string `json:"url"`
	File string `json:"file"`
	HTML string `json:"html"`
}

func (e *Engine) registerAuditTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "a11y_audit_page",
		Description: "Run an accessibility audit over a page given as a URL, a local file path, or inline HTML. Returns prioritised violations and a summary.",
		InputSchema: inputSchema(map[string]any{
			"url":  map[string]any{"type": "string", "description": "Page URL to fetch over HTTP"},
			"file": map[string]any{"type": "string", "description": "Local HTML file path"},
			"html": map[string]any{"type": "string", "description": "Inline HTML markup"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*auditReq)
		var (
			src *StaticSource
			err error
		)
		switch {
		case r.URL != "":
			src, err = NewStaticSourceFromURL(ctx, r.URL)
		case r.File != "":
			src, err = NewStaticSourceFromFile(r.File)
		case r.HTML != "":
			src = NewStaticSource(r.HTML)
		default:
			return nil, fmt.Errorf("one of url, file or html is required")
		}
		if err != nil {
			return nil, err
		}
		doc, err := src.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		results := e.Analyze(ctx, []*dom.Element{doc.Body()})
		return map[string]any{
			"results": results,
			"summary": e.reporter.GetSummary(),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r auditReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, e.wrap(tool.Name, endpoint), decode)
}

// --- results ---

type resultsReq struct {
	Severities []string `json:"severities"`
	Categories []string `json:"categories"`
	Search     string   `json:"search"`
}

func (e *Engine) registerResultsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "a11y_get_results",
		Description: "Return the latest audit results, optionally filtered by severity, category, or a search phrase.",
		InputSchema: inputSchema(map[string]any{
			"severities": map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": []string{"error", "warning", "info"}}},
			"categories": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"search":     map[string]any{"type": "string", "description": "Case-insensitive match against name, message and description"},
		}, nil),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*resultsReq)
		f := report.Filter{Search: r.Search}
		for _, s := range r.Severities {
			f.Severities = append(f.Severities, rules.Severity(s))
		}
		for _, c := range r.Categories {
			f.Categories = append(f.Categories, rules.Category(c))
		}
		return map[string]any{
			"results": e.reporter.Filtered(f),
			"summary": e.reporter.GetSummary(),
			"stats":   e.GetStats(),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r resultsReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, e.wrap(tool.Name, endpoint), decode)
}

// --- export ---

type exportReq struct {
	Format string `json:"format"`
}

func (e *Engine) registerExportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "a11y_export",
		Description: "Export the latest audit results as json, csv, html or markdown.",
		InputSchema: inputSchema(map[string]any{
			"format": map[string]any{"type": "string", "enum": []string{"json", "csv", "html", "markdown"}},
		}, []string{"format"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*exportReq)
		out, err := e.reporter.Export(r.Format)
		if err != nil {
			return nil, err
		}
		return map[string]any{"format": r.Format, "content": out}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r exportReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, e.wrap(tool.Name, endpoint), decode)
}
