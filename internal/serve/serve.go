// Package serve exposes the engine's live results over HTTP: results with
// filtering, summary, stats, exports and audit history.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kvnq-Poza/a11y-live/engine"
	"github.com/Kvnq-Poza/a11y-live/internal/store"
	"github.com/Kvnq-Poza/a11y-live/kit"
	"github.com/Kvnq-Poza/a11y-live/report"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// Server serves the audit API for one engine. Store is optional; when nil
// the history endpoints respond 404.
type Server struct {
	engine *engine.Engine
	store  *store.Store
	logger *slog.Logger
	http   *http.Server
}

// New builds a Server around eng. st may be nil.
func New(eng *engine.Engine, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: eng, store: st, logger: logger}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestContext)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/results", s.handleResults)
	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/rules", s.handleRules)
	r.Get("/api/export/{format}", s.handleExport)
	r.Get("/api/runs", s.handleRuns)
	r.Get("/api/runs/{runID}", s.handleRunViolations)
	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	s.logger.Info("serve: listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestContext carries the chi request id into the kit context so
// downstream logging can correlate requests.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResults returns the latest prioritised results, optionally
// narrowed by severity, category and search query parameters. severity
// and category accept comma-separated lists.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	results := s.engine.Reporter().Filtered(f)
	if results == nil {
		results = []*report.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Reporter().GetSummary())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GetStats())
}

type ruleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	WCAG        string `json:"wcag"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Enabled     bool   `json:"enabled"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	catalog := s.engine.Catalog()
	all := catalog.All()
	out := make([]ruleInfo, 0, len(all))
	for _, rule := range all {
		out = append(out, ruleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			WCAG:        rule.WCAG,
			Severity:    string(rule.Severity),
			Category:    string(rule.Category),
			Enabled:     catalog.IsEnabled(rule.ID),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

var exportContentTypes = map[string]string{
	report.FormatJSON:     "application/json",
	report.FormatCSV:      "text/csv",
	report.FormatHTML:     "text/html; charset=utf-8",
	report.FormatMarkdown: "text/markdown; charset=utf-8",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	out, err := s.engine.Reporter().Export(format)
	if err != nil {
		if errors.Is(err, report.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error("serve: export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", exportContentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.NotFound(w, r)
		return
	}
	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		s.logger.Error("serve: list runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunViolations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.NotFound(w, r)
		return
	}
	runID := chi.URLParam(r, "runID")
	violations, err := s.store.RunViolations(r.Context(), runID)
	if err != nil {
		s.logger.Error("serve: run violations failed", "run", runID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if violations == nil {
		violations = []*report.Result{}
	}
	writeJSON(w, http.StatusOK, violations)
}

func filterFromQuery(r *http.Request) report.Filter {
	var f report.Filter
	for _, raw := range splitList(r.URL.Query().Get("severity")) {
		f.Severities = append(f.Severities, rules.Severity(raw))
	}
	for _, raw := range splitList(r.URL.Query().Get("category")) {
		f.Categories = append(f.Categories, rules.Category(raw))
	}
	f.Search = r.URL.Query().Get("search")
	return f
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
