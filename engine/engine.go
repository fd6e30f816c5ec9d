// Package engine is the façade over the analysis pipeline: it owns the
// lifecycle, wires the mutation scheduler to the rule engine and the
// reporter, maintains the fingerprint cache and statistics, and notifies
// listeners. One Engine observes one document source.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/internal/config"
	"github.com/Kvnq-Poza/a11y-live/internal/fingerprint"
	"github.com/Kvnq-Poza/a11y-live/internal/runner"
	"github.com/Kvnq-Poza/a11y-live/internal/schedule"
	"github.com/Kvnq-Poza/a11y-live/mutation"
	"github.com/Kvnq-Poza/a11y-live/report"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// ErrCapability indicates the source cannot satisfy a capability the
// current configuration requires. Start fails fast with it.
var ErrCapability = errors.New("engine: missing host capability")

const snapshotTimeout = 30 * time.Second

// Engine orchestrates source → scheduler → rule engine → reporter.
type Engine struct {
	logger    *slog.Logger
	source    Source
	catalog   *rules.Catalog
	runner    *runner.Runner
	cache     *fingerprint.Cache
	reporter  *report.Reporter
	listeners listenerRegistry

	// analyzeMu serialises analysis passes; it is the cache's single-writer
	// guarantee.
	analyzeMu sync.Mutex

	mu          sync.Mutex
	cfg         *config.Config
	sched       *schedule.Scheduler
	running     bool
	watchCancel context.CancelFunc
	wg          sync.WaitGroup

	analysisCount     int64
	totalAnalysisTime time.Duration
	violationsFound   int64
	elementsProcessed int64
	cacheSize         int
}

// New builds an Engine over a source. A nil cfg gets defaults; a nil
// logger falls back to slog.Default.
func New(source Source, cfg *config.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	} else {
		cfg.ApplyDefaults()
	}
	if logger == nil {
		logger = slog.Default()
	}

	catalog := rules.NewCatalog()
	if cfg.Rules != nil {
		catalog.UpdateEnabled(cfg.Rules)
	}

	return &Engine{
		logger:   logger,
		source:   source,
		catalog:  catalog,
		runner:   runner.New(catalog, logger),
		cache:    fingerprint.New(),
		reporter: report.New(logger),
		cfg:      cfg,
	}
}

// Catalog exposes the rule catalog for custom-rule registration.
func (e *Engine) Catalog() *rules.Catalog { return e.catalog }

// Reporter exposes the result processor for read-side consumers.
func (e *Engine) Reporter() *report.Reporter { return e.reporter }

// Subscribe registers a listener for lifecycle and results events. The
// returned function unregisters it.
func (e *Engine) Subscribe(fn Listener) (cancel func()) {
	return e.listeners.add(fn)
}

// Start probes capabilities, binds mutation observation when realtime is
// enabled, runs one full-document analysis and transitions to running.
// Calling Start on a running engine is a no-op that re-emits the started
// event so UI consumers can reopen.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		cfg := e.cfg
		e.mu.Unlock()
		e.logger.Info("engine: start while running, reopening")
		e.listeners.emit(Event{Type: EventStarted, Detail: StartedDetail{
			RulesEnabled: len(e.catalog.Enabled()),
			Target:       cfg.Target,
			Reopened:     true,
		}})
		return nil
	}
	cfg := e.cfg
	e.mu.Unlock()

	if err := e.source.Probe(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCapability, err)
	}
	realtime := cfg.RealtimeEnabled()
	var muts <-chan mutation.Batch
	if realtime {
		if muts = e.source.Mutations(); muts == nil {
			return fmt.Errorf("%w: source cannot observe mutations", ErrCapability)
		}
	}

	wctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.running = true
	e.watchCancel = cancel
	e.sched = schedule.New(schedule.Config{
		Window:   cfg.Debounce(),
		MaxBatch: cfg.MaxElements,
	}, e.flush, e.logger)
	e.mu.Unlock()

	if realtime {
		e.wg.Add(1)
		go e.watch(wctx, muts)
	}

	if _, err := e.AnalyzeDocument(ctx); err != nil {
		e.logger.Warn("engine: initial analysis failed", "error", err)
	}

	e.logger.Info("engine: started",
		"rules", len(e.catalog.Enabled()),
		"target", cfg.Target,
		"realtime", realtime)
	e.listeners.emit(Event{Type: EventStarted, Detail: StartedDetail{
		RulesEnabled: len(e.catalog.Enabled()),
		Target:       cfg.Target,
	}})
	return nil
}

// Stop disconnects observation, drops queued work, clears the cache and
// emits the final statistics. Stopping a stopped engine only warns.
// In-flight analysis is not aborted; its results are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		e.logger.Warn("engine: stop while not running")
		return
	}
	e.running = false
	cancel := e.watchCancel
	e.watchCancel = nil
	sched := e.sched
	e.sched = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sched != nil {
		sched.Stop()
	}
	e.wg.Wait()

	e.analyzeMu.Lock()
	e.cache.Clear()
	e.analyzeMu.Unlock()
	e.mu.Lock()
	e.cacheSize = 0
	e.mu.Unlock()

	st := e.GetStats()
	e.logger.Info("engine: stopped",
		"analyses", st.AnalysisCount,
		"violations", st.ViolationsFound,
		"elements", st.ElementsProcessed)
	e.listeners.emit(Event{Type: EventStopped, Detail: StoppedDetail{Stats: st}})
}

// Analyze runs the pipeline over the given elements (each expanded to its
// descendants, identity-deduplicated) and returns the processed results.
// Empty input yields an empty set.
func (e *Engine) Analyze(ctx context.Context, elements []*dom.Element) []*report.Result {
	return e.analyzePass(ctx, elements, false)
}

// AnalyzeDocument snapshots the source and analyses the configured target
// subtree.
func (e *Engine) AnalyzeDocument(ctx context.Context) ([]*report.Result, error) {
	doc, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: snapshot: %w", err)
	}
	root := e.analysisRoot(doc)
	if root == nil {
		return nil, fmt.Errorf("engine: empty document")
	}
	return e.analyzePass(ctx, []*dom.Element{root}, false), nil
}

// UpdateConfig merges the set fields of next into the current
// configuration. A changed rule set clears the cache and, while running,
// re-analyses the document. The observer binding is never restarted.
func (e *Engine) UpdateConfig(ctx context.Context, next *config.Config) {
	if next == nil {
		return
	}
	e.mu.Lock()
	old := e.cfg
	merged := *old
	if next.Mode != "" {
		merged.Mode = next.Mode
	}
	if next.Realtime != nil {
		merged.Realtime = next.Realtime
	}
	if next.Target != "" {
		merged.Target = next.Target
	}
	if next.DebounceMS > 0 {
		merged.DebounceMS = next.DebounceMS
	}
	if next.MaxElements > 0 {
		merged.MaxElements = next.MaxElements
	}
	if next.Rules != nil {
		merged.Rules = next.Rules
	}
	e.cfg = &merged
	running := e.running
	e.mu.Unlock()

	rulesChanged := false
	if next.Rules != nil {
		rulesChanged = e.catalog.UpdateEnabled(next.Rules)
	}
	if rulesChanged {
		e.analyzeMu.Lock()
		e.cache.Clear()
		e.analyzeMu.Unlock()
		e.mu.Lock()
		e.cacheSize = 0
		e.mu.Unlock()
		e.logger.Info("engine: rule set changed, cache cleared",
			"enabled", len(e.catalog.Enabled()))
		if running {
			if _, err := e.AnalyzeDocument(ctx); err != nil {
				e.logger.Warn("engine: re-analysis after config update failed", "error", err)
			}
		}
	}
	e.listeners.emit(Event{Type: EventConfigUpdated, Detail: ConfigUpdatedDetail{
		Old: old,
		New: &merged,
	}})
}

// GetStats returns a snapshot of the engine's counters.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	st := Stats{
		AnalysisCount:     e.analysisCount,
		TotalAnalysisTime: e.totalAnalysisTime,
		ViolationsFound:   e.violationsFound,
		ElementsProcessed: e.elementsProcessed,
		IsRunning:         e.running,
		CacheSize:         e.cacheSize,
	}
	e.mu.Unlock()
	if st.AnalysisCount > 0 {
		st.AverageAnalysisTime = st.TotalAnalysisTime / time.Duration(st.AnalysisCount)
	}
	return st
}

func (e *Engine) config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *Engine) isRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// analysisRoot resolves the configured target selector against a fresh
// snapshot, falling back to body.
func (e *Engine) analysisRoot(doc *dom.Document) *dom.Element {
	target := e.config().Target
	if target != "" && target != "body" {
		if els, err := doc.QueryAll(target); err == nil && len(els) > 0 {
			return els[0]
		}
		e.logger.Warn("engine: target not found, using body", "target", target)
	}
	if b := doc.Body(); b != nil {
		return b
	}
	return doc.Root()
}

// watch pumps mutation batches into the scheduler until the stream closes
// or the engine stops.
func (e *Engine) watch(ctx context.Context, muts <-chan mutation.Batch) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-muts:
			if !ok {
				e.logger.Warn("engine: mutation stream closed")
				return
			}
			paths := affectedPaths(b)
			e.mu.Lock()
			sched := e.sched
			e.mu.Unlock()
			if sched != nil && len(paths) > 0 {
				sched.Enqueue(paths)
			}
		}
	}
}

// affectedPaths extracts the mutation targets plus every added subtree
// root. Removed nodes are not tracked; stale results referencing them are
// accepted and expected to be re-checked by consumers.
func affectedPaths(b mutation.Batch) []string {
	var paths []string
	for _, rec := range b.Records {
		if rec.Target != "" {
			paths = append(paths, rec.Target)
		}
		if rec.Op == mutation.OpChildList {
			paths = append(paths, rec.Added...)
		}
	}
	return paths
}

// flush is the scheduler's callback: it re-snapshots the document,
// resolves the batched paths against the fresh parse and runs one
// analysis pass.
func (e *Engine) flush(paths []string) {
	e.mu.Lock()
	sched := e.sched
	running := e.running
	e.mu.Unlock()
	if sched != nil {
		defer sched.Done()
	}
	if !running {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	doc, err := e.source.Snapshot(ctx)
	if err != nil {
		e.logger.Warn("engine: snapshot failed, dropping batch",
			"paths", len(paths), "error", err)
		return
	}
	els := make([]*dom.Element, 0, len(paths))
	for _, p := range paths {
		if el := doc.Resolve(p); el != nil {
			els = append(els, el)
		}
	}
	e.analyzePass(ctx, els, true)
}

// analyzePass is the single analysis pipeline: normalise, consult the
// cache, run rules on misses, update cache and stats, process through the
// reporter. fromFlush passes discard their results if the engine stopped
// while they ran.
func (e *Engine) analyzePass(ctx context.Context, elements []*dom.Element, fromFlush bool) []*report.Result {
	e.analyzeMu.Lock()
	defer e.analyzeMu.Unlock()

	els := normalize(elements)
	if len(els) == 0 {
		return []*report.Result{}
	}
	// The scheduler caps queued paths, but one path can expand to a large
	// subtree. The element cap holds after expansion: a flush analyzes at
	// most MaxElements elements, mutation targets before deep descendants.
	if max := e.config().MaxElements; fromFlush && max > 0 && len(els) > max {
		e.logger.Warn("engine: element cap exceeded, truncating flush",
			"elements", len(els), "cap", max)
		els = els[:max]
	}

	start := time.Now()
	var raw []rules.Violation
	type cacheUpdate struct {
		key   string
		entry fingerprint.Entry
	}
	var updates []cacheUpdate
	hits := 0

	for _, el := range els {
		key := fingerprint.Key(el)
		if entry, ok := e.cache.Get(key); ok {
			hits++
			for _, f := range entry.Findings {
				rule := e.catalog.Get(f.RuleID)
				if rule == nil {
					continue
				}
				raw = append(raw, rules.Violation{
					Rule:     rule,
					Element:  el,
					Selector: f.Selector,
					Impact:   f.Impact,
					At:       start,
				})
			}
			continue
		}

		vs := e.runner.Execute(ctx, []*dom.Element{el})
		findings := make([]fingerprint.Finding, 0, len(vs))
		for _, v := range vs {
			findings = append(findings, fingerprint.Finding{
				RuleID:   v.Rule.ID,
				Selector: v.Selector,
				Impact:   v.Impact,
			})
		}
		updates = append(updates, cacheUpdate{key, fingerprint.Entry{
			Findings: findings,
			Passed:   len(findings) == 0,
		}})
		raw = append(raw, vs...)
	}
	elapsed := time.Since(start)

	if fromFlush && !e.isRunning() {
		e.logger.Debug("engine: discarding results, engine stopped mid-flush")
		return nil
	}

	for _, u := range updates {
		e.cache.Set(u.key, u.entry)
	}

	e.mu.Lock()
	e.analysisCount++
	e.totalAnalysisTime += elapsed
	e.violationsFound += int64(len(raw))
	e.elementsProcessed += int64(len(els))
	e.cacheSize = e.cache.Size()
	e.mu.Unlock()

	processed := e.reporter.Process(raw)
	e.logger.Debug("engine: analysis pass",
		"elements", len(els),
		"cacheHits", hits,
		"violations", len(raw),
		"elapsed", elapsed)
	e.listeners.emit(Event{Type: EventResults, Detail: ResultsDetail{
		Results: processed,
		Summary: e.reporter.GetSummary(),
	}})
	return processed
}

// normalize flattens the input to the elements plus all their descendants,
// deduplicated by node identity, preserving first-seen order.
func normalize(elements []*dom.Element) []*dom.Element {
	seen := make(map[*html.Node]struct{}, len(elements))
	var out []*dom.Element
	add := func(el *dom.Element) {
		if el == nil {
			return
		}
		if _, dup := seen[el.Node()]; dup {
			return
		}
		seen[el.Node()] = struct{}{}
		out = append(out, el)
	}
	for _, el := range elements {
		add(el)
		if el == nil {
			continue
		}
		for _, d := range el.Descendants() {
			add(d)
		}
	}
	return out
}
