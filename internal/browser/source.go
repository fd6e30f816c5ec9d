package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/idgen"
	"github.com/Kvnq-Poza/a11y-live/mutation"
)

//go:embed observer.js
var observerJS string

//go:embed snapshot.js
var snapshotJS string

const bindingName = "__a11ylive_binding"

// Source is a live page: it navigates a stealth tab to a URL, injects a
// MutationObserver and serves snapshots with rendered geometry. It
// implements the engine's source contract. When the Manager recycles
// Chrome the Source drops its dead tab and reopens on the new browser.
type Source struct {
	mgr     *Manager
	url     string
	logger  *slog.Logger
	batchID func() string
	muts    chan mutation.Batch

	mu     sync.RWMutex
	page   *rod.Page
	cancel context.CancelFunc
}

// Open creates a tab on mgr, navigates it to pageURL and wires the
// mutation observer. The source is ready for Snapshot and Mutations.
func Open(ctx context.Context, mgr *Manager, pageURL string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{
		mgr:     mgr,
		url:     pageURL,
		logger:  logger,
		batchID: idgen.Prefixed("bat_", idgen.Default),
		muts:    make(chan mutation.Batch, 256),
	}
	if err := s.openTab(ctx); err != nil {
		return nil, err
	}

	mgr.SetRecycleCallback(&RecycleCallback{
		BeforeRecycle: s.dropTab,
		AfterRecycle: func(*rod.Browser) {
			if err := s.reopen(); err != nil {
				s.logger.Error("browser: reopen after recycle failed",
					"url", s.url, "error", err)
			}
		},
	})
	return s, nil
}

// openTab creates a stealth tab, navigates it, installs the observer and
// swaps it in as the current page.
func (s *Source) openTab(ctx context.Context) error {
	b := s.mgr.Browser()
	if b == nil {
		return fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, s.mgr.cfg.NavigateTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(s.url); err != nil {
		page.Close()
		return fmt.Errorf("browser: navigate %s: %w", s.url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		s.logger.Warn("browser: wait load timeout", "url", s.url, "error", err)
	}

	sctx, scancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.page = page
	s.cancel = scancel
	s.mu.Unlock()

	if err := s.inject(page, sctx); err != nil {
		scancel()
		page.Close()
		return err
	}
	return nil
}

// dropTab abandons the current tab without closing it: the browser that
// owns it is about to die.
func (s *Source) dropTab() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.page = nil
	s.mu.Unlock()
}

// reopen recreates the tab on the recycled browser. Until it succeeds,
// Snapshot and Probe fail and the engine drops flushes.
func (s *Source) reopen() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.mgr.cfg.NavigateTimeout)
	defer cancel()
	if err := s.openTab(ctx); err != nil {
		return err
	}
	s.logger.Info("browser: tab reopened after recycle", "url", s.url)
	return nil
}

func (s *Source) currentPage() *rod.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// inject sets up the JS→Go binding, hands the attribute filter to the
// page and installs the MutationObserver.
func (s *Source) inject(page *rod.Page, ctx context.Context) error {
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(page); err != nil {
		s.logger.Warn("browser: add binding failed", "error", err)
	}
	go s.listenBinding(page, ctx)

	attrs, _ := json.Marshal(mutation.WatchedAttributes())
	if _, err := page.Eval(fmt.Sprintf("() => { window.__a11ylive_attrs = %s; }", attrs)); err != nil {
		s.logger.Warn("browser: set attribute filter failed", "error", err)
	}
	if _, err := page.Eval(observerJS); err != nil {
		return fmt.Errorf("browser: inject observer: %w", err)
	}
	s.logger.Debug("browser: observer injected", "url", s.url)
	return nil
}

// listenBinding receives MutationObserver callbacks via
// Runtime.bindingCalled and converts them to batches. One listener runs
// per tab; dropTab's cancel ends it.
func (s *Source) listenBinding(page *rod.Page, ctx context.Context) {
	page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		batch, err := decodeBatch(e.Payload, s.batchID)
		if err != nil {
			s.logger.Warn("browser: parse observer payload", "error", err)
			return
		}
		if len(batch.Records) == 0 {
			return
		}
		select {
		case s.muts <- batch:
		default:
			s.logger.Warn("browser: mutation channel full, dropping batch",
				"records", len(batch.Records))
		}
	})()
}

// decodeBatch parses one observer callback payload into a batch. Records
// with empty targets are dropped; attribute records outside the watched
// set are filtered in case the page bypassed the attributeFilter.
func decodeBatch(payload string, nextID func() string) (mutation.Batch, error) {
	var raw []struct {
		Op        string   `json:"op"`
		Target    string   `json:"target"`
		Added     []string `json:"added"`
		Attribute string   `json:"attribute"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return mutation.Batch{}, fmt.Errorf("browser: decode records: %w", err)
	}

	records := make([]mutation.Record, 0, len(raw))
	for _, r := range raw {
		if !strings.HasPrefix(r.Target, "/html") {
			continue
		}
		if r.Op == string(mutation.OpAttr) && !mutation.WatchedAttribute(r.Attribute) {
			continue
		}
		records = append(records, mutation.Record{
			Op:        mutation.Op(r.Op),
			Target:    r.Target,
			Added:     r.Added,
			Attribute: r.Attribute,
		})
	}
	return mutation.Batch{
		ID:      nextID(),
		Records: records,
		At:      time.Now(),
	}, nil
}

// Snapshot evaluates one script capturing HTML, per-element geometry and
// the viewport atomically, then parses it into a document.
func (s *Source) Snapshot(ctx context.Context) (*dom.Document, error) {
	page := s.currentPage()
	if page == nil {
		return nil, fmt.Errorf("browser: tab not open")
	}
	res, err := page.Context(ctx).Eval(snapshotJS)
	if err != nil {
		return nil, fmt.Errorf("browser: snapshot eval: %w", err)
	}

	var snap struct {
		HTML     string                  `json:"html"`
		Geometry map[string]dom.Geometry `json:"geometry"`
		Viewport dom.Rect                `json:"viewport"`
	}
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), &snap); err != nil {
		return nil, fmt.Errorf("browser: decode snapshot: %w", err)
	}

	doc, err := dom.ParseString(snap.HTML)
	if err != nil {
		return nil, fmt.Errorf("browser: parse snapshot: %w", err)
	}
	doc.SetGeometry(snap.Geometry, snap.Viewport)
	return doc, nil
}

// Mutations returns the observer's batch stream.
func (s *Source) Mutations() <-chan mutation.Batch { return s.muts }

// Probe verifies the tab is alive and scripts can run.
func (s *Source) Probe(ctx context.Context) error {
	page := s.currentPage()
	if page == nil {
		return fmt.Errorf("browser: no page")
	}
	if _, err := page.Context(ctx).Eval(`() => document.readyState`); err != nil {
		return fmt.Errorf("browser: probe: %w", err)
	}
	return nil
}

// Close stops observation and closes the tab. The browser itself stays
// up; it belongs to the Manager.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	page := s.page
	s.page = nil
	s.mu.Unlock()
	if page != nil {
		return page.Close()
	}
	return nil
}
