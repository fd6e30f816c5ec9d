package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/mutation"
)

// StaticSource serves one fixed document: snapshots are fresh parses of
// the same markup and there is no mutation stream. It backs the
// non-realtime audit path (local files, plain HTTP fetches, tests).
type StaticSource struct {
	markup string
}

// NewStaticSource wraps raw HTML markup.
func NewStaticSource(markup string) *StaticSource {
	return &StaticSource{markup: markup}
}

// NewStaticSourceFromFile reads markup from a local file.
func NewStaticSourceFromFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: read %s: %w", path, err)
	}
	return NewStaticSource(string(data)), nil
}

// NewStaticSourceFromURL fetches markup over plain HTTP, without a
// browser. Pages that need script execution belong on the live path.
func NewStaticSourceFromURL(ctx context.Context, url string) (*StaticSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: build request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine: fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("engine: read %s: %w", url, err)
	}
	return NewStaticSource(string(body)), nil
}

// Snapshot parses the markup afresh so handles from earlier snapshots
// never alias the new tree.
func (s *StaticSource) Snapshot(ctx context.Context) (*dom.Document, error) {
	return dom.ParseString(s.markup)
}

// Mutations returns nil: a static document never changes.
func (s *StaticSource) Mutations() <-chan mutation.Batch { return nil }

// Probe verifies the markup parses.
func (s *StaticSource) Probe(ctx context.Context) error {
	if _, err := dom.ParseString(s.markup); err != nil {
		return fmt.Errorf("engine: static source: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *StaticSource) Close() error { return nil }
