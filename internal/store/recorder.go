package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kvnq-Poza/a11y-live/engine"
)

// Listener returns an engine listener that persists every completed
// analysis cycle. Persistence failures are logged, never propagated into
// the analysis path.
func (s *Store) Listener(page string, logger *slog.Logger) engine.Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev engine.Event) {
		if ev.Type != engine.EventResults {
			return
		}
		d, ok := ev.Detail.(engine.ResultsDetail)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := s.InsertRun(ctx, page, d.Summary.LastUpdate, 0, d.Summary, d.Results)
		if err != nil {
			logger.Warn("store: persist run failed", "error", err)
			return
		}
		logger.Debug("store: run persisted", "run", id, "violations", d.Summary.Total)
	}
}
