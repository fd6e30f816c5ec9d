// Package schedule implements the debounce/batch/throttle state machine
// that turns an unbounded stream of mutation notifications into bounded,
// deduplicated analysis batches.
package schedule

import (
	"log/slog"
	"sync"
	"time"
)

// Config controls batching behaviour.
type Config struct {
	// Window is the trailing-edge debounce delay. Default: 250ms.
	Window time.Duration
	// MinInterval is the minimum gap between two flushes. A timer that
	// fires while a flush is in flight is rescheduled to respect it.
	// Default: Window.
	MinInterval time.Duration
	// MaxBatch caps the number of paths handed to one flush. When the
	// deduplicated queue exceeds it, the oldest entries are dropped.
	// Default: 500.
	MaxBatch int
}

func (c *Config) defaults() {
	if c.Window <= 0 {
		c.Window = 250 * time.Millisecond
	}
	if c.MinInterval <= 0 {
		c.MinInterval = c.Window
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = 500
	}
}

// FlushFunc receives one deduplicated, size-capped batch of element paths.
// The scheduler does not call it again until Done is called.
type FlushFunc func(paths []string)

// Scheduler accumulates element paths from mutation notifications and
// emits them in batches: trailing-edge debounce on Enqueue, a re-entrancy
// guard while a flush is in flight, and a minimum interval between
// flushes. Enqueue, Done and Stop are safe for concurrent use.
type Scheduler struct {
	cfg     Config
	flushFn FlushFunc
	logger  *slog.Logger

	mu        sync.Mutex
	queue     []string
	seen      map[string]struct{}
	timer     *time.Timer
	inFlight  bool
	stopped   bool
	lastFlush time.Time
	now       func() time.Time
}

// New returns a Scheduler that calls flushFn with each batch. flushFn
// runs on the timer goroutine; implementations that analyze should hand
// off to their own worker and call Done when finished.
func New(cfg Config, flushFn FlushFunc, logger *slog.Logger) *Scheduler {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:     cfg,
		flushFn: flushFn,
		logger:  logger,
		seen:    make(map[string]struct{}),
		now:     time.Now,
	}
}

// Enqueue adds the affected element paths to the pending queue and
// restarts the debounce window. Duplicates of already-queued paths are
// dropped; the first occurrence keeps its queue position.
func (s *Scheduler) Enqueue(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, dup := s.seen[p]; dup {
			continue
		}
		s.seen[p] = struct{}{}
		s.queue = append(s.queue, p)
	}
	if len(s.queue) == 0 {
		return
	}
	s.armLocked(s.cfg.Window)
}

// Done marks the in-flight flush as complete. If paths queued up during
// the flush, the debounce window is re-armed so they get their own cycle.
func (s *Scheduler) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.stopped || len(s.queue) == 0 {
		return
	}
	s.armLocked(s.cfg.Window)
}

// Stop cancels any pending timer and drops the queue. An in-flight flush
// is not aborted; its caller is expected to discard the result. The
// scheduler accepts no further work after Stop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.queue = nil
	s.seen = make(map[string]struct{})
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Pending reports the number of queued paths.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) armLocked(d time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		// Previous flush still running: never overlap, try again later.
		s.armLocked(s.cfg.MinInterval)
		s.mu.Unlock()
		return
	}
	if gap := s.now().Sub(s.lastFlush); gap < s.cfg.MinInterval {
		s.armLocked(s.cfg.MinInterval - gap)
		s.mu.Unlock()
		return
	}

	batch := s.queue
	s.queue = nil
	s.seen = make(map[string]struct{})
	if len(batch) > s.cfg.MaxBatch {
		dropped := len(batch) - s.cfg.MaxBatch
		batch = batch[dropped:]
		s.logger.Warn("schedule: batch cap exceeded, dropping oldest entries",
			"dropped", dropped, "cap", s.cfg.MaxBatch)
	}
	s.inFlight = true
	s.lastFlush = s.now()
	s.mu.Unlock()

	s.flushFn(batch)
}
