package engine

import (
	"sync"

	"github.com/Kvnq-Poza/a11y-live/internal/config"
	"github.com/Kvnq-Poza/a11y-live/report"
)

// EventType identifies a lifecycle notification.
type EventType string

const (
	EventStarted       EventType = "started"
	EventStopped       EventType = "stopped"
	EventConfigUpdated EventType = "configUpdated"
	EventResults       EventType = "results"
)

// Event is one lifecycle notification with its detail payload.
type Event struct {
	Type   EventType
	Detail any
}

// StartedDetail accompanies EventStarted.
type StartedDetail struct {
	RulesEnabled int
	Target       string
	Reopened     bool
}

// StoppedDetail accompanies EventStopped.
type StoppedDetail struct {
	Stats Stats
}

// ConfigUpdatedDetail accompanies EventConfigUpdated.
type ConfigUpdatedDetail struct {
	Old *config.Config
	New *config.Config
}

// ResultsDetail accompanies EventResults after every completed analysis
// cycle.
type ResultsDetail struct {
	Results []*report.Result
	Summary report.Summary
}

// Listener receives engine events. Listeners run synchronously on the
// emitting goroutine and must not block.
type Listener func(Event)

type listenerRegistry struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]Listener
}

func (r *listenerRegistry) add(fn Listener) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fns == nil {
		r.fns = make(map[int]Listener)
	}
	id := r.nextID
	r.nextID++
	r.fns[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.fns, id)
		r.mu.Unlock()
	}
}

func (r *listenerRegistry) emit(ev Event) {
	r.mu.Lock()
	fns := make([]Listener, 0, len(r.fns))
	for _, fn := range r.fns {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
