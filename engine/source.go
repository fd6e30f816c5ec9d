package engine

import (
	"context"

	"github.com/Kvnq-Poza/a11y-live/dom"
	"github.com/Kvnq-Poza/a11y-live/mutation"
)

// Source abstracts where documents and mutation notifications come from: a
// live browser tab or a static parsed document. Snapshots are fresh parses;
// element handles taken from one snapshot must not be used against another.
type Source interface {
	// Snapshot parses the current document state, including geometry when
	// the source can provide it.
	Snapshot(ctx context.Context) (*dom.Document, error)
	// Mutations returns the notification stream, or nil when the source
	// cannot observe changes.
	Mutations() <-chan mutation.Batch
	// Probe verifies the source's host capabilities before the engine
	// starts.
	Probe(ctx context.Context) error
	// Close releases the source's resources.
	Close() error
}
