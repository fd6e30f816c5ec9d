// Package store persists audit history: one row per completed analysis
// cycle plus its violations, for trend inspection across runs.
package store

import (
	"database/sql"
	"fmt"

	"github.com/Kvnq-Poza/a11y-live/internal/dbopen"
)

// Store is the audit-history database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the history database at path, applying pragmas
// and schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
