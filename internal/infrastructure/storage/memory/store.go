// Package memory is an in-process storage backend used by tests and the
// STORAGE=memory mode. Rows are kept JSON-encoded, so callers always get copies.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
)

type txKey struct{}

// Store holds every table. A transaction holds the store mutex until it ends,
// which serializes writers the way the per-date advisory locks do in PostgreSQL.
type Store struct {
	mu     sync.Mutex
	tables map[string]map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tables: make(map[string]map[string][]byte)}
}

// RunInTransaction runs fn with the store locked. On error every table is
// restored to its state before fn started. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.tables = saved
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*Store)
	return ok
}

func (s *Store) snapshot() map[string]map[string][]byte {
	out := make(map[string]map[string][]byte, len(s.tables))
	for name, rows := range s.tables {
		out[name] = maps.Clone(rows)
	}
	return out
}

// access runs fn under the store lock unless ctx already holds it.
func (s *Store) access(ctx context.Context, fn func(tables map[string]map[string][]byte) error) error {
	if inTx(ctx) {
		return fn(s.tables)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tables)
}

func table(tables map[string]map[string][]byte, name string) map[string][]byte {
	rows, ok := tables[name]
	if !ok {
		rows = make(map[string][]byte)
		tables[name] = rows
	}
	return rows
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return data, nil
}

func decode[T any](data []byte, dest T) (T, error) {
	if err := json.Unmarshal(data, dest); err != nil {
		return dest, fmt.Errorf("decode row: %w", err)
	}
	return dest, nil
}
