package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"expensetracker/internal/kv"
)

var ErrClosed = errors.New("memory store closed")

var _ kv.Store = (*Store)(nil)

// Store keeps entries in a map. It survives nothing; use it for tests and
// throwaway sessions.
type Store struct {
	mu     sync.Mutex
	items  map[string]string
	closed bool
}

func New() *Store {
	return &Store{items: map[string]string{}}
}

// NewWithEntries seeds the store, e.g. with a payload written by a previous run.
func NewWithEntries(entries map[string]string) *Store {
	s := New()
	maps.Copy(s.items, entries)
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) Put(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	maps.Copy(s.items, entries)
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	clear(s.items)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of keys currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
