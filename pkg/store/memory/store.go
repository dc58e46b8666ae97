// Package memory provides an in-memory preset store, mainly for tests and
// single-process hosts.
package memory

import (
	"context"
	"sync"

	"github.com/soundloom/scriptnode/pkg/store"
)

// Store implements store.Store in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]store.Preset
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]store.Preset),
	}
}

// Save persists the preset in memory.
func (s *Store) Save(ctx context.Context, name string, p store.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = p
	return nil
}

// Load retrieves the preset from memory.
func (s *Store) Load(ctx context.Context, name string) (store.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[name]
	if !ok {
		return store.Preset{}, store.ErrNotFound
	}
	return p, nil
}

// Delete removes the preset.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored preset names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	return names, nil
}
