// Package redis provides a Redis-backed preset store so a script library
// can be shared across hosts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/soundloom/scriptnode/pkg/store"
)

const defaultPrefix = "scriptnode:preset:"

// Store implements store.Store on a Redis client.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithPrefix overrides the key prefix (default "scriptnode:preset:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL sets an expiration on saved presets. Zero (the default) keeps
// them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewFromClient creates a store on an existing Redis client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string { return s.prefix + name }

// Save persists the preset as a JSON value.
func (s *Store) Save(ctx context.Context, name string, p store.Preset) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := s.client.Set(ctx, s.key(name), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

// Load retrieves and decodes the preset.
func (s *Store) Load(ctx context.Context, name string) (store.Preset, error) {
	payload, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, backend.Nil) {
		return store.Preset{}, store.ErrNotFound
	}
	if err != nil {
		return store.Preset{}, fmt.Errorf("redis load: %w", err)
	}
	var p store.Preset
	if err := json.Unmarshal(payload, &p); err != nil {
		return store.Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	return p, nil
}

// Delete removes the preset.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// List scans for stored preset names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return names, nil
}
