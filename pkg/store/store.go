// Package store persists named script presets so users can keep a library
// of node scripts outside any one project. Adapters implement Store; the
// storetest package holds the contract every adapter must pass.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a preset name cannot be found.
var ErrNotFound = errors.New("preset not found")

// Preset is one stored script with its draft copy.
type Preset struct {
	Script string `json:"script"`
	Draft  string `json:"draft,omitempty"`
}

// Store defines the interface for persisting script presets.
type Store interface {
	// Save persists the preset under name, overwriting any previous one.
	Save(ctx context.Context, name string, p Preset) error

	// Load retrieves the preset for name.
	// Returns ErrNotFound if it does not exist.
	Load(ctx context.Context, name string) (Preset, error)

	// Delete removes the preset for name. Deleting a missing preset is
	// not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored preset names.
	List(ctx context.Context) ([]string, error)
}
