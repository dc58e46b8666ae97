// Package storetest holds the reusable contract suite every store.Store
// adapter must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/soundloom/scriptnode/pkg/store"
)

// RunStoreContract verifies an adapter complies with store.Store semantics.
func RunStoreContract(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	gain := store.Preset{Script: "function node_render(a, m) end", Draft: "-- wip"}
	mute := store.Preset{Script: "function node_render(a, m) a:clear() end"}

	t.Run("SaveAndLoad", func(t *testing.T) {
		if err := s.Save(ctx, "gain", gain); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Load(ctx, "gain")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got != gain {
			t.Errorf("round-trip mismatch: got %+v, want %+v", got, gain)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.Save(ctx, "gain", mute); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Load(ctx, "gain")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got != mute {
			t.Errorf("overwrite not visible: got %+v", got)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := s.Load(ctx, "no-such-preset")
		if err != store.ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := s.Save(ctx, "mute", mute); err != nil {
			t.Fatalf("save: %v", err)
		}
		names, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		lookup := make(map[string]bool)
		for _, n := range names {
			lookup[n] = true
		}
		for _, want := range []string{"gain", "mute"} {
			if !lookup[want] {
				t.Errorf("preset %q missing from list %v", want, names)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Delete(ctx, "gain"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Load(ctx, "gain"); err != store.ErrNotFound {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		// Deleting a missing preset is not an error.
		if err := s.Delete(ctx, "gain"); err != nil {
			t.Errorf("delete missing: %v", err)
		}
	})
}
