package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/soundloom/scriptnode/pkg/store"
	"github.com/soundloom/scriptnode/pkg/store/memory"
	"github.com/soundloom/scriptnode/pkg/store/storetest"
)

func TestMemoryStore_Contract(t *testing.T) {
	storetest.RunStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Save(ctx, "shared", store.Preset{Script: "function node_render(a, m) end"})
				_, _ = s.Load(ctx, "shared")
				_, _ = s.List(ctx)
			}
		}()
	}
	wg.Wait()

	if _, err := s.Load(ctx, "shared"); err != nil {
		t.Fatalf("load after concurrent writes: %v", err)
	}
}
