package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

func TestManager_Warm(t *testing.T) {
	m := newTestManager(t, nil)

	loader := types.LoaderFunc(func(ctx context.Context, key string) (interface{}, error) {
		return "value-" + key, nil
	})

	loaded := m.Warm(context.Background(), []WarmingStrategy{
		{Keys: []string{"a", "b", "c"}, Loader: loader, Priority: types.PriorityHigh},
	})

	if loaded != 3 {
		t.Fatalf("expected 3 entries loaded, got %d", loaded)
	}
	for _, key := range []string{"a", "b", "c"} {
		value, ok := m.Get(key)
		if !ok {
			t.Errorf("expected warmed key %q to be resident", key)
			continue
		}
		if value != "value-"+key {
			t.Errorf("expected %q, got %v", "value-"+key, value)
		}
	}
}

func TestManager_WarmSkipsResident(t *testing.T) {
	m := newTestManager(t, nil)
	m.Set("a", "original", nil)

	calls := 0
	loader := types.LoaderFunc(func(ctx context.Context, key string) (interface{}, error) {
		calls++
		return "reloaded", nil
	})

	loaded := m.Warm(context.Background(), []WarmingStrategy{
		{Keys: []string{"a", "b"}, Loader: loader},
	})

	if loaded != 1 {
		t.Errorf("expected 1 entry loaded, got %d", loaded)
	}
	if calls != 1 {
		t.Errorf("expected the loader called once, got %d", calls)
	}
	if value, _ := m.Get("a"); value != "original" {
		t.Errorf("resident entry must not be overwritten, got %v", value)
	}
}

// TestManager_WarmLoaderFailure checks that one failing key never
// aborts the batch.
func TestManager_WarmLoaderFailure(t *testing.T) {
	m := newTestManager(t, nil)

	loader := types.LoaderFunc(func(ctx context.Context, key string) (interface{}, error) {
		if key == "bad" {
			return nil, fmt.Errorf("backend unavailable")
		}
		return "ok", nil
	})

	loaded := m.Warm(context.Background(), []WarmingStrategy{
		{Keys: []string{"good1", "bad", "good2"}, Loader: loader},
	})

	if loaded != 2 {
		t.Errorf("expected 2 entries loaded, got %d", loaded)
	}
	if m.Contains("bad") {
		t.Error("failed key must not be cached")
	}
}

func TestManager_WarmDisabled(t *testing.T) {
	m := newTestManager(t, nil)
	m.config.WarmingEnabled = false

	loader := types.LoaderFunc(func(ctx context.Context, key string) (interface{}, error) {
		t.Error("loader must not run with warming disabled")
		return nil, nil
	})

	if loaded := m.Warm(context.Background(), []WarmingStrategy{
		{Keys: []string{"a"}, Loader: loader},
	}); loaded != 0 {
		t.Errorf("expected 0 entries loaded, got %d", loaded)
	}
}

func TestManager_WarmCancelled(t *testing.T) {
	m := newTestManager(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := types.LoaderFunc(func(ctx context.Context, key string) (interface{}, error) {
		return "value", nil
	})

	if loaded := m.Warm(ctx, []WarmingStrategy{
		{Keys: []string{"a", "b"}, Loader: loader},
	}); loaded != 0 {
		t.Errorf("expected 0 entries loaded after cancellation, got %d", loaded)
	}
}

func TestManager_WarmNilLoader(t *testing.T) {
	m := newTestManager(t, nil)

	if loaded := m.Warm(context.Background(), []WarmingStrategy{
		{Keys: []string{"a"}},
	}); loaded != 0 {
		t.Errorf("expected a strategy without a loader to be skipped, got %d", loaded)
	}
}
