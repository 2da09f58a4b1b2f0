package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "season:2024-25", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAndDoesNotCacheErrors(t *testing.T) {
	store := NewStore[int](time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	boom := errors.New("boom")
	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := store.Get("k"); ok {
		t.Fatalf("failed load must not be cached")
	}

	store.Set("k", 5)
	if v, ok := store.Get("k"); !ok || v != 5 {
		t.Fatalf("unexpected cached value: v=%d ok=%t", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	store := NewStore[int](0)
	store.Set("latest:2024-25", 1)
	store.Set("snapshot:run-1", 2)
	store.Set("latest:2023-24", 3)

	store.DeletePrefix("latest:")

	if _, ok := store.Get("latest:2024-25"); ok {
		t.Fatalf("expected latest entry to be removed")
	}
	if _, ok := store.Get("snapshot:run-1"); !ok {
		t.Fatalf("expected snapshot entry to remain")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
