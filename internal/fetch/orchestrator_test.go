package fetch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider"
)

// stubFetcher fails the ids in fail and tracks peak concurrency.
type stubFetcher struct {
	fail    map[string]error
	delay   time.Duration
	current atomic.Int32
	peak    atomic.Int32

	mu       sync.Mutex
	refreshd []string
}

func (f *stubFetcher) GetOrFetch(ctx context.Context, id string) (player.Record, error) {
	cur := f.current.Add(1)
	defer f.current.Add(-1)
	for {
		old := f.peak.Load()
		if cur <= old || f.peak.CompareAndSwap(old, cur) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return player.Record{}, ctx.Err()
		}
	}
	if err, ok := f.fail[id]; ok {
		return player.Record{}, err
	}
	return player.Record{ID: id, FullName: "player " + id}, nil
}

func (f *stubFetcher) Refresh(ctx context.Context, id string) (player.Record, error) {
	f.mu.Lock()
	f.refreshd = append(f.refreshd, id)
	f.mu.Unlock()
	return f.GetOrFetch(ctx, id)
}

func TestFetchManyPartialFailure(t *testing.T) {
	fetcher := &stubFetcher{fail: map[string]error{
		"B": &provider.FetchError{ID: "B", Cause: provider.CauseNotFound},
	}}
	o := New(fetcher, Config{Workers: 3})

	results := o.FetchMany(context.Background(), []string{"A", "B", "C"})
	if len(results) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(results))
	}
	for _, id := range []string{"A", "C"} {
		res := results[id]
		if res.Err != nil {
			t.Errorf("id %s: unexpected error %v", id, res.Err)
		}
		if res.Record.ID != id {
			t.Errorf("id %s: record %+v", id, res.Record)
		}
	}
	fe, ok := provider.AsFetchError(results["B"].Err)
	if !ok || fe.Cause != provider.CauseNotFound {
		t.Fatalf("id B: expected not_found FetchError, got %v", results["B"].Err)
	}
}

func TestFetchManyDeduplicatesIDs(t *testing.T) {
	fetcher := &stubFetcher{}
	o := New(fetcher, Config{})

	results := o.FetchMany(context.Background(), []string{"A", "A", "", "B", "A"})
	if len(results) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(results), results)
	}
}

func TestFetchManyRespectsWorkerBound(t *testing.T) {
	fetcher := &stubFetcher{delay: 20 * time.Millisecond}
	o := New(fetcher, Config{Workers: 2})

	ids := []string{"1", "2", "3", "4", "5", "6"}
	results := o.FetchMany(context.Background(), ids)
	if len(results) != len(ids) {
		t.Fatalf("expected %d entries, got %d", len(ids), len(results))
	}
	if peak := fetcher.peak.Load(); peak > 2 {
		t.Fatalf("worker bound violated: peak concurrency %d", peak)
	}
}

func TestFetchManyEmptyInput(t *testing.T) {
	o := New(&stubFetcher{}, Config{})
	if got := o.FetchMany(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestFetchManyPerFetchTimeout(t *testing.T) {
	fetcher := &stubFetcher{delay: 200 * time.Millisecond}
	o := New(fetcher, Config{Workers: 2, Timeout: 20 * time.Millisecond})

	results := o.FetchMany(context.Background(), []string{"slow"})
	fe, ok := provider.AsFetchError(results["slow"].Err)
	if !ok || fe.Cause != provider.CauseTimeout {
		t.Fatalf("expected timeout FetchError, got %v", results["slow"].Err)
	}
}

func TestFetchManyProgress(t *testing.T) {
	fetcher := &stubFetcher{}
	o := New(fetcher, Config{Workers: 2})

	var mu sync.Mutex
	var seen []int
	o.OnProgress = func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		seen = append(seen, completed)
	}

	o.FetchMany(context.Background(), []string{"A", "B", "C"})
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || seen[len(seen)-1] != 3 {
		t.Fatalf("progress callbacks = %v", seen)
	}
}

func TestRefreshManyUsesRefresh(t *testing.T) {
	fetcher := &stubFetcher{}
	o := New(fetcher, Config{})
	o.RefreshMany(context.Background(), []string{"A", "B"})
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	if len(fetcher.refreshd) != 2 {
		t.Fatalf("expected refresh path, got %v", fetcher.refreshd)
	}
}
