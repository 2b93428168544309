// Package fetch resolves batches of player ids to records with bounded
// upstream concurrency and per-id failure isolation.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider"
)

const (
	defaultWorkers = 6
	defaultTimeout = 15 * time.Second
)

// Fetcher is the cache-or-fetch capability the orchestrator dispatches
// to, satisfied by *store.Store.
type Fetcher interface {
	GetOrFetch(ctx context.Context, id string) (player.Record, error)
	Refresh(ctx context.Context, id string) (player.Record, error)
}

// Result is one per-id outcome. Exactly one of Record/Err is meaningful.
type Result struct {
	Record player.Record
	Err    error
}

// Orchestrator fans a batch of ids out over a bounded worker pool.
type Orchestrator struct {
	fetcher Fetcher
	workers int
	timeout time.Duration
	logger  *slog.Logger

	// OnProgress, when set, is called after each id completes with the
	// running completion count and the batch total.
	OnProgress func(completed, total int)
}

// Config bounds the orchestrator. Zero values fall back to defaults;
// unbounded upstream concurrency is never allowed.
type Config struct {
	Workers int
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates an Orchestrator over the given fetcher.
func New(fetcher Fetcher, cfg Config) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{fetcher: fetcher, workers: workers, timeout: timeout, logger: logger}
}

// FetchMany resolves every distinct id to a Result. The returned map
// has exactly one entry per distinct input id; one id failing never
// aborts or blocks the others.
func (o *Orchestrator) FetchMany(ctx context.Context, ids []string) map[string]Result {
	return o.run(ctx, ids, o.fetcher.GetOrFetch)
}

// RefreshMany is FetchMany bypassing the cache for every id.
func (o *Orchestrator) RefreshMany(ctx context.Context, ids []string) map[string]Result {
	return o.run(ctx, ids, o.fetcher.Refresh)
}

func (o *Orchestrator) run(ctx context.Context, ids []string, fetch func(context.Context, string) (player.Record, error)) map[string]Result {
	distinct := dedupe(ids)
	results := make(map[string]Result, len(distinct))
	if len(distinct) == 0 {
		return results
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
	)
	sem := make(chan struct{}, o.workers)

	record := func(id string, res Result) {
		mu.Lock()
		results[id] = res
		completed++
		done := completed
		mu.Unlock()
		if o.OnProgress != nil {
			o.OnProgress(done, len(distinct))
		}
	}

	for _, id := range distinct {
		// Acquire a worker slot, or fail the remaining ids fast when
		// the batch context dies.
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			record(id, Result{Err: batchError(id, ctx.Err())})
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			rec, err := fetch(fetchCtx, id)
			if err != nil {
				o.logger.Warn("player fetch failed", "player_id", id, "error", err)
				record(id, Result{Err: asFetchError(id, err)})
				return
			}
			record(id, Result{Record: rec})
		}(id)
	}

	wg.Wait()
	return results
}

// asFetchError guarantees batch entries carry a *provider.FetchError.
func asFetchError(id string, err error) error {
	if _, ok := provider.AsFetchError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.FetchError{ID: id, Cause: provider.CauseTimeout, Err: err}
	}
	return &provider.FetchError{ID: id, Cause: provider.CauseNetwork, Err: err}
}

func batchError(id string, err error) error {
	cause := provider.CauseNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		cause = provider.CauseTimeout
	}
	return &provider.FetchError{ID: id, Cause: cause, Err: err}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
