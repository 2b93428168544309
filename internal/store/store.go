// Package store keeps the process-wide cache of normalized player
// records. Records never expire; a re-fetch is always caller-triggered
// and overwrites the cached record wholesale.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ferranmarti/scoutdesk/internal/metrics"
	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider"
)

// Archive persists records beyond the process lifetime. It is optional;
// a nil archive means in-memory only.
type Archive interface {
	SavePlayer(ctx context.Context, rec player.Record) error
	LoadPlayers(ctx context.Context) ([]player.Record, error)
}

// Store is the player record cache. All mutation goes through Put;
// concurrent GetOrFetch calls for the same id collapse into a single
// upstream fetch.
type Store struct {
	mu      sync.RWMutex
	records map[string]player.Record

	source  provider.PlayerSource
	flight  singleflight.Group
	archive Archive
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithArchive attaches a persistent archive. Fetched records are
// written through; warm-up loads are explicit via WarmFromArchive.
func WithArchive(a Archive) Option {
	return func(s *Store) { s.archive = a }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store backed by the given upstream source.
func New(source provider.PlayerSource, opts ...Option) *Store {
	s := &Store{
		records: make(map[string]player.Record),
		source:  source,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get is a non-blocking cache lookup.
func (s *Store) Get(id string) (player.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Put unconditionally overwrites the cached record for rec.ID.
func (s *Store) Put(rec player.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Stats reports cache state for the health endpoint.
func (s *Store) Stats() map[string]any {
	return map[string]any{
		"cached_players": s.Len(),
		"archive":        s.archive != nil,
	}
}

// GetOrFetch returns the cached record for id, fetching and caching it
// on a miss. Concurrent callers for the same id share one upstream
// request; the duplicate caller waits for and receives the first
// caller's result.
func (s *Store) GetOrFetch(ctx context.Context, id string) (player.Record, error) {
	if rec, ok := s.Get(id); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return rec, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return s.fetch(ctx, id)
}

// Refresh bypasses the cache and re-fetches id, overwriting the cached
// record on success.
func (s *Store) Refresh(ctx context.Context, id string) (player.Record, error) {
	return s.fetch(ctx, id)
}

func (s *Store) fetch(ctx context.Context, id string) (player.Record, error) {
	// The singleflight winner's context governs the shared request.
	// Followers block until the winner's fetch returns, even if their
	// own context dies first; they then receive the winner's result or
	// error.
	v, err, _ := s.flight.Do(id, func() (any, error) {
		start := time.Now()
		rec, err := s.source.FetchPlayer(ctx, id)
		metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.UpstreamFetches.WithLabelValues(fetchOutcome(err)).Inc()
			return nil, err
		}
		metrics.UpstreamFetches.WithLabelValues("success").Inc()
		s.Put(rec)
		s.saveToArchive(rec)
		return rec, nil
	})
	if err != nil {
		return player.Record{}, err
	}
	return v.(player.Record), nil
}

func (s *Store) saveToArchive(rec player.Record) {
	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.archive.SavePlayer(ctx, rec); err != nil {
		// Archival is best-effort; the fetch already succeeded.
		s.logger.Warn("archive write failed", "player_id", rec.ID, "error", err)
	}
}

// WarmFromArchive preloads all archived records into the cache.
// Returns the number of records loaded.
func (s *Store) WarmFromArchive(ctx context.Context) (int, error) {
	if s.archive == nil {
		return 0, nil
	}
	records, err := s.archive.LoadPlayers(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		s.Put(rec)
	}
	return len(records), nil
}

func fetchOutcome(err error) string {
	if fe, ok := provider.AsFetchError(err); ok {
		return string(fe.Cause)
	}
	return "error"
}
