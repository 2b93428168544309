// Package provider defines how upstream player data is fetched and the
// error taxonomy shared by all sources.
package provider

import (
	"context"

	"github.com/ferranmarti/scoutdesk/internal/player"
)

// PlayerSource fetches a single normalized player record from an
// upstream source. Implementations own their retry policy; callers see
// exactly one result or one *FetchError per call.
type PlayerSource interface {
	FetchPlayer(ctx context.Context, id string) (player.Record, error)
}

// Searcher resolves a name fragment to ranked candidates. An empty
// result set is not an error; result ranking is the upstream source's
// concern.
type Searcher interface {
	Search(ctx context.Context, query string) ([]player.Candidate, error)
}

// Source combines both upstream capabilities.
type Source interface {
	PlayerSource
	Searcher
}
