package provider

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is returned for empty or whitespace-only search
// queries. Minimum-length policy is enforced at the API boundary; the
// source itself only rejects the degenerate cases.
var ErrInvalidQuery = errors.New("invalid search query")

// FetchCause classifies why an upstream player fetch failed.
type FetchCause string

const (
	CauseNetwork   FetchCause = "network"
	CauseNotFound  FetchCause = "not_found"
	CauseMalformed FetchCause = "malformed"
	CauseTimeout   FetchCause = "timeout"
)

// FetchError captures a failed upstream fetch for one player id.
type FetchError struct {
	ID    string
	Cause FetchCause
	Err   error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch player %s: %s: %v", e.ID, e.Cause, e.Err)
	}
	return fmt.Sprintf("fetch player %s: %s", e.ID, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AsFetchError attempts to unwrap an error into a *FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
