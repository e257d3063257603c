package driven

import (
	"context"
	"errors"
	"fmt"
)

// ErrRemoteFetch is the kind for any failure retrieving the source
// dataset, whether transport-level or a non-2xx response.
var ErrRemoteFetch = errors.New("remote fetch failed")

// ErrMalformedResponse is returned when the source responds 2xx but the
// body is not valid JSON.
var ErrMalformedResponse = errors.New("malformed response body")

// StatusError reports a non-2xx HTTP response from the source API.
// It matches ErrRemoteFetch under errors.Is.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
}

// Is reports ErrRemoteFetch so callers can classify without a type assertion.
func (e *StatusError) Is(target error) bool {
	return target == ErrRemoteFetch
}

// DatasetSource defines the driven port for retrieving the source dataset.
// Fetch issues a single request with no retry; the returned bytes are the
// validated, re-serialized JSON document.
type DatasetSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}
