package sauce

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSourceUnavailable indicates the source image could not be fetched.
	ErrSourceUnavailable = errors.New("image source unavailable")

	// ErrSourceOversized indicates the source image exceeds the configured
	// byte ceiling. It unwraps to ErrSourceUnavailable, so callers checking
	// only for fetch failures still match it.
	ErrSourceOversized = fmt.Errorf("image source oversized: %w", ErrSourceUnavailable)

	// ErrHostNotAllowed indicates the source URL's host is not on the
	// configured allow-list.
	ErrHostNotAllowed = errors.New("host is not allowed as an image source")

	// ErrNoQuerySource is returned by Search when neither a URL nor a file
	// was provided.
	ErrNoQuerySource = errors.New("either a source url or a file is required")

	// ErrConflictingQuerySources is returned by Search when both a URL and
	// a file were provided.
	ErrConflictingQuerySources = errors.New("source url and file are mutually exclusive")
)

// UpstreamError indicates the upstream search API call failed. Body holds the
// upstream response body when the failure was an HTTP error status, and is
// empty for transport-level failures.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return "upstream search request failed"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream search request failed: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("upstream search request failed with status %d: %s", e.StatusCode, e.Body)
}
