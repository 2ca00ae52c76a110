package productive

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("productive authentication failed")
	ErrForbidden         = errors.New("productive access forbidden")
	ErrNotFound          = errors.New("productive resource not found")
	ErrRateLimited       = errors.New("productive rate limit exceeded")
	ErrMalformedResponse = errors.New("malformed productive response")
)

// UpstreamFetchError reports a failed page request. A run that hits one returns no partial data.
type UpstreamFetchError struct {
	Endpoint   string
	Page       int
	StatusCode int
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s page %d: status %d: %v", e.Endpoint, e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s page %d: %v", e.Endpoint, e.Page, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// IsUpstream reports whether err came from an upstream page request.
func IsUpstream(err error) bool {
	var fe *UpstreamFetchError
	return errors.As(err, &fe)
}
