package fetcher

import (
	"fmt"
	"strings"
)

// StatusError reports a non-success HTTP status from the origin. Only 403
// is treated as transient; everything else fails the fetch immediately.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// AuthError reports a proxy credential rejection. Rotating identity or
// proxy will not fix bad credentials, so it is never retried.
type AuthError struct {
	URL string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proxy authentication failed for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("proxy authentication failed for %s", e.URL)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError wraps the last underlying error after the retry budget for a
// logical request is exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch of %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// isAuthRejection recognizes proxy 407 responses surfaced as transport
// errors by the HTTP client.
func isAuthRejection(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "407") ||
		strings.Contains(msg, "Proxy Authentication Required") ||
		strings.Contains(msg, "Unauthorized")
}
