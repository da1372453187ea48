package filesearch

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the hosted API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("file search api status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err means the remote resource does not exist.
// The lifecycle sweep treats this as "already gone" and proceeds with local
// deletion.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRetryable reports whether err is worth retrying on a later cycle.
// Transport failures and 429/5xx responses are retryable; other 4xx
// responses are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
