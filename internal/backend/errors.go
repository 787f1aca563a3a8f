package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a response the backend answered with a non-2xx status.
// Transport-level failures (no response at all) are ordinary wrapped
// errors, so callers can tell "server said no" from "could not reach
// server" with errors.As.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend. Callers
// are expected to clear the session and abandon the current operation;
// the client never retries on its own.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
