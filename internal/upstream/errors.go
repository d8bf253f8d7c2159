package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an HTTP-level failure from the upstream API. Message is
// the server-supplied message verbatim; Errors carries the optional
// field-level validation map for merging into form display.
type APIError struct {
	Status  int
	Message string
	Errors  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: status %d", e.Status)
	}
	return fmt.Sprintf("upstream: %s (status %d)", e.Message, e.Status)
}

// AsAPIError unwraps err into an *APIError if it is one. A false
// return means the request never produced an HTTP response (network
// failure) or failed before being sent.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthError reports whether err is an upstream 401 or 403. Callers
// react by clearing the session cookies and redirecting to login.
func IsAuthError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}
