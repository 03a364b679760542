package zoom

import "fmt"

// AuthError reports that the token endpoint rejected the credentials or
// could not be reached. It is fatal unless a single refresh attempt
// recovers it.
type AuthError struct {
	// Status is the HTTP status of the token response, 0 when the
	// endpoint was unreachable.
	Status int

	// Body is the response body, for operator context.
	Body string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token request failed: %v", e.Err)
	}
	return fmt.Sprintf("token request failed: HTTP %d: %s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError reports a non-2xx response from a list endpoint. A failed
// page yields no items: callers get either the whole page or this
// error.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: HTTP %d: %s", e.Status, e.Body)
}

// NotFound reports whether the error is the API's "user has no
// recordings" style response, which enumeration treats as empty rather
// than fatal.
func (e *APIError) NotFound() bool { return e.Status == 404 }
