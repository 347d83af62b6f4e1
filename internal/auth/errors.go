package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any RequestError caused by a 401 response.
var ErrUnauthorized = errors.New("login required")

// RequestError is returned for every non-2xx response from the appliance.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "request failed"
	}
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("request failed: %s %s: %s", e.Method, e.URL, status)
}

// Is lets callers test a 401 with errors.Is(err, ErrUnauthorized).
func (e *RequestError) Is(target error) bool {
	return target == ErrUnauthorized && e != nil && e.StatusCode == http.StatusUnauthorized
}
