package clients

import (
	"errors"
	"fmt"
)

// ErrNotConfigured marks operations invoked on a façade whose required
// configuration was absent at construction time. Callers should degrade to a
// "service not configured" result instead of failing the whole request.
var ErrNotConfigured = errors.New("service is not configured")

// RemoteServiceError reports a remote call that could not be completed or
// understood: auth failures, rate limits, malformed payloads, network errors.
// A confirmed absence (HTTP 404) is never a RemoteServiceError; façades report
// it as a nil result.
type RemoteServiceError struct {
	Service    string
	StatusCode int // zero when the failure happened before an HTTP status was received
	Message    string
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: remote error (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: remote error: %s", e.Service, e.Message)
}

// CompletionError reports a failed completion-model call. There is no
// not-found case for completions, so every API failure is a CompletionError.
type CompletionError struct {
	StatusCode int
	Message    string
}

func (e *CompletionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion failed: %s", e.Message)
}

// remoteErr builds a RemoteServiceError from an upstream failure.
func remoteErr(service string, statusCode int, err error) error {
	return &RemoteServiceError{Service: service, StatusCode: statusCode, Message: err.Error()}
}
