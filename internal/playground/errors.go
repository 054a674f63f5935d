package playground

import "net/http"

// RequestError is the error taxonomy for the playground API. Handlers map it
// straight onto the HTTP response; Message is always safe to show a client.
type RequestError struct {
	Status     int
	Message    string
	RetryAfter int    // seconds; only meaningful for 429 responses
	Provider   string // set on provider failures
	Detail     string // raw provider error; logged, returned only when DEBUG
}

func (e *RequestError) Error() string { return e.Message }

func validationError(message string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: message}
}

func notFoundError(message string) *RequestError {
	return &RequestError{Status: http.StatusNotFound, Message: message}
}

func conflictError(message string) *RequestError {
	return &RequestError{Status: http.StatusConflict, Message: message}
}

func rateLimitedError(message string, retryAfter int) *RequestError {
	return &RequestError{Status: http.StatusTooManyRequests, Message: message, RetryAfter: retryAfter}
}
