package ai

import "errors"

// Gateway error taxonomy. The gateway fails fast and never retries; retry
// policy belongs to the caller.
var (
	// ErrUnconfigured means no API credential was supplied.
	ErrUnconfigured = errors.New("ai: no API key configured")

	// ErrRateLimited maps an upstream 429.
	ErrRateLimited = errors.New("ai: upstream rate limit exceeded")

	// ErrUpstreamUnavailable maps upstream 5xx responses, timeouts, and
	// "processing"/"pending" async statuses; the contract requires a
	// synchronous completion, so an async status is a configuration error.
	ErrUpstreamUnavailable = errors.New("ai: upstream unavailable")

	// ErrUnauthorized maps an upstream 401.
	ErrUnauthorized = errors.New("ai: invalid API key")

	// ErrNotFound maps an upstream 404 (endpoint or model misconfiguration).
	ErrNotFound = errors.New("ai: endpoint not found")

	// ErrMalformedRequest maps an upstream 422.
	ErrMalformedRequest = errors.New("ai: malformed upstream request")

	// ErrEmptyResponse means the response content was blank or the literal
	// empty-array marker.
	ErrEmptyResponse = errors.New("ai: empty response content")

	// ErrUpstreamErrorMessage means the content itself was a short
	// natural-language error string rather than an answer.
	ErrUpstreamErrorMessage = errors.New("ai: upstream returned an error message")
)
