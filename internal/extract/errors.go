package extract

import (
	"errors"
)

var (
	// ErrMalformedResponse marks a model response (or input) that could not
	// be decoded into a transaction. The message is skipped, never retried
	// within the batch.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrUpstreamUnavailable marks a transport-level failure talking to the
	// model provider.
	ErrUpstreamUnavailable = errors.New("extraction upstream unavailable")
)
