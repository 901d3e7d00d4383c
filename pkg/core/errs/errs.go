// Package errs defines the failure taxonomy shared by fetchers, extractors and the pipeline.
//
// Per-task kinds (Transport, ShortDocument, NoEntities, Parse) are recovered locally and
// reduced to counters; batch kinds (Lookup, EmptyResultSet) are returned to the caller.
package errs

import (
	"context"
	"errors"
)

var (
	// ErrTransport is a network failure, timeout or retryable HTTP status.
	ErrTransport = errors.New("transport error")
	// ErrShortDocument means a document was fetched but is unusable (missing or too short).
	ErrShortDocument = errors.New("empty or short document")
	// ErrNoEntities means usable text produced no validated relationship.
	ErrNoEntities = errors.New("no entities found")
	// ErrParse means a language-model reply was not valid JSON.
	ErrParse = errors.New("parse error")
	// ErrLookup means an entity or ticker could not be resolved to an identifier.
	ErrLookup = errors.New("lookup error")
	// ErrEmptyResultSet means every unit was processed and nothing survived.
	ErrEmptyResultSet = errors.New("empty result set")
)

// Kind names the taxonomy bucket of err, for counters and log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrShortDocument):
		return "short_document"
	case errors.Is(err, ErrNoEntities):
		return "no_entities"
	case errors.Is(err, ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return "transport"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrLookup):
		return "lookup"
	case errors.Is(err, ErrEmptyResultSet):
		return "empty_result_set"
	default:
		return "other"
	}
}
