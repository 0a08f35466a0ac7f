package gvp

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnsupportedCategory is returned by SearchResult.Complete for categories
// that have no full record to resolve to.
var ErrUnsupportedCategory = errors.New("search category cannot be completed")

// ErrNoResolver is returned when a record that was not produced by a Client
// is asked to fetch more data.
var ErrNoResolver = errors.New("gvp: record has no resolver")

// TransportError means the request never produced a usable response: the
// connection failed, timed out, the server answered with a non-2xx status or
// the service reported a failure for a listing.
type TransportError struct {
	Endpoint string
	// Status is the HTTP status code, 0 when no response was received.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gvp: %s: http %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("gvp: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means the response arrived but did not have the expected shape.
// Excerpt holds the beginning of the raw payload to help diagnose API changes.
type ParseError struct {
	Endpoint string
	Excerpt  string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gvp: %s: unexpected response: %v (payload: %q)", e.Endpoint, e.Err, e.Excerpt)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError means a well-formed response reported that the requested
// entity does not exist.
type NotFoundError struct {
	Endpoint string
	// Kind is the record type that was looked up, ex. "article".
	Kind string
	Id   string
	// Message is the reason given by the service, if any.
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gvp: %s %s not found: %s", e.Kind, e.Id, e.Message)
	}
	return fmt.Sprintf("gvp: %s %s not found", e.Kind, e.Id)
}

const excerptLength = 256

func excerpt(payload []byte) string {
	if len(payload) <= excerptLength {
		return string(payload)
	}
	cut := payload[:excerptLength]
	// drop a multi-byte rune split by the cut, legacy encoded bytes before it
	// are kept as they are
	for i := len(cut) - 1; i >= 0 && i >= len(cut)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(cut[i]) {
			continue
		}
		if !utf8.FullRune(cut[i:]) {
			cut = cut[:i]
		}
		break
	}
	return string(cut) + "..."
}

func newParseError(endpoint string, payload []byte, err error) *ParseError {
	return &ParseError{
		Endpoint: endpoint,
		Excerpt:  excerpt(payload),
		Err:      err,
	}
}
