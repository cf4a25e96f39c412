// Package dictionary provides pronunciation sources keyed by lowercased word.
//
// A Source returns zero or more transcriptions for a word, in the order the
// dictionary prefers them. Each transcription is a space-separated ARPAbet
// string such as "K AE1 T". Backends:
//
//   - Memory: parsed CMUdict file (optionally .xz compressed)
//   - SQLite: embedded pure-Go database
//   - Postgres: shared database via pgxpool
//   - RedisCache: read-through cache in front of any other Source
package dictionary

import (
	"context"
	"errors"
)

var (
	// ErrMalformedEntry is returned when a stored transcription cannot be used.
	ErrMalformedEntry = errors.New("malformed dictionary entry")
	// ErrClosed is returned by sources used after Close.
	ErrClosed = errors.New("dictionary closed")
)

// Source looks up pronunciations for a lowercased word.
// A word with no entry yields an empty slice and a nil error.
type Source interface {
	Lookup(ctx context.Context, word string) ([]string, error)
	Close() error
}

// Entry is one transcription variant of a word.
type Entry struct {
	Word    string
	Variant int
	Phones  string
}

// Func adapts a lookup function to Source.
type Func func(ctx context.Context, word string) ([]string, error)

func (f Func) Lookup(ctx context.Context, word string) ([]string, error) {
	return f(ctx, word)
}

func (f Func) Close() error { return nil }
