package departures

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates the feed text could not be turned into a snapshot
	ErrParse = errors.New("malformed departure feed")

	// ErrIndex indicates a record index outside the snapshot
	ErrIndex = errors.New("service index out of range")
)

// ParseError is returned by Ingest when the feed text is malformed or has
// an unexpected shape. The engine keeps its previous snapshot.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse feed: %s: %v", e.Reason, e.Err)
	}
	return "parse feed: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is implements errors.Is for ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IndexError is returned by snapshot accessors for an out-of-range index
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("service index %d out of range [0,%d)", e.Index, e.Len)
}

// Is implements errors.Is for IndexError
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}
