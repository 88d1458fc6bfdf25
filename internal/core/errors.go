package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrPartNotFound    = errors.New("part not found")
)

// FetchError reports a failed archive download: either a transport failure
// (Err set) or a non-success HTTP status (StatusCode set).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed: %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports an archive without any usable spreadsheet entry.
type NotFoundError struct {
	Entry   string
	Entries []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no spreadsheet found in archive (wanted %q, entries: [%s])",
		e.Entry, strings.Join(e.Entries, ", "))
}

// ParseError reports an archive or spreadsheet that could not be decoded.
type ParseError struct {
	Sheet string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("parse error: sheet %q: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is one of the dataset load failures.
func IsLoadError(err error) bool {
	var fe *FetchError
	var nf *NotFoundError
	var pe *ParseError
	return errors.As(err, &fe) || errors.As(err, &nf) || errors.As(err, &pe)
}
