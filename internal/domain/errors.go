package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidRequest signals request parameters that cannot be served.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrParse signals a query string that does not conform to the query language.
	ErrParse = errors.New("query parse error")
	// ErrNotRightLeaning signals a term tree whose left operand is an ungrouped compound node.
	ErrNotRightLeaning = errors.New("query tree is not right-leaning")

	// ErrUnknownFilter signals a filter name absent from the registry.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrDuplicateFilter signals a second registration under an existing filter name.
	ErrDuplicateFilter = errors.New("duplicate filter")

	// ErrBackend signals a search backend failure.
	ErrBackend = errors.New("search backend error")
	// ErrKeywordSearchNotSupported signals that the backend lacks full-text search.
	ErrKeywordSearchNotSupported = errors.New("keyword search not supported by backend")
)

// FilterError wraps a filter registry sentinel with the offending filter name.
type FilterError struct {
	Name string
	Err  error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Name)
}

func (e *FilterError) Unwrap() error { return e.Err }

// NewUnknownFilter creates an unknown filter error.
func NewUnknownFilter(name string) error {
	return &FilterError{Name: name, Err: ErrUnknownFilter}
}

// NewDuplicateFilter creates a duplicate filter error.
func NewDuplicateFilter(name string) error {
	return &FilterError{Name: name, Err: ErrDuplicateFilter}
}
