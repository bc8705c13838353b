// Package errors defines the sentinel errors shared by the search server and
// a SearchError wrapper that attaches a message to a sentinel.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWord      = errors.New("invalid word")
	ErrInvalidID        = errors.New("invalid document id")
	ErrDuplicateID      = errors.New("document id already exists")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
)

type SearchError struct {
	Err     error
	Message string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *SearchError {
	return &SearchError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *SearchError {
	return &SearchError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err was caused by a malformed word.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidWord)
}
