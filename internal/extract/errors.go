package extract

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when a page has no extractable article content.
var ErrNoContent = errors.New("no extractable content")

// Error is an extraction failure for a specific page.
type Error struct {
	URL string
	Err error
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
