package article

import (
	"errors"
	"fmt"
)

// ErrNoRootElement is returned when an item body lacks its single <main>
// root element.
var ErrNoRootElement = errors.New("body has no root content element")

// MergeError is a failure to merge a continuation page into an item.
// Merges are structurally required, so the caller must treat this as
// fatal for the whole chain.
type MergeError struct {
	URL string
	Err error
}

// Error returns the error message.
func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *MergeError) Unwrap() error {
	return e.Err
}
