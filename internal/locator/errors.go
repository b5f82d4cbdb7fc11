package locator

import "errors"

// ErrConflictingSourceOptions is returned when both source_contains and
// source_parent_contains are configured.
var ErrConflictingSourceOptions = errors.New(
	"source_contains and source_parent_contains are mutually exclusive")
