package feedgen

import "errors"

var (
	// ErrMissingURL is returned when a feed entry has no listing page URL.
	ErrMissingURL = errors.New("missing feed URL")

	// ErrUnknownFeedType is returned for a feed type other than atom or rss.
	ErrUnknownFeedType = errors.New("unknown feed type")

	// ErrMissingFileName is returned when a feed entry has no file name.
	ErrMissingFileName = errors.New("missing file name")

	// ErrDuplicateFileName is returned when two pages share a file name.
	ErrDuplicateFileName = errors.New("duplicate file name")

	// ErrNoLinks is returned when the href expression matches nothing on
	// the listing page.
	ErrNoLinks = errors.New("no links matched on listing page")
)
