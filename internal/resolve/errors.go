package resolve

import "errors"

// ErrForbiddenDomain is returned when a pointer or next-page link leads
// outside the chain's allowed domains.
var ErrForbiddenDomain = errors.New("target domain not allowed for this chain")
