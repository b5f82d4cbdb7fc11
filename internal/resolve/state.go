package resolve

import (
	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

// stateKind identifies the phase of a resolution chain.
type stateKind uint8

const (
	// stateAwaitingPointerDecision decides whether the fetched page is the
	// article itself or a pointer to it.
	stateAwaitingPointerDecision stateKind = iota

	// stateAwaitingNextPage assembles or extends the item from the current
	// page and follows the next-page link.
	stateAwaitingNextPage

	// stateAwaitingSource drains the source URL queue one fetch at a time.
	stateAwaitingSource

	// stateDone holds the finished item.
	stateDone
)

// String returns a human-readable state name for logs.
func (k stateKind) String() string {
	switch k {
	case stateAwaitingPointerDecision:
		return "awaiting_pointer_decision"
	case stateAwaitingNextPage:
		return "awaiting_next_page"
	case stateAwaitingSource:
		return "awaiting_source"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// chainState is the full accumulated state of one resolution chain. It is
// owned by exactly one chain and carried between steps by value of this
// pointer, never shared across chains.
type chainState struct {
	kind stateKind

	// page is the page the next step operates on.
	page *page.Page

	// item is the article accumulated so far; nil until the first
	// non-pointer page is assembled.
	item *article.Item

	// queue holds the remaining source URLs, deduplicated, in
	// first-seen order. Populated on entry to stateAwaitingSource.
	queue []string
}
