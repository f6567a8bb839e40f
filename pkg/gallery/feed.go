// Package gallery abstracts the host page's favorites feed: a virtualized
// list of media cards that loads more content on demand and supports
// removing individual favorites.
package gallery

import (
	"context"
	"time"
)

// NodeKind tags the recognized shape of a raw feed node. Unrecognized is an
// explicit variant, not an implicit fallthrough.
type NodeKind string

const (
	NodeImage        NodeKind = "image"
	NodeVideo        NodeKind = "video"
	NodeUnrecognized NodeKind = "unrecognized"
)

// RawNode is the loosely typed representation of one feed card, as lifted
// from the page markup. Fields may be empty when the markup didn't carry
// them; the classifier decides what to make of that.
type RawNode struct {
	Kind     NodeKind
	ItemID   string
	MediaURL string
	Poster   string
	Caption  string
	PostedAt time.Time
}

// Feed is the host-page collaborator contract. Implementations wrap a live
// paginated gallery or a local snapshot of one.
type Feed interface {
	// CurrentItems returns the raw nodes currently visible in the feed.
	CurrentItems(ctx context.Context) ([]RawNode, error)

	// LoadMore asks the feed to reveal additional content and reports
	// whether anything new appeared.
	LoadMore(ctx context.Context) (bool, error)

	// Remove unfavorites the given node. The feed mutates underneath:
	// remaining items shift, so callers must re-query CurrentItems after
	// each removal.
	Remove(ctx context.Context, node RawNode) error
}
