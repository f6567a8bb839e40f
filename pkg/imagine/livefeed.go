package imagine

import (
	"context"

	"grokfaves/pkg/errors"
	"grokfaves/pkg/gallery"
)

// LiveFeed implements gallery.Feed over the host's paginated favorites
// pages. Each LoadMore fetches the next cursor; removals go through the
// unfavorite endpoint and drop the node from the accumulated view so
// CurrentItems reflects the shifted list immediately.
type LiveFeed struct {
	client *Client
	cursor int
	loaded bool
	nodes  []gallery.RawNode
}

// NewLiveFeed creates a feed backed by the authenticated client.
func NewLiveFeed(client *Client) *LiveFeed {
	return &LiveFeed{client: client}
}

func (f *LiveFeed) CurrentItems(ctx context.Context) ([]gallery.RawNode, error) {
	if !f.loaded {
		if err := f.fetchPage(ctx); err != nil {
			return nil, err
		}
		f.loaded = true
	}
	out := make([]gallery.RawNode, len(f.nodes))
	copy(out, f.nodes)
	return out, nil
}

func (f *LiveFeed) LoadMore(ctx context.Context) (bool, error) {
	if !f.loaded {
		// LoadMore before the first CurrentItems still counts cursor 0.
		if err := f.fetchPage(ctx); err != nil {
			return false, err
		}
		f.loaded = true
		return len(f.nodes) > 0, nil
	}

	before := len(f.nodes)
	f.cursor++
	if err := f.fetchPage(ctx); err != nil {
		f.cursor--
		return false, err
	}
	return len(f.nodes) > before, nil
}

func (f *LiveFeed) Remove(ctx context.Context, node gallery.RawNode) error {
	if node.ItemID == "" {
		return errors.New(errors.KindTransient, "cannot remove a node without an item ID")
	}
	if err := f.client.RemoveFavorite(ctx, node.ItemID); err != nil {
		return err
	}
	for i := range f.nodes {
		if f.nodes[i].ItemID == node.ItemID {
			f.nodes = append(f.nodes[:i], f.nodes[i+1:]...)
			break
		}
	}
	return nil
}

// fetchPage pulls one gallery page and appends any nodes not already held.
func (f *LiveFeed) fetchPage(ctx context.Context) error {
	body, err := f.client.GetHTML(ctx, favoritesPath(f.cursor))
	if err != nil {
		return err
	}
	defer body.Close()

	pageNodes, err := gallery.ExtractNodes(body)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(f.nodes))
	for _, node := range f.nodes {
		known[nodeKey(node)] = true
	}
	for _, node := range pageNodes {
		if known[nodeKey(node)] {
			continue
		}
		f.nodes = append(f.nodes, node)
	}
	return nil
}

func nodeKey(node gallery.RawNode) string {
	if node.ItemID != "" {
		return node.ItemID
	}
	return node.MediaURL
}
