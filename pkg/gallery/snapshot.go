package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"grokfaves/pkg/errors"
)

// SnapshotFeed serves a gallery saved to disk as a sequence of HTML page
// files. It reproduces the live feed's behavior for offline scans: pages
// become visible one LoadMore at a time, and removals tombstone items in
// memory so subsequent CurrentItems calls see the shifted list.
type SnapshotFeed struct {
	pages   []string
	visible int
	removed map[string]bool
}

// NewSnapshotFeed builds a feed from every .html file in dir, in lexical
// order. The first page is visible immediately.
func NewSnapshotFeed(dir string) (*SnapshotFeed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		pages = append(pages, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(pages)

	if len(pages) == 0 {
		return nil, errors.New(errors.KindNotFound, "no gallery pages in "+dir)
	}

	return &SnapshotFeed{
		pages:   pages,
		visible: 1,
		removed: make(map[string]bool),
	}, nil
}

func (f *SnapshotFeed) CurrentItems(ctx context.Context) ([]RawNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []RawNode
	for _, page := range f.pages[:f.visible] {
		file, err := os.Open(page)
		if err != nil {
			return nil, fmt.Errorf("failed to open gallery page: %w", err)
		}
		pageNodes, err := ExtractNodes(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		for _, node := range pageNodes {
			if f.removed[f.key(node)] {
				continue
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (f *SnapshotFeed) LoadMore(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if f.visible >= len(f.pages) {
		return false, nil
	}
	f.visible++
	return true, nil
}

func (f *SnapshotFeed) Remove(ctx context.Context, node RawNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := f.key(node)
	if key == "" {
		return errors.New(errors.KindTransient, "node has no identity to remove by")
	}
	if f.removed[key] {
		return errors.New(errors.KindTransient, "item already removed: "+key)
	}
	f.removed[key] = true
	return nil
}

// key identifies a node for tombstoning, preferring the page-assigned ID.
func (f *SnapshotFeed) key(node RawNode) string {
	if node.ItemID != "" {
		return node.ItemID
	}
	return node.MediaURL
}
