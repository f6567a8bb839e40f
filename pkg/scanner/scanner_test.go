package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/gallery"
	"grokfaves/pkg/models"
)

// fakeFeed serves pre-baked pages and supports removal, standing in for a
// live gallery.
type fakeFeed struct {
	pages   [][]gallery.RawNode
	visible int

	removeCalls int
	// removeFails decides per attempt whether the removal fails. The node
	// stays in place on failure.
	removeFails func(call int) bool

	// onLoadMore fires before each LoadMore, for cancellation injection.
	onLoadMore func()
}

func newFakeFeed(pages ...[]gallery.RawNode) *fakeFeed {
	visible := 0
	if len(pages) > 0 {
		visible = 1
	}
	return &fakeFeed{pages: pages, visible: visible}
}

func (f *fakeFeed) CurrentItems(ctx context.Context) ([]gallery.RawNode, error) {
	var nodes []gallery.RawNode
	for _, page := range f.pages[:f.visible] {
		nodes = append(nodes, page...)
	}
	return nodes, nil
}

func (f *fakeFeed) LoadMore(ctx context.Context) (bool, error) {
	if f.onLoadMore != nil {
		f.onLoadMore()
	}
	if f.visible >= len(f.pages) {
		return false, nil
	}
	f.visible++
	return true, nil
}

func (f *fakeFeed) Remove(ctx context.Context, node gallery.RawNode) error {
	f.removeCalls++
	if f.removeFails != nil && f.removeFails(f.removeCalls) {
		return errors.New(errors.KindTransient, "removal failed")
	}
	for i := 0; i < f.visible; i++ {
		for j, candidate := range f.pages[i] {
			if candidate.ItemID == node.ItemID {
				f.pages[i] = append(f.pages[i][:j], f.pages[i][j+1:]...)
				return nil
			}
		}
	}
	return errors.New(errors.KindTransient, "node not visible")
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scan.LoadMoreDelay = time.Millisecond
	cfg.Scan.RemoveDelay = time.Millisecond
	cfg.Scan.MaxStalls = 2
	return cfg
}

func videoNode(id string) gallery.RawNode {
	return gallery.RawNode{
		Kind:     gallery.NodeVideo,
		ItemID:   id,
		MediaURL: "https://assets.example.com/" + id + ".mp4",
		PostedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func imageNode(id string) gallery.RawNode {
	return gallery.RawNode{
		Kind:     gallery.NodeImage,
		ItemID:   id,
		MediaURL: "https://assets.example.com/" + id + ".jpg",
		PostedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestScanCollectsAcrossPages(t *testing.T) {
	feed := newFakeFeed(
		[]gallery.RawNode{imageNode("a"), videoNode("b")},
		[]gallery.RawNode{imageNode("c")},
	)
	s := New(feed, testConfig())

	items, err := s.Scan(context.Background(), models.ScanModeBoth)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

func TestScanDeduplicatesByID(t *testing.T) {
	// The second page repeats an item from the first, as virtualized lists
	// do when cards re-render.
	feed := newFakeFeed(
		[]gallery.RawNode{imageNode("a"), imageNode("b")},
		[]gallery.RawNode{imageNode("a"), imageNode("c")},
	)
	s := New(feed, testConfig())

	items, err := s.Scan(context.Background(), models.ScanModeBoth)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestScanFiltersByMode(t *testing.T) {
	feed := newFakeFeed([]gallery.RawNode{imageNode("a"), videoNode("b"), imageNode("c")})

	items, err := New(feed, testConfig()).Scan(context.Background(), models.ScanModeVideos)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, models.MediaTypeVideo, items[0].Type)
}

func TestScanSkipsUnrecognizedNodes(t *testing.T) {
	feed := newFakeFeed([]gallery.RawNode{
		imageNode("a"),
		{Kind: gallery.NodeUnrecognized},
		imageNode("b"),
	})

	items, err := New(feed, testConfig()).Scan(context.Background(), models.ScanModeBoth)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestScanIsIdempotentOnSettledFeed(t *testing.T) {
	feed := newFakeFeed(
		[]gallery.RawNode{imageNode("a")},
		[]gallery.RawNode{videoNode("b")},
	)
	cfg := testConfig()

	first, err := New(feed, cfg).Scan(context.Background(), models.ScanModeBoth)
	require.NoError(t, err)

	second, err := New(feed, cfg).Scan(context.Background(), models.ScanModeBoth)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestScanEmptyFeedIsNotFound(t *testing.T) {
	feed := newFakeFeed([]gallery.RawNode{})

	_, err := New(feed, testConfig()).Scan(context.Background(), models.ScanModeBoth)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestScanCancellationSurfacesAsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// A feed that keeps growing, cancelled mid-traversal.
	feed := newFakeFeed(
		[]gallery.RawNode{imageNode("a")},
		[]gallery.RawNode{imageNode("b")},
		[]gallery.RawNode{imageNode("c")},
	)
	feed.onLoadMore = cancel

	items, err := New(feed, testConfig()).Scan(ctx, models.ScanModeBoth)
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	// Never a silently truncated result list.
	assert.Nil(t, items)
}

func TestUnsaveAllRemovesEverything(t *testing.T) {
	const n = 7
	nodes := make([]gallery.RawNode, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, imageNode(string(rune('a'+i))))
	}
	feed := newFakeFeed(nodes)
	s := New(feed, testConfig())

	removed, err := s.UnsaveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, removed)

	remaining, err := feed.CurrentItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestUnsaveAllSkipsPastPersistentFailures(t *testing.T) {
	const n = 9
	nodes := make([]gallery.RawNode, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, imageNode(string(rune('a'+i))))
	}
	feed := newFakeFeed(nodes)
	feed.removeFails = func(call int) bool { return call%3 == 0 }
	s := New(feed, testConfig())

	removed, err := s.UnsaveAll(context.Background())
	require.NoError(t, err)
	// Every third attempt fails and is skipped past: ceil(2n/3) removals.
	assert.Equal(t, 6, removed)

	remaining, err := feed.CurrentItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}

func TestUnsaveAllEmptyFeed(t *testing.T) {
	feed := newFakeFeed([]gallery.RawNode{})

	removed, err := New(feed, testConfig()).UnsaveAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestUnsaveAllCancellationReturnsPartialCount(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	feed := newFakeFeed([]gallery.RawNode{imageNode("a"), imageNode("b"), imageNode("c")})
	feed.removeFails = func(call int) bool {
		if call == 2 {
			cancel()
		}
		return false
	}
	s := New(feed, testConfig())

	removed, err := s.UnsaveAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	assert.Equal(t, 2, removed)
}
