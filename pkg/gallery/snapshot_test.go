package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grokfaves/pkg/errors"
)

func writeSnapshotDir(t *testing.T, pages map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func cardHTML(id, url string) string {
	return `<article data-item-id="` + id + `"><img src="` + url + `"></article>`
}

func TestSnapshotFeedPagination(t *testing.T) {
	dir := writeSnapshotDir(t, map[string]string{
		"page-001.html": cardHTML("a", "https://x.example.com/a.jpg"),
		"page-002.html": cardHTML("b", "https://x.example.com/b.jpg"),
		"notes.txt":     "ignored",
	})
	feed, err := NewSnapshotFeed(dir)
	require.NoError(t, err)
	ctx := context.Background()

	// Only the first page is visible before LoadMore.
	nodes, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "a", nodes[0].ItemID)

	grew, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, grew)

	nodes, err = feed.CurrentItems(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	grew, err = feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, grew)
}

func TestSnapshotFeedRemoveTombstones(t *testing.T) {
	dir := writeSnapshotDir(t, map[string]string{
		"page-001.html": cardHTML("a", "https://x.example.com/a.jpg") +
			cardHTML("b", "https://x.example.com/b.jpg"),
	})
	feed, err := NewSnapshotFeed(dir)
	require.NoError(t, err)
	ctx := context.Background()

	nodes, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.NoError(t, feed.Remove(ctx, nodes[0]))

	nodes, err = feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "b", nodes[0].ItemID)
}

func TestSnapshotFeedDoubleRemoveFails(t *testing.T) {
	dir := writeSnapshotDir(t, map[string]string{
		"page-001.html": cardHTML("a", "https://x.example.com/a.jpg"),
	})
	feed, err := NewSnapshotFeed(dir)
	require.NoError(t, err)
	ctx := context.Background()

	nodes, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.NoError(t, feed.Remove(ctx, nodes[0]))

	err = feed.Remove(ctx, nodes[0])
	require.Error(t, err)
	assert.Equal(t, errors.KindTransient, errors.KindOf(err))
}

func TestSnapshotFeedRemoveWithoutIdentityFails(t *testing.T) {
	dir := writeSnapshotDir(t, map[string]string{
		"page-001.html": cardHTML("a", "https://x.example.com/a.jpg"),
	})
	feed, err := NewSnapshotFeed(dir)
	require.NoError(t, err)

	err = feed.Remove(context.Background(), RawNode{})
	require.Error(t, err)
	assert.Equal(t, errors.KindTransient, errors.KindOf(err))
}

func TestSnapshotFeedEmptyDirectory(t *testing.T) {
	_, err := NewSnapshotFeed(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
