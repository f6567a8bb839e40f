package imagine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grokfaves/pkg/errors"
	"grokfaves/pkg/gallery"
)

// galleryServer serves favorites pages by cursor and records unfavorite
// calls.
type galleryServer struct {
	pages       map[int]string
	unfavorited []string
}

func (g *galleryServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/imagine/favorites", func(w http.ResponseWriter, r *http.Request) {
		cursor := 0
		fmt.Sscanf(r.URL.Query().Get("cursor"), "%d", &cursor)
		page, ok := g.pages[cursor]
		if !ok {
			page = "<html><body></body></html>"
		}
		io.WriteString(w, page)
	})
	mux.HandleFunc("/rest/media/", func(w http.ResponseWriter, r *http.Request) {
		g.unfavorited = append(g.unfavorited, r.URL.Path)
		io.WriteString(w, `{}`)
	})
	return mux
}

func card(id string) string {
	return fmt.Sprintf(`<article data-item-id=%q><img src="https://x.example.com/%s.jpg"></article>`, id, id)
}

func newLiveFeedTest(t *testing.T, pages map[int]string) (*LiveFeed, *galleryServer) {
	t.Helper()
	gs := &galleryServer{pages: pages}
	server := httptest.NewServer(gs.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(testCredentials(), 5*time.Second)
	require.NoError(t, err)
	client.SetBaseURL(server.URL)
	return NewLiveFeed(client), gs
}

func TestLiveFeedFirstPageOnDemand(t *testing.T) {
	feed, _ := newLiveFeedTest(t, map[int]string{
		0: card("a") + card("b"),
	})

	nodes, err := feed.CurrentItems(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].ItemID)
	assert.Equal(t, "b", nodes[1].ItemID)
}

func TestLiveFeedLoadMoreAccumulates(t *testing.T) {
	feed, _ := newLiveFeedTest(t, map[int]string{
		0: card("a"),
		1: card("a") + card("b"), // page overlap, deduplicated on append
	})
	ctx := context.Background()

	nodes, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	grew, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, grew)

	nodes, err = feed.CurrentItems(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	// The next cursor is empty: nothing new appears.
	grew, err = feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, grew)
}

func TestLiveFeedRemove(t *testing.T) {
	feed, gs := newLiveFeedTest(t, map[int]string{
		0: card("a") + card("b"),
	})
	ctx := context.Background()

	nodes, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.NoError(t, feed.Remove(ctx, nodes[0]))
	assert.Equal(t, []string{"/rest/media/a/unfavorite"}, gs.unfavorited)

	nodes, err = feed.CurrentItems(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "b", nodes[0].ItemID)
}

func TestLiveFeedRemoveWithoutIDFails(t *testing.T) {
	feed, gs := newLiveFeedTest(t, map[int]string{0: card("a")})

	err := feed.Remove(context.Background(), gallery.RawNode{MediaURL: "https://x.example.com/a.jpg"})
	require.Error(t, err)
	assert.Equal(t, errors.KindTransient, errors.KindOf(err))
	assert.Empty(t, gs.unfavorited)
}

func TestLiveFeedCurrentItemsReturnsCopy(t *testing.T) {
	feed, _ := newLiveFeedTest(t, map[int]string{
		0: card("a") + card("b"),
	})
	ctx := context.Background()

	nodes, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	nodes[0].ItemID = "mutated"

	again, err := feed.CurrentItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ItemID)
}
