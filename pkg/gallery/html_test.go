package gallery

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const galleryPage = `
<html><body>
  <article data-item-id="vid-1" data-prompt="Mountains at dawn">
    <video src="https://assets.example.com/vid-1.mp4" poster="https://assets.example.com/vid-1.jpg"></video>
    <time datetime="2024-03-05T12:00:00Z"></time>
  </article>
  <article data-item-id="vid-2">
    <video><source src="https://assets.example.com/vid-2.mp4"></video>
    <figcaption>A quiet forest</figcaption>
  </article>
  <figure data-item-id="img-1">
    <img src="https://assets.example.com/img-1.jpg" alt="City at night">
    <time datetime="2024-03-06"></time>
  </figure>
  <div class="media-card">
    <img src="https://assets.example.com/img-2.jpg">
    <p>Sketch of a boat</p>
  </div>
  <article data-item-id="broken-1">
    <span>Nothing renderable here</span>
  </article>
</body></html>`

func TestExtractNodes(t *testing.T) {
	nodes, err := ExtractNodes(strings.NewReader(galleryPage))
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	t.Run("video with direct src", func(t *testing.T) {
		node := nodes[0]
		assert.Equal(t, NodeVideo, node.Kind)
		assert.Equal(t, "vid-1", node.ItemID)
		assert.Equal(t, "https://assets.example.com/vid-1.mp4", node.MediaURL)
		assert.Equal(t, "https://assets.example.com/vid-1.jpg", node.Poster)
		assert.Equal(t, "Mountains at dawn", node.Caption)
		assert.Equal(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), node.PostedAt)
	})

	t.Run("video with source child", func(t *testing.T) {
		node := nodes[1]
		assert.Equal(t, NodeVideo, node.Kind)
		assert.Equal(t, "https://assets.example.com/vid-2.mp4", node.MediaURL)
		assert.Equal(t, "A quiet forest", node.Caption)
		assert.True(t, node.PostedAt.IsZero())
	})

	t.Run("image with date-only timestamp", func(t *testing.T) {
		node := nodes[2]
		assert.Equal(t, NodeImage, node.Kind)
		assert.Equal(t, "img-1", node.ItemID)
		assert.Equal(t, "City at night", node.Caption)
		assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), node.PostedAt)
	})

	t.Run("media-card div without item id", func(t *testing.T) {
		node := nodes[3]
		assert.Equal(t, NodeImage, node.Kind)
		assert.Empty(t, node.ItemID)
		assert.Equal(t, "Sketch of a boat", node.Caption)
	})

	t.Run("card without media is unrecognized", func(t *testing.T) {
		node := nodes[4]
		assert.Equal(t, NodeUnrecognized, node.Kind)
		assert.Equal(t, "broken-1", node.ItemID)
	})
}

func TestExtractNodesEmptyDocument(t *testing.T) {
	nodes, err := ExtractNodes(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestExtractNodesVideoWithoutSrcIsUnrecognized(t *testing.T) {
	nodes, err := ExtractNodes(strings.NewReader(
		`<article data-item-id="v"><video></video></article>`))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeUnrecognized, nodes[0].Kind)
}

func TestExtractNodesCaptionFallsBackToAlt(t *testing.T) {
	nodes, err := ExtractNodes(strings.NewReader(
		`<figure><img src="https://x.example.com/a.jpg" alt="fallback caption"></figure>`))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "fallback caption", nodes[0].Caption)
}
