// Package classifier normalizes raw feed nodes into media items.
package classifier

import (
	"strings"
	"time"

	"grokfaves/pkg/errors"
	"grokfaves/pkg/gallery"
	"grokfaves/pkg/models"
)

// TypeForURL derives the media type from the URL alone: a lowercased URL
// containing ".mp4" is a video, anything else an image. This is a suffix
// heuristic, not content inspection — a non-video URL carrying ".mp4" in a
// query parameter will be misclassified, and that risk is part of the
// contract shared with the path organizer.
func TypeForURL(url string) models.MediaType {
	if strings.Contains(strings.ToLower(url), ".mp4") {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

// Classify turns a raw node into a MediaItem. Nodes with no recognizable
// media shape or no resource URL fail with an Unrecognized error. A node
// missing its page-assigned ID still classifies; the resulting item has an
// empty ID and identifier-dependent callers must filter it out themselves.
func Classify(node gallery.RawNode) (models.MediaItem, error) {
	if node.Kind == gallery.NodeUnrecognized {
		return models.MediaItem{}, errors.New(errors.KindUnrecognized, "node does not match any known media pattern")
	}
	if node.MediaURL == "" {
		return models.MediaItem{}, errors.New(errors.KindUnrecognized, "node has no media URL")
	}

	date := node.PostedAt
	if date.IsZero() {
		date = time.Now()
	}

	return models.MediaItem{
		ID:     node.ItemID,
		URL:    node.MediaURL,
		Type:   TypeForURL(node.MediaURL),
		Date:   date,
		Prompt: node.Caption,
	}, nil
}
