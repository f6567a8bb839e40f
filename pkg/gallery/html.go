package gallery

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// cardSelector matches the media cards the gallery renders. The host wraps
// each favorite in an article or figure element carrying a data-item-id.
const cardSelector = "article, figure, div.media-card"

// ExtractNodes parses gallery page markup into raw feed nodes. Cards whose
// media element can't be located come back with NodeUnrecognized so the
// caller can log and skip them.
func ExtractNodes(r io.Reader) ([]RawNode, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gallery markup: %w", err)
	}

	var nodes []RawNode
	doc.Find(cardSelector).Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, extractCard(sel))
	})
	return nodes, nil
}

func extractCard(sel *goquery.Selection) RawNode {
	node := RawNode{
		ItemID:   strings.TrimSpace(sel.AttrOr("data-item-id", "")),
		Caption:  extractCaption(sel),
		PostedAt: extractTimestamp(sel),
	}

	if video := sel.Find("video").First(); video.Length() > 0 {
		node.Kind = NodeVideo
		node.MediaURL = strings.TrimSpace(video.AttrOr("src", ""))
		if node.MediaURL == "" {
			node.MediaURL = strings.TrimSpace(video.Find("source").First().AttrOr("src", ""))
		}
		node.Poster = strings.TrimSpace(video.AttrOr("poster", ""))
	} else if img := sel.Find("img").First(); img.Length() > 0 {
		node.Kind = NodeImage
		node.MediaURL = strings.TrimSpace(img.AttrOr("src", ""))
	} else {
		node.Kind = NodeUnrecognized
	}

	if node.MediaURL == "" {
		node.Kind = NodeUnrecognized
	}
	return node
}

func extractCaption(sel *goquery.Selection) string {
	if prompt := sel.AttrOr("data-prompt", ""); prompt != "" {
		return strings.TrimSpace(prompt)
	}
	for _, selector := range []string{".prompt", "figcaption", "p"} {
		if text := strings.TrimSpace(sel.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(sel.Find("img").First().AttrOr("alt", ""))
}

func extractTimestamp(sel *goquery.Selection) time.Time {
	raw := sel.Find("time").First().AttrOr("datetime", "")
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
