// Package scanner orchestrates feed traversal: it discovers media items in
// the favorites gallery, classifies and deduplicates them, and runs the
// unfavorite-all sweep.
package scanner

import (
	"context"

	"grokfaves/pkg/classifier"
	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/gallery"
	"grokfaves/pkg/logger"
	"grokfaves/pkg/models"
	"grokfaves/pkg/ratelimit"
)

// Scanner walks a gallery feed. It holds no lock of its own; callers gate
// concurrent operations through the session object.
type Scanner struct {
	feed        gallery.Feed
	logger      logger.Logger
	loadPacer   ratelimit.Limiter
	removePacer ratelimit.Limiter
	maxStalls   int
}

// New creates a Scanner over the given feed.
func New(feed gallery.Feed, cfg *config.Config) *Scanner {
	return &Scanner{
		feed:   feed,
		logger: logger.GetLogger(),
		// Capacity-one bucket: at most one load-more per delay window.
		loadPacer:   ratelimit.NewTokenBucket(1, cfg.Scan.LoadMoreDelay),
		removePacer: ratelimit.NewFixedInterval(cfg.Scan.RemoveDelay),
		maxStalls:   cfg.Scan.MaxStalls,
	}
}

// Scan discovers every media item the feed will reveal, filtered by mode
// and deduplicated by ID. It keeps triggering lazy loading until no new
// items appear across maxStalls consecutive attempts, which bounds the
// worst case on stalled or endless feeds. Scanning the same page state
// twice yields an equivalent set.
//
// Cancellation is checked at the top of every iteration and surfaces as a
// Cancelled error, never as a silently truncated item list. A scan that
// finds nothing fails with NotFound.
func (s *Scanner) Scan(ctx context.Context, mode models.ScanMode) ([]models.MediaItem, error) {
	var items []models.MediaItem
	seen := make(map[string]bool)
	stalls := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.KindCancelled, "scan cancelled", err)
		}

		nodes, err := s.feed.CurrentItems(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.KindCancelled, "scan cancelled", err)
			}
			return nil, errors.Wrap(errors.KindTransient, "failed to read feed", err)
		}

		added := s.collect(nodes, mode, seen, &items)
		s.logger.DebugWithFields("feed pass complete", map[string]interface{}{
			"visible": len(nodes),
			"added":   added,
			"total":   len(items),
		})

		if err := s.loadPacer.Wait(ctx); err != nil {
			return nil, errors.Wrap(errors.KindCancelled, "scan cancelled", err)
		}

		grew, err := s.feed.LoadMore(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.KindCancelled, "scan cancelled", err)
			}
			s.logger.WithError(err).Warn("load-more failed, counting as stall")
			grew = false
		}

		if added == 0 && !grew {
			stalls++
			if stalls >= s.maxStalls {
				break
			}
		} else {
			stalls = 0
		}
	}

	if len(items) == 0 {
		return nil, errors.New(errors.KindNotFound, "no media found")
	}

	s.logger.InfoWithFields("scan complete", map[string]interface{}{
		"mode":  string(mode),
		"items": len(items),
	})
	return items, nil
}

// collect classifies nodes and appends new matching items. Unrecognized
// nodes are logged and skipped; the scan never aborts on them.
func (s *Scanner) collect(nodes []gallery.RawNode, mode models.ScanMode, seen map[string]bool, items *[]models.MediaItem) int {
	added := 0
	for _, node := range nodes {
		item, err := classifier.Classify(node)
		if err != nil {
			s.logger.WithError(err).Debug("skipping unclassifiable node")
			continue
		}
		if !mode.Wants(item.Type) {
			continue
		}

		key := item.ID
		if key == "" {
			// ID-less items still dedupe, by URL.
			key = item.URL
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		*items = append(*items, item)
		added++
	}
	return added
}

// UnsaveAll sweeps every visible item and removes it from the favorites
// list, one at a time. Removal mutates the feed underneath — items shift
// positions — so the live list is re-queried after every attempt; a stale
// index would skip or double-process items. Individual failures are logged
// and skipped past, never aborting the sweep. Returns the count of
// successful removals.
func (s *Scanner) UnsaveAll(ctx context.Context) (int, error) {
	removed := 0
	// skip indexes past items whose removal keeps failing, so a feed with a
	// stuck item still terminates.
	skip := 0

	for {
		if err := ctx.Err(); err != nil {
			return removed, errors.Wrap(errors.KindCancelled, "sweep cancelled", err)
		}

		nodes, err := s.feed.CurrentItems(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return removed, errors.Wrap(errors.KindCancelled, "sweep cancelled", err)
			}
			return removed, errors.Wrap(errors.KindTransient, "failed to read feed", err)
		}
		if skip >= len(nodes) {
			break
		}

		node := nodes[skip]
		if err := s.feed.Remove(ctx, node); err != nil {
			logger.LogRemoval(node.ItemID, false, err)
			skip++
		} else {
			logger.LogRemoval(node.ItemID, true, nil)
			removed++
		}

		if err := s.removePacer.Wait(ctx); err != nil {
			return removed, errors.Wrap(errors.KindCancelled, "sweep cancelled", err)
		}
	}

	s.logger.InfoWithFields("sweep complete", map[string]interface{}{
		"removed": removed,
		"skipped": skip,
	})
	return removed, nil
}
