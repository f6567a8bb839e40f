// Package upscale requests server-side upscales for favorited videos.
package upscale

import (
	"context"
	"strings"

	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/logger"
	"grokfaves/pkg/models"
	"grokfaves/pkg/ratelimit"
)

// Requester is the remote upscale API collaborator.
type Requester interface {
	// RequestUpscale asks the host to upscale one item and reports whether
	// the request was accepted.
	RequestUpscale(ctx context.Context, itemID string) (bool, error)
}

// Result summarizes one upscale flow.
type Result struct {
	Requested int
	Succeeded int
	Failed    int
}

// Flow drives sequential upscale requests with flat pacing.
type Flow struct {
	requester Requester
	pacer     ratelimit.Limiter
	logger    logger.Logger
}

// NewFlow creates an upscale flow paced by the configured flat delay.
func NewFlow(requester Requester, cfg *config.Config) *Flow {
	return &Flow{
		requester: requester,
		pacer:     ratelimit.NewFixedInterval(cfg.Upscale.Pacing),
		logger:    logger.GetLogger(),
	}
}

// Candidates filters a scan result down to upscalable videos: items whose
// URL carries the .mp4 marker and that have a page-assigned ID. Items the
// classifier produced without an ID can't be addressed by the API and are
// dropped here.
func Candidates(items []models.MediaItem) []models.MediaItem {
	var videos []models.MediaItem
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(item.URL), ".mp4") {
			continue
		}
		videos = append(videos, item)
	}
	return videos
}

// Run requests an upscale for every candidate, one at a time with a flat
// delay between requests. Per-item failures are logged and counted, never
// aborting the flow. Cancellation is checked at the top of each iteration
// and surfaces as Cancelled with the counts accumulated so far. Zero
// candidates fail with NotFound.
func (f *Flow) Run(ctx context.Context, items []models.MediaItem) (Result, error) {
	videos := Candidates(items)
	if len(videos) == 0 {
		return Result{}, errors.New(errors.KindNotFound, "no videos found to upscale")
	}

	var result Result
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(errors.KindCancelled, "upscale cancelled", err)
		}

		ok, err := f.requester.RequestUpscale(ctx, video.ID)
		result.Requested++
		if err != nil || !ok {
			result.Failed++
			logger.LogUpscaleRequest(video.ID, false, err)
		} else {
			result.Succeeded++
			logger.LogUpscaleRequest(video.ID, true, nil)
		}

		if err := f.pacer.Wait(ctx); err != nil {
			return result, errors.Wrap(errors.KindCancelled, "upscale cancelled", err)
		}
	}

	f.logger.InfoWithFields("upscale flow complete", map[string]interface{}{
		"requested": result.Requested,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
	return result, nil
}
