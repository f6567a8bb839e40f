// Package downloader is the in-process download orchestrator: it takes a
// scanned item list, computes organized destinations, and transfers the
// files one at a time.
package downloader

import (
	"bytes"
	"context"

	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/logger"
	"grokfaves/pkg/metadata"
	"grokfaves/pkg/models"
	"grokfaves/pkg/organizer"
	"grokfaves/pkg/retry"
	"grokfaves/pkg/storage"
)

// Fetcher retrieves a media resource body.
type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Result summarizes one dispatched batch.
type Result struct {
	Downloaded int
	Failed     int
	Skipped    int
}

// Dispatcher transfers media sequentially. Per-item failures are logged and
// counted, never aborting the batch; batch status is settled exactly once
// at the end.
type Dispatcher struct {
	fetcher  Fetcher
	storage  *storage.Manager
	meta     *metadata.Store
	prefs    organizer.Preferences
	retryCfg *retry.Config
	logger   logger.Logger
}

// New creates a dispatcher.
func New(fetcher Fetcher, store *storage.Manager, meta *metadata.Store, cfg *config.Config) *Dispatcher {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Download.MaxRetries
	if !cfg.Download.RetryFailed {
		retryCfg.MaxAttempts = 1
	}

	return &Dispatcher{
		fetcher:  fetcher,
		storage:  store,
		meta:     meta,
		prefs:    organizer.PreferencesFromConfig(cfg.Organization),
		retryCfg: retryCfg,
		logger:   logger.GetLogger(),
	}
}

// Run downloads every item to its organized path and settles the batch
// status: complete when anything was transferred or skipped, failed when
// every item failed. Cancellation surfaces as Cancelled and leaves the
// batch pending for a later retry.
func (d *Dispatcher) Run(ctx context.Context, batchID string, items []models.MediaItem) (Result, error) {
	var result Result

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(errors.KindCancelled, "download cancelled", err)
		}

		relPath := organizer.OrganizedPath(item, d.prefs)
		if d.storage.Exists(relPath) {
			result.Skipped++
			d.logger.DebugWithFields("destination exists, skipping", map[string]interface{}{
				"item_id": item.ID,
				"path":    relPath,
			})
			continue
		}

		err := retry.Do(ctx, d.retryCfg, func() error {
			data, err := d.fetcher.Download(ctx, item.URL)
			if err != nil {
				return err
			}
			return d.storage.Save(bytes.NewReader(data), relPath)
		})
		if err != nil {
			result.Failed++
			d.logger.WithError(err).WithFields(map[string]interface{}{
				"item_id": item.ID,
				"url":     item.URL,
			}).Warn("download failed")
			continue
		}

		result.Downloaded++
		d.logger.DebugWithFields("download complete", map[string]interface{}{
			"item_id": item.ID,
			"path":    relPath,
		})
	}

	status := models.BatchStatusComplete
	if result.Downloaded == 0 && result.Skipped == 0 && result.Failed > 0 {
		status = models.BatchStatusFailed
	}
	if err := d.meta.UpdateStatus(ctx, batchID, status); err != nil {
		d.logger.WithError(err).Warn("failed to settle batch status")
	}

	d.logger.InfoWithFields("batch dispatched", map[string]interface{}{
		"batch_id":   batchID,
		"downloaded": result.Downloaded,
		"failed":     result.Failed,
		"skipped":    result.Skipped,
	})
	return result, nil
}
