// Package metadata records scan batches and their items for later search
// and export. It is the sole owner of persisted batch records and is
// expressed entirely over the key-value blob store.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"grokfaves/pkg/kv"
	"grokfaves/pkg/logger"
	"grokfaves/pkg/models"
)

const (
	// indexKey holds the ordered list of retained batch records.
	indexKey = "download_batches"
	// payloadPrefix keys the per-batch item payloads.
	payloadPrefix = "metadata_"
	// maxBatches bounds retention: the oldest index entry is shifted out
	// once the cap is reached. Its payload becomes an orphan until the next
	// prune garbage-collects it.
	maxBatches = 100
)

// Store persists batches through a kv.Store.
type Store struct {
	kv  kv.Store
	log logger.Logger
}

// NewStore creates a metadata store over the given key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{
		kv:  backend,
		log: logger.GetLogger(),
	}
}

// GenerateBatchID returns a unique batch token.
func GenerateBatchID() string {
	fragment := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("batch_%d_%s", time.Now().UnixMilli(), fragment)
}

// RecordBatch appends a pending batch to the index and writes its item
// payload. Retention is capped at the last 100 batches.
func (s *Store) RecordBatch(ctx context.Context, batchID string, items []models.BatchItem) error {
	batches, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}

	batches = append(batches, models.Batch{
		BatchID:   batchID,
		CreatedAt: time.Now(),
		ItemCount: len(items),
		Status:    models.BatchStatusPending,
	})
	if len(batches) > maxBatches {
		batches = batches[len(batches)-maxBatches:]
	}

	indexData, err := json.Marshal(batches)
	if err != nil {
		return fmt.Errorf("failed to encode batch index: %w", err)
	}
	payloadData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode batch payload: %w", err)
	}

	if err := s.kv.Set(ctx, map[string][]byte{
		indexKey:                indexData,
		payloadPrefix + batchID: payloadData,
	}); err != nil {
		return fmt.Errorf("failed to record batch: %w", err)
	}

	s.log.InfoWithFields("batch recorded", map[string]interface{}{
		"batch_id":   batchID,
		"item_count": len(items),
	})
	return nil
}

// UpdateStatus transitions a batch from pending to complete or failed. The
// transition happens exactly once; any other move is rejected. Only the
// download orchestrator calls this, never the scanner.
func (s *Store) UpdateStatus(ctx context.Context, batchID string, status models.BatchStatus) error {
	if status != models.BatchStatusComplete && status != models.BatchStatusFailed {
		return fmt.Errorf("invalid target status %q: batches only move to complete or failed", status)
	}

	batches, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range batches {
		if batches[i].BatchID != batchID {
			continue
		}
		if batches[i].Status != models.BatchStatusPending {
			return fmt.Errorf("batch %s already settled as %s", batchID, batches[i].Status)
		}
		batches[i].Status = status
		batches[i].UpdatedAt = time.Now()
		found = true
		break
	}
	if !found {
		return fmt.Errorf("batch not found: %s", batchID)
	}

	return s.saveIndex(ctx, batches)
}

// Batches returns every retained batch record, oldest first.
func (s *Store) Batches(ctx context.Context) ([]models.Batch, error) {
	return s.loadIndex(ctx)
}

// BatchItems returns the item payload for one batch, or nil when the
// payload is gone.
func (s *Store) BatchItems(ctx context.Context, batchID string) ([]models.BatchItem, error) {
	key := payloadPrefix + batchID
	values, err := s.kv.Get(ctx, []string{key})
	if err != nil {
		return nil, fmt.Errorf("failed to load batch payload: %w", err)
	}
	raw, ok := values[key]
	if !ok {
		return nil, nil
	}

	var items []models.BatchItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode batch payload: %w", err)
	}
	return items, nil
}

// Search filters every retained batch by the criteria: case-insensitive
// prompt substring, exact type, inclusive date bounds. Results are grouped
// by originating batch; batches with zero matching items are omitted.
// Stored records are never mutated.
func (s *Store) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.BatchResult, error) {
	batches, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	var results []models.BatchResult
	for _, batch := range batches {
		items, err := s.BatchItems(ctx, batch.BatchID)
		if err != nil {
			return nil, err
		}

		var matched []models.BatchItem
		for _, item := range items {
			if criteria.Matches(item) {
				matched = append(matched, item)
			}
		}
		if len(matched) == 0 {
			continue
		}
		results = append(results, models.BatchResult{
			BatchID: batch.BatchID,
			Items:   matched,
		})
	}
	return results, nil
}

// PruneOlderThan drops batch records older than the cutoff and
// garbage-collects every payload no longer referenced by a retained batch,
// including orphans left behind by retention shifts. The whole prune is a
// single read-modify-write: one Set call applies the new index and all
// deletions together.
func (s *Store) PruneOlderThan(ctx context.Context, days int) (int, error) {
	batches, err := s.loadIndex(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	retained := make([]models.Batch, 0, len(batches))
	kept := make(map[string]bool)
	for _, batch := range batches {
		if batch.CreatedAt.Before(cutoff) {
			continue
		}
		retained = append(retained, batch)
		kept[batch.BatchID] = true
	}
	removed := len(batches) - len(retained)

	payloadKeys, err := s.kv.List(ctx, payloadPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list batch payloads: %w", err)
	}

	indexData, err := json.Marshal(retained)
	if err != nil {
		return 0, fmt.Errorf("failed to encode batch index: %w", err)
	}

	entries := map[string][]byte{indexKey: indexData}
	for _, key := range payloadKeys {
		batchID := strings.TrimPrefix(key, payloadPrefix)
		if !kept[batchID] {
			entries[key] = nil
		}
	}

	if err := s.kv.Set(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to prune metadata: %w", err)
	}

	s.log.InfoWithFields("metadata pruned", map[string]interface{}{
		"removed_batches": removed,
		"retained":        len(retained),
	})
	return removed, nil
}

func (s *Store) loadIndex(ctx context.Context) ([]models.Batch, error) {
	values, err := s.kv.Get(ctx, []string{indexKey})
	if err != nil {
		return nil, fmt.Errorf("failed to load batch index: %w", err)
	}
	raw, ok := values[indexKey]
	if !ok {
		return nil, nil
	}

	var batches []models.Batch
	if err := json.Unmarshal(raw, &batches); err != nil {
		return nil, fmt.Errorf("failed to decode batch index: %w", err)
	}
	return batches, nil
}

func (s *Store) saveIndex(ctx context.Context, batches []models.Batch) error {
	data, err := json.Marshal(batches)
	if err != nil {
		return fmt.Errorf("failed to encode batch index: %w", err)
	}
	if err := s.kv.Set(ctx, map[string][]byte{indexKey: data}); err != nil {
		return fmt.Errorf("failed to save batch index: %w", err)
	}
	return nil
}
