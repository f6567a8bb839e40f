package downloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/kv"
	"grokfaves/pkg/metadata"
	"grokfaves/pkg/models"
	"grokfaves/pkg/storage"
)

type fakeFetcher struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return nil, errors.New(errors.KindNotFound, "resource gone")
	}
	return []byte("payload:" + url), nil
}

func testConfig(baseDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Download.BaseDirectory = baseDir
	cfg.Download.RetryFailed = false
	return cfg
}

func item(id string) models.MediaItem {
	return models.MediaItem{
		ID:   id,
		URL:  "https://assets.example.com/" + id + ".jpg",
		Type: models.MediaTypeImage,
		Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func newDispatcherTest(t *testing.T, fetcher *fakeFetcher) (*Dispatcher, *metadata.Store, *config.Config) {
	t.Helper()
	cfg := testConfig(t.TempDir())

	store, err := storage.NewManager(cfg.Download.BaseDirectory)
	require.NoError(t, err)
	meta := metadata.NewStore(kv.NewMemory())

	return New(fetcher, store, meta, cfg), meta, cfg
}

func recordPending(t *testing.T, meta *metadata.Store, batchID string, items []models.MediaItem) {
	t.Helper()
	batchItems := make([]models.BatchItem, 0, len(items))
	for _, it := range items {
		batchItems = append(batchItems, models.BatchItem{MediaItem: it, Filename: it.ID + ".jpg"})
	}
	require.NoError(t, meta.RecordBatch(context.Background(), batchID, batchItems))
}

func batchStatus(t *testing.T, meta *metadata.Store, batchID string) models.BatchStatus {
	t.Helper()
	batches, err := meta.Batches(context.Background())
	require.NoError(t, err)
	for _, batch := range batches {
		if batch.BatchID == batchID {
			return batch.Status
		}
	}
	t.Fatalf("batch %s not found", batchID)
	return ""
}

func TestRunDownloadsToOrganizedPaths(t *testing.T) {
	fetcher := &fakeFetcher{}
	d, meta, cfg := newDispatcherTest(t, fetcher)
	items := []models.MediaItem{item("a"), item("b")}
	recordPending(t, meta, "b1", items)

	result, err := d.Run(context.Background(), "b1", items)
	require.NoError(t, err)
	assert.Equal(t, Result{Downloaded: 2}, result)

	data, err := os.ReadFile(filepath.Join(cfg.Download.BaseDirectory, "grok-imagine", "2024-03-05", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "payload:https://assets.example.com/a.jpg", string(data))

	assert.Equal(t, models.BatchStatusComplete, batchStatus(t, meta, "b1"))
}

func TestRunSkipsExistingDestinations(t *testing.T) {
	fetcher := &fakeFetcher{}
	d, meta, cfg := newDispatcherTest(t, fetcher)
	items := []models.MediaItem{item("a")}
	recordPending(t, meta, "b1", items)

	dest := filepath.Join(cfg.Download.BaseDirectory, "grok-imagine", "2024-03-05")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.jpg"), []byte("already here"), 0644))

	result, err := d.Run(context.Background(), "b1", items)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, result)
	assert.Empty(t, fetcher.calls)
	assert.Equal(t, models.BatchStatusComplete, batchStatus(t, meta, "b1"))
}

func TestRunCountsFailuresWithoutAborting(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{
		"https://assets.example.com/b.jpg": true,
	}}
	d, meta, _ := newDispatcherTest(t, fetcher)
	items := []models.MediaItem{item("a"), item("b"), item("c")}
	recordPending(t, meta, "b1", items)

	result, err := d.Run(context.Background(), "b1", items)
	require.NoError(t, err)
	assert.Equal(t, Result{Downloaded: 2, Failed: 1}, result)
	// A partially successful batch still settles as complete.
	assert.Equal(t, models.BatchStatusComplete, batchStatus(t, meta, "b1"))
}

func TestRunAllFailedSettlesAsFailed(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{
		"https://assets.example.com/a.jpg": true,
		"https://assets.example.com/b.jpg": true,
	}}
	d, meta, _ := newDispatcherTest(t, fetcher)
	items := []models.MediaItem{item("a"), item("b")}
	recordPending(t, meta, "b1", items)

	result, err := d.Run(context.Background(), "b1", items)
	require.NoError(t, err)
	assert.Equal(t, Result{Failed: 2}, result)
	assert.Equal(t, models.BatchStatusFailed, batchStatus(t, meta, "b1"))
}

func TestRunCancellationLeavesBatchPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	d, meta, _ := newDispatcherTest(t, fetcher)
	items := []models.MediaItem{item("a")}
	recordPending(t, meta, "b1", items)

	result, err := d.Run(ctx, "b1", items)
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	assert.Equal(t, Result{}, result)
	assert.Empty(t, fetcher.calls)
	assert.Equal(t, models.BatchStatusPending, batchStatus(t, meta, "b1"))
}
