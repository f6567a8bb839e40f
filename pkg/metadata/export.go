package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grokfaves/pkg/models"
)

// BatchExport is the JSON shape of a single exported batch.
type BatchExport struct {
	Batch models.Batch       `json:"batch"`
	Items []models.BatchItem `json:"items"`
}

// ExportBatchJSON renders one batch and its items as pretty-printed UTF-8
// JSON. Re-parsing the output yields the same item count and id/url pairs.
func (s *Store) ExportBatchJSON(ctx context.Context, batchID string) ([]byte, error) {
	batches, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	var batch *models.Batch
	for i := range batches {
		if batches[i].BatchID == batchID {
			batch = &batches[i]
			break
		}
	}
	if batch == nil {
		return nil, fmt.Errorf("batch not found: %s", batchID)
	}

	items, err := s.BatchItems(ctx, batchID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(BatchExport{Batch: *batch, Items: items}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch export: %w", err)
	}
	return data, nil
}

// searchCSVHeader is the fixed column order for search result exports.
var searchCSVHeader = []string{"BatchID", "ID", "Date", "Type", "Prompt", "Filename", "URL"}

// ExportSearchCSV renders grouped search results as comma-separated rows
// with the fixed header and double-quote-escaped prompt fields.
func ExportSearchCSV(results []models.BatchResult) string {
	rows := make([]string, 0, len(results)+1)
	rows = append(rows, strings.Join(searchCSVHeader, ","))
	for _, result := range results {
		for _, item := range result.Items {
			rows = append(rows, strings.Join([]string{
				result.BatchID,
				item.ID,
				item.Date.Format(time.RFC3339),
				string(item.Type),
				quoteCSV(item.Prompt),
				item.Filename,
				item.URL,
			}, ","))
		}
	}
	return strings.Join(rows, "\n")
}

// ExportSearchJSON renders grouped search results as pretty-printed JSON.
func ExportSearchJSON(results []models.BatchResult) ([]byte, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode search results: %w", err)
	}
	return data, nil
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
