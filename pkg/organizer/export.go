package organizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grokfaves/pkg/models"
)

// Manifest describes one export of organized items, suitable for handing to
// the download orchestrator or archiving next to the files.
type Manifest struct {
	ExportDate       time.Time      `json:"export_date"`
	TotalItems       int            `json:"total_items"`
	FolderStructure  string         `json:"folder_structure"`
	FilenameTemplate string         `json:"filename_template"`
	Items            []ManifestItem `json:"items"`
}

// ManifestItem is one item's identity plus its derived destination fields.
type ManifestItem struct {
	ID       string           `json:"id"`
	URL      string           `json:"url"`
	Filename string           `json:"filename"`
	Date     time.Time        `json:"date"`
	Prompt   string           `json:"prompt,omitempty"`
	Type     models.MediaType `json:"type"`
}

// BuildManifest derives filenames and types for every item. Identity fields
// are copied, never mutated.
func BuildManifest(items []models.MediaItem, prefs Preferences) Manifest {
	manifest := Manifest{
		ExportDate:       time.Now(),
		TotalItems:       len(items),
		FolderStructure:  prefs.FolderStructure,
		FilenameTemplate: prefs.FilenameTemplate,
		Items:            make([]ManifestItem, 0, len(items)),
	}
	for _, item := range items {
		date := item.Date
		if date.IsZero() {
			date = time.Now()
		}
		manifest.Items = append(manifest.Items, ManifestItem{
			ID:       item.ID,
			URL:      item.URL,
			Filename: Filename(item, prefs.FilenameTemplate),
			Date:     date,
			Prompt:   item.Prompt,
			Type:     item.Type,
		})
	}
	return manifest
}

// ExportJSON renders the manifest as pretty-printed UTF-8 JSON.
func ExportJSON(items []models.MediaItem, prefs Preferences) ([]byte, error) {
	manifest := BuildManifest(items, prefs)
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// csvHeader is the fixed column order for manifest exports.
var csvHeader = []string{"ID", "Date", "Type", "Prompt", "Filename", "URL"}

// ExportCSV renders the manifest as comma-separated rows with the fixed
// header and double-quote-escaped prompt fields.
func ExportCSV(items []models.MediaItem, prefs Preferences) string {
	manifest := BuildManifest(items, prefs)

	rows := make([]string, 0, len(manifest.Items)+1)
	rows = append(rows, strings.Join(csvHeader, ","))
	for _, item := range manifest.Items {
		rows = append(rows, strings.Join([]string{
			item.ID,
			item.Date.Format(time.RFC3339),
			string(item.Type),
			quoteCSV(item.Prompt),
			item.Filename,
			item.URL,
		}, ","))
	}
	return strings.Join(rows, "\n")
}

// quoteCSV wraps a free-text field in double quotes, escaping embedded ones.
func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
