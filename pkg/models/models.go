package models

import (
	"strings"
	"time"
)

// MediaType is the classified kind of a media item.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// ScanMode controls which item types a scan collects.
type ScanMode string

const (
	ScanModeImages ScanMode = "saveImages"
	ScanModeVideos ScanMode = "saveVideos"
	ScanModeBoth   ScanMode = "saveBoth"
)

// ParseScanMode converts a user-supplied mode string into a ScanMode.
func ParseScanMode(s string) (ScanMode, bool) {
	switch ScanMode(s) {
	case ScanModeImages, ScanModeVideos, ScanModeBoth:
		return ScanMode(s), true
	}
	// Accept the short CLI spellings too
	switch strings.ToLower(s) {
	case "images":
		return ScanModeImages, true
	case "videos":
		return ScanModeVideos, true
	case "both", "":
		return ScanModeBoth, true
	}
	return "", false
}

// Wants reports whether a scan in this mode collects the given type.
func (m ScanMode) Wants(t MediaType) bool {
	switch m {
	case ScanModeImages:
		return t == MediaTypeImage
	case ScanModeVideos:
		return t == MediaTypeVideo
	default:
		return true
	}
}

// MediaItem is a single discovered media resource. Items are immutable once
// produced by the scanner; downstream stages derive filenames and tags
// without touching the identity fields.
type MediaItem struct {
	// ID is the stable page-assigned identifier. It may be empty when the
	// host markup didn't expose one; identifier-dependent flows must filter
	// such items out themselves.
	ID string `json:"id"`

	// URL is the absolute resource URL. Never empty.
	URL string `json:"url"`

	// Type is derived from the URL suffix heuristic, not content inspection.
	Type MediaType `json:"type"`

	// Date is when the item was created on the host, or the discovery time
	// when the page didn't expose a timestamp.
	Date time.Time `json:"date,omitempty"`

	// Prompt is the free-text generation prompt, possibly empty.
	Prompt string `json:"prompt,omitempty"`
}

// BatchStatus is the lifecycle state of a recorded batch.
type BatchStatus string

const (
	BatchStatusPending  BatchStatus = "pending"
	BatchStatusComplete BatchStatus = "complete"
	BatchStatusFailed   BatchStatus = "failed"
)

// ParseBatchStatus validates a user-supplied status string.
func ParseBatchStatus(s string) (BatchStatus, bool) {
	switch BatchStatus(s) {
	case BatchStatusPending, BatchStatusComplete, BatchStatusFailed:
		return BatchStatus(s), true
	}
	return "", false
}

// Batch is the index record of one scan/download session. The item payload
// is stored separately, keyed by BatchID.
type Batch struct {
	BatchID   string      `json:"batch_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
	ItemCount int         `json:"item_count"`
	Status    BatchStatus `json:"status"`
}

// BatchItem is a MediaItem enriched with the filename computed at record
// time. The embedded identity fields are copied verbatim from the scan.
type BatchItem struct {
	MediaItem
	Filename string `json:"filename"`
}

// SearchCriteria filters retained batches. Zero values mean "no constraint".
type SearchCriteria struct {
	Prompt   string    // case-insensitive substring match
	Type     MediaType // exact match
	DateFrom time.Time // inclusive lower bound
	DateTo   time.Time // inclusive upper bound
}

// Matches reports whether an item satisfies every set criterion.
func (c SearchCriteria) Matches(item BatchItem) bool {
	if c.Prompt != "" && !strings.Contains(strings.ToLower(item.Prompt), strings.ToLower(c.Prompt)) {
		return false
	}
	if c.Type != "" && item.Type != c.Type {
		return false
	}
	if !c.DateFrom.IsZero() && item.Date.Before(c.DateFrom) {
		return false
	}
	if !c.DateTo.IsZero() && item.Date.After(c.DateTo) {
		return false
	}
	return true
}

// BatchResult groups matching items under their originating batch.
type BatchResult struct {
	BatchID string      `json:"batch_id"`
	Items   []BatchItem `json:"items"`
}
