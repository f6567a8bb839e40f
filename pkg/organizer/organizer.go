// Package organizer computes organized download destinations for media
// items. Everything here is pure: same item and preferences in, same path
// out, no I/O.
package organizer

import (
	"regexp"
	"strings"
	"time"

	"grokfaves/pkg/classifier"
	"grokfaves/pkg/config"
	"grokfaves/pkg/models"
)

// RootFolder is the fixed top-level folder for every organized download.
const RootFolder = "grok-imagine"

// Fallback tokens used when a placeholder can't be resolved.
const (
	fallbackID     = "unknown"
	fallbackPrompt = "generated"
)

const (
	promptFilenameLimit = 30
	promptFolderLimit   = 50
)

var (
	dotRuns          = regexp.MustCompile(`\.+`)
	nonAlphanumeric  = regexp.MustCompile(`[^a-zA-Z0-9]`)
	promptDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	hyphenRuns       = regexp.MustCompile(`-+`)
	underscoreRuns   = regexp.MustCompile(`_+`)
	edgeUnderscores  = regexp.MustCompile(`^_+|_+$`)
)

// Preferences are the user's organization settings.
type Preferences struct {
	FolderStructure  string
	FilenameTemplate string
	DateFormat       string
	IncludeMetadata  bool
}

// PreferencesFromConfig lifts the organization section of the configuration.
func PreferencesFromConfig(cfg config.OrganizationConfig) Preferences {
	return Preferences{
		FolderStructure:  cfg.FolderStructure,
		FilenameTemplate: cfg.FilenameTemplate,
		DateFormat:       cfg.DateFormat,
		IncludeMetadata:  cfg.IncludeMetadata,
	}
}

// OrganizedPath computes the relative folder-plus-filename destination for
// an item under the given preferences.
func OrganizedPath(item models.MediaItem, prefs Preferences) string {
	filename := Filename(item, prefs.FilenameTemplate)

	folder := RootFolder
	switch prefs.FolderStructure {
	case config.FolderStructureDate:
		folder = RootFolder + "/" + formatDate(item.Date, prefs.DateFormat)
	case config.FolderStructurePrompt:
		folder = RootFolder + "/" + SanitizePrompt(item.Prompt)
	}

	return folder + "/" + filename
}

// Filename substitutes the template placeholders for an item. Substitution
// is single-pass: each of {id}, {ext}, {date} and {prompt} is replaced at
// its first occurrence only. A repeated placeholder keeps its later
// occurrences verbatim; downstream consumers rely on that exact behavior,
// so it must not be "fixed" to replace all.
func Filename(item models.MediaItem, template string) string {
	ext := extensionFor(item.URL)

	id := item.ID
	if id == "" {
		id = fallbackID
	}

	filename := strings.Replace(template, "{id}", id, 1)
	filename = strings.Replace(filename, "{ext}", ext, 1)
	filename = strings.Replace(filename, "{date}", formatDate(item.Date, config.DateFormatDash), 1)
	filename = strings.Replace(filename, "{prompt}", promptForFilename(item.Prompt), 1)

	// Templates like "{id}.{date}.{ext}" can leave doubled dots behind.
	return dotRuns.ReplaceAllString(filename, ".")
}

// extensionFor picks the extension by the same URL heuristic the classifier
// uses, keeping the two always consistent for a given item.
func extensionFor(url string) string {
	if classifier.TypeForURL(url) == models.MediaTypeVideo {
		return "mp4"
	}
	return "jpg"
}

// promptForFilename shortens the prompt for use inside a filename: first 30
// characters, case preserved, every non-alphanumeric replaced with an
// underscore. Absent prompts degrade to the fixed fallback token.
func promptForFilename(prompt string) string {
	if prompt == "" {
		return fallbackPrompt
	}
	runes := []rune(prompt)
	if len(runes) > promptFilenameLimit {
		runes = runes[:promptFilenameLimit]
	}
	return nonAlphanumeric.ReplaceAllString(string(runes), "_")
}

// SanitizePrompt reduces a prompt to a safe folder name: first 50
// characters, lowercased, stripped to [a-z0-9\s-], whitespace and hyphen
// runs collapsed to single underscores, edges trimmed. An empty result
// degrades to the fixed fallback token.
func SanitizePrompt(prompt string) string {
	if prompt == "" {
		return fallbackPrompt
	}

	runes := []rune(prompt)
	if len(runes) > promptFolderLimit {
		runes = runes[:promptFolderLimit]
	}

	s := strings.ToLower(string(runes))
	s = promptDisallowed.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "_")
	s = hyphenRuns.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = edgeUnderscores.ReplaceAllString(s, "")

	if s == "" {
		return fallbackPrompt
	}
	return s
}

// formatDate renders a date for folder names and the {date} placeholder.
// Zero dates fall back to the current day.
func formatDate(date time.Time, format string) string {
	if date.IsZero() {
		date = time.Now()
	}
	if format == config.DateFormatSlash {
		return date.Format("2006/01/02")
	}
	return date.Format("2006-01-02")
}

// FilterByDateRange keeps items whose date falls inside the inclusive
// bounds. Zero bounds are open.
func FilterByDateRange(items []models.MediaItem, from, to time.Time) []models.MediaItem {
	var out []models.MediaItem
	for _, item := range items {
		if !from.IsZero() && item.Date.Before(from) {
			continue
		}
		if !to.IsZero() && item.Date.After(to) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// GroupByDate buckets items under their dash-formatted day, for display.
func GroupByDate(items []models.MediaItem) map[string][]models.MediaItem {
	groups := make(map[string][]models.MediaItem)
	for _, item := range items {
		key := formatDate(item.Date, config.DateFormatDash)
		groups[key] = append(groups[key], item)
	}
	return groups
}
