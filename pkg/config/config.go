package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Folder structure modes for organized downloads.
const (
	FolderStructureDate   = "date"
	FolderStructurePrompt = "prompt"
	FolderStructureFlat   = "flat"
)

// Date formats accepted for date-based folders.
const (
	DateFormatDash  = "yyyy-mm-dd"
	DateFormatSlash = "yyyy/mm/dd"
)

// Config holds all configuration for the favorites manager.
type Config struct {
	Scan         ScanConfig         `yaml:"scan" json:"scan"`
	Organization OrganizationConfig `yaml:"organization" json:"organization"`
	Download     DownloadConfig     `yaml:"download" json:"download"`
	Upscale      UpscaleConfig      `yaml:"upscale" json:"upscale"`
	Storage      StorageConfig      `yaml:"storage" json:"storage"`
	Logging      LoggingConfig      `yaml:"logging" json:"logging"`
}

// ScanConfig controls feed traversal.
type ScanConfig struct {
	// Mode selects which media types to collect: saveImages, saveVideos, saveBoth.
	Mode string `yaml:"mode" json:"mode"`
	// MaxStalls is how many consecutive load-more attempts may yield no new
	// items before the scan terminates.
	MaxStalls int `yaml:"max_stalls" json:"max_stalls"`
	// LoadMoreDelay paces consecutive load-more calls.
	LoadMoreDelay time.Duration `yaml:"load_more_delay" json:"load_more_delay"`
	// RemoveDelay is the flat pacing between sequential removal actions
	// during an unsave sweep.
	RemoveDelay time.Duration `yaml:"remove_delay" json:"remove_delay"`
}

// OrganizationConfig mirrors the user's download organization preferences.
type OrganizationConfig struct {
	FolderStructure  string `yaml:"folder_structure" json:"folder_structure"`
	FilenameTemplate string `yaml:"filename_template" json:"filename_template"`
	DateFormat       string `yaml:"date_format" json:"date_format"`
	IncludeMetadata  bool   `yaml:"include_metadata" json:"include_metadata"`
}

// DownloadConfig holds settings for the download dispatcher.
type DownloadConfig struct {
	BaseDirectory     string        `yaml:"base_directory" json:"base_directory"`
	ParallelDownloads int           `yaml:"parallel_downloads" json:"parallel_downloads"`
	RetryFailed       bool          `yaml:"retry_failed" json:"retry_failed"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// UpscaleConfig holds settings for the upscale request flow.
type UpscaleConfig struct {
	// Pacing is the flat delay between sequential upscale requests. It is a
	// rate limiter, not a retry backoff.
	Pacing time.Duration `yaml:"pacing" json:"pacing"`
}

// StorageConfig locates the metadata key-value store.
type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with the stock defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Mode:          "saveBoth",
			MaxStalls:     3,
			LoadMoreDelay: 750 * time.Millisecond,
			RemoveDelay:   500 * time.Millisecond,
		},
		Organization: OrganizationConfig{
			FolderStructure:  FolderStructureDate,
			FilenameTemplate: "{id}.{ext}",
			DateFormat:       DateFormatDash,
			IncludeMetadata:  true,
		},
		Download: DownloadConfig{
			BaseDirectory:     "./downloads",
			ParallelDownloads: 1,
			RetryFailed:       true,
			MaxRetries:        3,
			Timeout:           30 * time.Second,
		},
		Upscale: UpscaleConfig{
			Pacing: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv applies GROKFAVES_* environment overrides. A .env file in the
// working directory is honored when present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if mode := os.Getenv("GROKFAVES_SCAN_MODE"); mode != "" {
		c.Scan.Mode = mode
	}
	if stalls := os.Getenv("GROKFAVES_MAX_STALLS"); stalls != "" {
		if val, err := strconv.Atoi(stalls); err == nil && val > 0 {
			c.Scan.MaxStalls = val
		}
	}
	if structure := os.Getenv("GROKFAVES_FOLDER_STRUCTURE"); structure != "" {
		c.Organization.FolderStructure = structure
	}
	if template := os.Getenv("GROKFAVES_FILENAME_TEMPLATE"); template != "" {
		c.Organization.FilenameTemplate = template
	}
	if format := os.Getenv("GROKFAVES_DATE_FORMAT"); format != "" {
		c.Organization.DateFormat = format
	}
	if dir := os.Getenv("GROKFAVES_DOWNLOAD_DIR"); dir != "" {
		c.Download.BaseDirectory = dir
	}
	if path := os.Getenv("GROKFAVES_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}
	if level := os.Getenv("GROKFAVES_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// LoadFromFile merges configuration from a YAML file. An empty path falls
// back to the default locations; a missing default file is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// findConfigFile checks the default config locations.
func (c *Config) findConfigFile() string {
	candidates := []string{
		"grokfaves.yaml",
		".grokfaves.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "grokfaves", "config.yaml"),
			filepath.Join(home, ".grokfaves.yaml"),
		)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks enum fields and rejects templates that can resolve empty.
func (c *Config) Validate() error {
	switch c.Scan.Mode {
	case "saveImages", "saveVideos", "saveBoth":
	default:
		return fmt.Errorf("invalid scan mode: %q", c.Scan.Mode)
	}
	if c.Scan.MaxStalls <= 0 {
		return fmt.Errorf("max_stalls must be positive, got %d", c.Scan.MaxStalls)
	}
	switch c.Organization.FolderStructure {
	case FolderStructureDate, FolderStructurePrompt, FolderStructureFlat:
	default:
		return fmt.Errorf("invalid folder structure: %q", c.Organization.FolderStructure)
	}
	switch c.Organization.DateFormat {
	case DateFormatDash, DateFormatSlash:
	default:
		return fmt.Errorf("invalid date format: %q", c.Organization.DateFormat)
	}
	if strings.TrimSpace(c.Organization.FilenameTemplate) == "" {
		return fmt.Errorf("filename template must not be empty")
	}
	if c.Download.ParallelDownloads != 1 {
		return fmt.Errorf("parallel_downloads is fixed at 1, got %d", c.Download.ParallelDownloads)
	}
	if c.Download.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.Download.MaxRetries)
	}
	if c.Scan.LoadMoreDelay < 0 || c.Scan.RemoveDelay < 0 {
		return fmt.Errorf("scan delays must not be negative")
	}
	if c.Upscale.Pacing < 0 {
		return fmt.Errorf("upscale pacing must not be negative, got %s", c.Upscale.Pacing)
	}
	return nil
}

// Load builds the effective configuration: defaults, then file, then env.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
