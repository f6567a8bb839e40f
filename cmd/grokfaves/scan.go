package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grokfaves/internal/downloader"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/metadata"
	"grokfaves/pkg/models"
	"grokfaves/pkg/organizer"
	"grokfaves/pkg/scanner"
	"grokfaves/pkg/storage"
)

var (
	scanMode     string
	scanExport   string
	scanOut      string
	scanDownload bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Collect favorited media and record a batch",
	Long: `Scan walks the favorites feed, triggering lazy loading until no new
items appear, classifies and deduplicates what it finds, and records the
result as a pending batch. Optionally exports a manifest or hands the
batch straight to the downloader.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanMode, "mode", "m", "", "what to collect: images, videos or both (default from config)")
	scanCmd.Flags().StringVar(&scanExport, "export", "", "write a manifest in this format: json or csv")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "manifest output file (default stdout)")
	scanCmd.Flags().BoolVar(&scanDownload, "download", false, "download the batch after scanning")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanMode == "" {
		scanMode = cfg.Scan.Mode
	}
	mode, ok := models.ParseScanMode(scanMode)
	if !ok {
		return fmt.Errorf("invalid scan mode: %q", scanMode)
	}

	if err := appSess.Acquire("scan"); err != nil {
		return err
	}
	defer appSess.Release()

	ctx, cancel := operationContext()
	defer cancel()

	feed, err := buildFeed()
	if err != nil {
		return err
	}

	items, err := scanner.New(feed, cfg).Scan(ctx, mode)
	if err != nil {
		if errors.IsNotFound(err) {
			return fmt.Errorf("no media found")
		}
		return err
	}
	fmt.Printf("Found %d items.\n", len(items))

	prefs := organizer.PreferencesFromConfig(cfg.Organization)

	store, err := openMetadataStore()
	if err != nil {
		return err
	}
	batchID := metadata.GenerateBatchID()
	batchItems := make([]models.BatchItem, 0, len(items))
	for _, item := range items {
		batchItems = append(batchItems, models.BatchItem{
			MediaItem: item,
			Filename:  organizer.Filename(item, prefs.FilenameTemplate),
		})
	}
	if err := store.RecordBatch(ctx, batchID, batchItems); err != nil {
		return err
	}
	fmt.Printf("Recorded batch %s.\n", batchID)

	if scanExport != "" {
		if err := exportManifest(items, prefs); err != nil {
			return err
		}
	}

	if scanDownload {
		return downloadBatch(ctx, store, batchID, items)
	}
	return nil
}

func exportManifest(items []models.MediaItem, prefs organizer.Preferences) error {
	var data []byte
	switch scanExport {
	case "json":
		encoded, err := organizer.ExportJSON(items, prefs)
		if err != nil {
			return err
		}
		data = encoded
	case "csv":
		data = []byte(organizer.ExportCSV(items, prefs))
	default:
		return fmt.Errorf("invalid export format: %q", scanExport)
	}

	if scanOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(scanOut, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	fmt.Printf("Manifest written to %s.\n", scanOut)
	return nil
}

func downloadBatch(ctx context.Context, store *metadata.Store, batchID string, items []models.MediaItem) error {
	client, err := buildClient(cfg.Download.Timeout)
	if err != nil {
		return err
	}
	fileStore, err := storage.NewManager(cfg.Download.BaseDirectory)
	if err != nil {
		return err
	}

	result, err := downloader.New(client, fileStore, store, cfg).Run(ctx, batchID, items)
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded %d items (%d skipped, %d failed).\n",
		result.Downloaded, result.Skipped, result.Failed)
	return nil
}
