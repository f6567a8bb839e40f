package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grokfaves/pkg/errors"
	"grokfaves/pkg/models"
	"grokfaves/pkg/scanner"
	"grokfaves/pkg/upscale"
)

var upscaleCmd = &cobra.Command{
	Use:   "upscale",
	Short: "Request upscales for every favorited video",
	Long: `Upscale scans the feed for videos and asks the host to upscale each
one, pacing the requests with a flat delay. Videos without a
page-assigned ID can't be addressed and are skipped.`,
	RunE: runUpscale,
}

func init() {
	rootCmd.AddCommand(upscaleCmd)
}

func runUpscale(cmd *cobra.Command, args []string) error {
	if err := appSess.Acquire("upscale"); err != nil {
		return err
	}
	defer appSess.Release()

	ctx, cancel := operationContext()
	defer cancel()

	client, err := buildClient(cfg.Download.Timeout)
	if err != nil {
		return err
	}

	feed, err := buildFeed()
	if err != nil {
		return err
	}

	items, err := scanner.New(feed, cfg).Scan(ctx, models.ScanModeVideos)
	if err != nil {
		if errors.IsNotFound(err) {
			return fmt.Errorf("no videos found to upscale")
		}
		return err
	}

	result, err := upscale.NewFlow(client, cfg).Run(ctx, items)
	if err != nil {
		if errors.IsNotFound(err) {
			return fmt.Errorf("no videos found to upscale")
		}
		return err
	}

	fmt.Printf("Finished! Requested upscale for %d videos", result.Succeeded)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println(".")
	return nil
}
