package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"grokfaves/pkg/metadata"
	"grokfaves/pkg/models"
)

var (
	searchPrompt string
	searchType   string
	searchFrom   string
	searchTo     string
	searchFormat string
	pruneDays    int
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Inspect, search, export and prune recorded batches",
}

var batchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retained batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMetadataStore()
		if err != nil {
			return err
		}
		batches, err := store.Batches(cmd.Context())
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println("No batches recorded.")
			return nil
		}
		for _, batch := range batches {
			fmt.Printf("%s  %s  %4d items  %s\n",
				batch.BatchID,
				batch.CreatedAt.Format("2006-01-02 15:04"),
				batch.ItemCount,
				batch.Status)
		}
		return nil
	},
}

var batchesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search items across all retained batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria := models.SearchCriteria{Prompt: searchPrompt}
		if searchType != "" {
			switch models.MediaType(searchType) {
			case models.MediaTypeImage, models.MediaTypeVideo:
				criteria.Type = models.MediaType(searchType)
			default:
				return fmt.Errorf("invalid type: %q", searchType)
			}
		}
		var err error
		if criteria.DateFrom, err = parseDateFlag(searchFrom); err != nil {
			return err
		}
		if criteria.DateTo, err = parseDateFlag(searchTo); err != nil {
			return err
		}

		store, err := openMetadataStore()
		if err != nil {
			return err
		}
		results, err := store.Search(cmd.Context(), criteria)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching items.")
			return nil
		}

		switch searchFormat {
		case "csv":
			fmt.Println(metadata.ExportSearchCSV(results))
		case "json":
			data, err := metadata.ExportSearchJSON(results)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		default:
			for _, result := range results {
				fmt.Printf("%s (%d items)\n", result.BatchID, len(result.Items))
				for _, item := range result.Items {
					fmt.Printf("  %-12s %-5s %s\n", item.ID, item.Type, item.Filename)
				}
			}
		}
		return nil
	},
}

var batchesExportCmd = &cobra.Command{
	Use:   "export <batch-id>",
	Short: "Export one batch as pretty-printed JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMetadataStore()
		if err != nil {
			return err
		}
		data, err := store.ExportBatchJSON(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var batchesStatusCmd = &cobra.Command{
	Use:   "status <batch-id> <complete|failed>",
	Short: "Settle a pending batch's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, ok := models.ParseBatchStatus(args[1])
		if !ok {
			return fmt.Errorf("invalid status: %q", args[1])
		}
		store, err := openMetadataStore()
		if err != nil {
			return err
		}
		if err := store.UpdateStatus(cmd.Context(), args[0], status); err != nil {
			return err
		}
		fmt.Printf("Batch %s marked %s.\n", args[0], status)
		return nil
	},
}

var batchesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old batches and orphaned item payloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMetadataStore()
		if err != nil {
			return err
		}
		removed, err := store.PruneOlderThan(cmd.Context(), pruneDays)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d batches older than %d days.\n", removed, pruneDays)
		return nil
	},
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use yyyy-mm-dd", value)
	}
	return ts, nil
}

func init() {
	batchesSearchCmd.Flags().StringVar(&searchPrompt, "prompt", "", "prompt substring (case-insensitive)")
	batchesSearchCmd.Flags().StringVar(&searchType, "type", "", "media type: image or video")
	batchesSearchCmd.Flags().StringVar(&searchFrom, "from", "", "earliest date (yyyy-mm-dd, inclusive)")
	batchesSearchCmd.Flags().StringVar(&searchTo, "to", "", "latest date (yyyy-mm-dd, inclusive)")
	batchesSearchCmd.Flags().StringVar(&searchFormat, "format", "", "output format: json or csv")
	batchesPruneCmd.Flags().IntVar(&pruneDays, "days", 30, "remove batches older than this many days")

	batchesCmd.AddCommand(batchesListCmd, batchesSearchCmd, batchesExportCmd, batchesStatusCmd, batchesPruneCmd)
	rootCmd.AddCommand(batchesCmd)
}
