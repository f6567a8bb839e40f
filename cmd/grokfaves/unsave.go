package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grokfaves/pkg/scanner"
)

var unsaveYes bool

var unsaveCmd = &cobra.Command{
	Use:   "unsave",
	Short: "Remove every favorite from the current list",
	Long: `Unsave sweeps the favorites feed and removes every item, one at a
time, re-reading the live list after each removal. Individual failures
are logged and skipped; the sweep reports how many items it removed.`,
	RunE: runUnsave,
}

func init() {
	unsaveCmd.Flags().BoolVarP(&unsaveYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(unsaveCmd)
}

func runUnsave(cmd *cobra.Command, args []string) error {
	if !unsaveYes {
		fmt.Print("WARNING: this removes ALL favorites from the current list. Continue? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := appSess.Acquire("unsave"); err != nil {
		return err
	}
	defer appSess.Release()

	ctx, cancel := operationContext()
	defer cancel()

	feed, err := buildFeed()
	if err != nil {
		return err
	}

	count, err := scanner.New(feed, cfg).UnsaveAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Finished! %d items were removed.\n", count)
	return nil
}
