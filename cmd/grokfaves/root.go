package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"grokfaves/pkg/auth"
	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/gallery"
	"grokfaves/pkg/imagine"
	"grokfaves/pkg/kv"
	"grokfaves/pkg/logger"
	"grokfaves/pkg/metadata"
	"grokfaves/pkg/session"
)

var (
	version = "1.0.0"

	configFile  string
	logLevel    string
	snapshotDir string

	cfg     *config.Config
	appSess = session.New()
)

var rootCmd = &cobra.Command{
	Use:   "grokfaves",
	Short: "Scan, organize and manage your favorited gallery media",
	Long: `grokfaves walks a favorites gallery feed, collects the media items it
finds, and helps you batch-download them into organized folders, sweep
the favorites list clean, or request video upscales.

Feeds can be live (authenticated against the host) or local snapshots of
saved gallery pages.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := logger.Initialize(&cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.IsCancelled(err) {
			fmt.Fprintln(os.Stderr, "Operation cancelled.")
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshot", "", "scan saved gallery pages from this directory instead of the live feed")
}

// operationContext returns a context cancelled by Ctrl-C.
func operationContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildClient authenticates against the host.
func buildClient(timeout time.Duration) (*imagine.Client, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return nil, err
	}
	creds, err := manager.Retrieve()
	if err != nil {
		return nil, err
	}
	return imagine.NewClient(creds, timeout)
}

// buildFeed selects the snapshot feed when --snapshot is set, otherwise the
// live authenticated feed.
func buildFeed() (gallery.Feed, error) {
	if snapshotDir != "" {
		return gallery.NewSnapshotFeed(snapshotDir)
	}
	client, err := buildClient(cfg.Download.Timeout)
	if err != nil {
		return nil, err
	}
	return imagine.NewLiveFeed(client), nil
}

// openMetadataStore opens the configured key-value store.
func openMetadataStore() (*metadata.Store, error) {
	path := cfg.Storage.Path
	if path == "" {
		var err error
		path, err = kv.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	backend, err := kv.NewFile(path)
	if err != nil {
		return nil, err
	}
	return metadata.NewStore(backend), nil
}
