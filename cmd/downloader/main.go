// Command downloader runs the Download stage: walk the shared mailbox,
// register every PDF attachment as a Document Record, and resolve
// duplicates by content hash (spec.md §4.8: received → registered).
//
// Grounded on theRebelliousNerd-codenerd's cmd/nerd/main.go rootCmd
// structure (cobra root command, PersistentPreRunE building the logger,
// --verbose toggling debug level), narrowed to one flat command per stage
// since each stage binary does exactly one thing (spec.md §6 CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/config"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/logging"
	"github.com/DusanPaal/claim-management/internal/mailbox"
	"github.com/DusanPaal/claim-management/internal/mailbox/impl_mock"
	"github.com/DusanPaal/claim-management/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	configPath string
	orderStr   string
)

var rootCmd = &cobra.Command{
	Use:   "downloader",
	Short: "Walk the shared mailbox and register new claim attachments",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the application config file")
	rootCmd.PersistentFlags().StringVar(&orderStr, "order_str", "", "task identifier used for log routing")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("downloader: %w", err)
	}

	log, err := logging.New("download", cfg.Logging.Verbose)
	if err != nil {
		return fmt.Errorf("downloader: %w", err)
	}
	defer log.Sync()
	log = log.With("order_str", orderStr)

	store, err := dedup.Open(cfg.Dedup.DSN)
	if err != nil {
		return fmt.Errorf("downloader: open dedup store: %w", err)
	}
	defer store.Close()

	blobs, err := impl_fs.New(cfg.Blobstore.Root)
	if err != nil {
		return fmt.Errorf("downloader: open blob store: %w", err)
	}

	// No real EWS client is wired yet (SPEC_FULL.md §1); credentials are
	// still loaded to validate the deployment's config, but the mailbox
	// boundary runs against an in-memory stand-in until one exists.
	if _, err := mailbox.LoadCredentials(filepath.Join(filepath.Dir(configPath), "mailbox.credentials")); err != nil {
		log.Warnw("mailbox credentials not available, using the in-memory mailbox", "error", err)
	}
	mbox := impl_mock.NewMockClient(cfg.Mailbox.Identity, nil)

	cancel := pipeline.NewCancelWatcher(filepath.Join(cfg.Control.Dir, "download.cancel"), log)
	ctx := cmd.Context()
	cancel.Start(ctx)

	run := pipeline.NewRun(pipeline.StageDownload, store, cancel, log)
	downloader := &pipeline.Downloader{Store: store, Mailbox: mbox, Blobstore: blobs, Run: run}

	return downloader.Walk(ctx, mailbox.ListFilter{})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
