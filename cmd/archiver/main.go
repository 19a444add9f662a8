// Command archiver runs the Archive stage: move completed credit notes
// past the retention window out of the live blob store into cold storage
// (spec.md §4.8: completed (credit, retention elapsed) → archived).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/config"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/logging"
	"github.com/DusanPaal/claim-management/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	configPath string
	orderStr   string
)

var rootCmd = &cobra.Command{
	Use:   "archiver",
	Short: "Move completed credit notes past retention into the archive",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the application config file")
	rootCmd.PersistentFlags().StringVar(&orderStr, "order_str", "", "task identifier used for log routing")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("archiver: %w", err)
	}

	log, err := logging.New("archive", cfg.Logging.Verbose)
	if err != nil {
		return fmt.Errorf("archiver: %w", err)
	}
	defer log.Sync()
	log = log.With("order_str", orderStr)

	store, err := dedup.Open(cfg.Dedup.DSN)
	if err != nil {
		return fmt.Errorf("archiver: open dedup store: %w", err)
	}
	defer store.Close()

	blobs, err := impl_fs.New(cfg.Blobstore.Root)
	if err != nil {
		return fmt.Errorf("archiver: open blob store: %w", err)
	}

	cancel := pipeline.NewCancelWatcher(filepath.Join(cfg.Control.Dir, "archive.cancel"), log)
	ctx := cmd.Context()
	cancel.Start(ctx)

	run := pipeline.NewRun(pipeline.StageArchive, store, cancel, log)
	a := &pipeline.Archiver{Store: store, Blobstore: blobs, Retention: cfg.Archive.Retention, Run: run}

	return a.ProcessAll(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
