// Command dispatcher runs the Dispatch stage: annotate and file each
// terminal document's source message into its outcome subfolder (spec.md
// §4.8: completed | duplicate | processing_error | claim_case_unmatched →
// the matching mail_*_moved status).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DusanPaal/claim-management/internal/config"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/logging"
	"github.com/DusanPaal/claim-management/internal/mailbox/impl_mock"
	"github.com/DusanPaal/claim-management/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	configPath string
	orderStr   string
)

var rootCmd = &cobra.Command{
	Use:   "dispatcher",
	Short: "File processed claim messages into their outcome subfolders",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the application config file")
	rootCmd.PersistentFlags().StringVar(&orderStr, "order_str", "", "task identifier used for log routing")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}

	log, err := logging.New("dispatch", cfg.Logging.Verbose)
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	defer log.Sync()
	log = log.With("order_str", orderStr)

	store, err := dedup.Open(cfg.Dedup.DSN)
	if err != nil {
		return fmt.Errorf("dispatcher: open dedup store: %w", err)
	}
	defer store.Close()

	// No real EWS client is wired yet (SPEC_FULL.md §1); the dispatcher
	// runs against the in-memory mailbox stand-in until one exists.
	mbox := impl_mock.NewMockClient(cfg.Mailbox.Identity, nil)

	cancel := pipeline.NewCancelWatcher(filepath.Join(cfg.Control.Dir, "dispatch.cancel"), log)
	ctx := cmd.Context()
	cancel.Start(ctx)

	run := pipeline.NewRun(pipeline.StageDispatch, store, cancel, log)
	d := &pipeline.Dispatcher{Store: store, Mailbox: mbox, Run: run}

	return d.ProcessAll(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
