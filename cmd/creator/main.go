// Command creator runs the Create stage: compile each extracted document
// into a Claim Context and reconcile it against the ERP (spec.md §4.8:
// extracted → completed | duplicate | processing_error |
// claim_case_unmatched).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DusanPaal/claim-management/internal/accountmap"
	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/config"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/erp"
	"github.com/DusanPaal/claim-management/internal/erp/impl_mock"
	"github.com/DusanPaal/claim-management/internal/logging"
	"github.com/DusanPaal/claim-management/internal/pipeline"
	"github.com/DusanPaal/claim-management/internal/rules"
	"github.com/spf13/cobra"
)

var (
	configPath string
	orderStr   string
)

var rootCmd = &cobra.Command{
	Use:   "creator",
	Short: "Compile extracted claims and reconcile them against the ERP",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the application config file")
	rootCmd.PersistentFlags().StringVar(&orderStr, "order_str", "", "task identifier used for log routing")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("creator: %w", err)
	}

	log, err := logging.New("create", cfg.Logging.Verbose)
	if err != nil {
		return fmt.Errorf("creator: %w", err)
	}
	defer log.Sync()
	log = log.With("order_str", orderStr)

	store, err := dedup.Open(cfg.Dedup.DSN)
	if err != nil {
		return fmt.Errorf("creator: open dedup store: %w", err)
	}
	defer store.Close()

	blobs, err := impl_fs.New(cfg.Blobstore.Root)
	if err != nil {
		return fmt.Errorf("creator: open blob store: %w", err)
	}

	ruleReg := rules.NewRegistry()
	if err := ruleReg.Load(cfg.Rules.Dir); err != nil {
		return fmt.Errorf("creator: load processing rules: %w", err)
	}

	accountMaps, err := accountmap.LoadDir(cfg.AccountMaps.Dir)
	if err != nil {
		return fmt.Errorf("creator: load account maps: %w", err)
	}

	// No real RFC/BAPI connection is wired yet (SPEC_FULL.md §1); the
	// creator runs against the in-memory ERP stand-in until one exists.
	sess := erp.NewSession(impl_mock.NewMockClient(nil))

	cancel := pipeline.NewCancelWatcher(filepath.Join(cfg.Control.Dir, "create.cancel"), log)
	ctx := cmd.Context()
	cancel.Start(ctx)

	run := pipeline.NewRun(pipeline.StageCreate, store, cancel, log)
	c := &pipeline.Creator{
		Store:        store,
		Blobstore:    blobs,
		Rules:        ruleReg,
		AccountMaps:  accountMaps,
		Finder:       erp.NewAccountingDocsFinder(ctx, sess),
		Session:      sess,
		DuplicatesBy: erp.DuplicatesFirst,
		Run:          run,
	}

	return c.ProcessAll(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
