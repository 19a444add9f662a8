// Command extractor runs the Extract stage: OCR each registered PDF,
// match it against the template registry, categorize it, and persist the
// structured extraction (spec.md §4.8: registered → extracted |
// extraction_error).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DusanPaal/claim-management/internal/blobstore/impl_fs"
	"github.com/DusanPaal/claim-management/internal/categorizer"
	"github.com/DusanPaal/claim-management/internal/config"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/logging"
	"github.com/DusanPaal/claim-management/internal/ocr"
	"github.com/DusanPaal/claim-management/internal/pipeline"
	"github.com/DusanPaal/claim-management/internal/templates"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	orderStr       string
	forceReextract bool
)

var rootCmd = &cobra.Command{
	Use:   "extractor",
	Short: "OCR and extract structured data from registered claim documents",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the application config file")
	rootCmd.PersistentFlags().StringVar(&orderStr, "order_str", "", "task identifier used for log routing")
	rootCmd.Flags().BoolVar(&forceReextract, "force-reextract", false, "retry documents currently in extraction_error")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("extractor: %w", err)
	}

	log, err := logging.New("extract", cfg.Logging.Verbose)
	if err != nil {
		return fmt.Errorf("extractor: %w", err)
	}
	defer log.Sync()
	log = log.With("order_str", orderStr)

	store, err := dedup.Open(cfg.Dedup.DSN)
	if err != nil {
		return fmt.Errorf("extractor: open dedup store: %w", err)
	}
	defer store.Close()

	blobs, err := impl_fs.New(cfg.Blobstore.Root)
	if err != nil {
		return fmt.Errorf("extractor: open blob store: %w", err)
	}

	reg := templates.NewRegistry()
	if err := reg.Load(cfg.Templates.Dir); err != nil {
		return fmt.Errorf("extractor: load templates: %w", err)
	}

	ocrClient := ocr.NewHTTPClient(cfg.OCR.BaseURL, cfg.OCR.AccessToken)

	cancel := pipeline.NewCancelWatcher(filepath.Join(cfg.Control.Dir, "extract.cancel"), log)
	ctx := cmd.Context()
	cancel.Start(ctx)

	run := pipeline.NewRun(pipeline.StageExtract, store, cancel, log)
	e := &pipeline.Extractor{
		Store:          store,
		Blobstore:      blobs,
		OCR:            ocrClient,
		Engine:         extraction.NewEngine(reg),
		Templates:      reg,
		Categorizer:    categorizer.New(),
		Run:            run,
		ForceReextract: forceReextract,
	}

	return e.ProcessAll(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
