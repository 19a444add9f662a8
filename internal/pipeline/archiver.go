package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/DusanPaal/claim-management/internal/blobstore"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
)

// Archiver moves completed credit-note PDFs into the archive folder once
// the retention window has elapsed (spec.md §4.8: "completed (credit,
// retention elapsed) → archived").
type Archiver struct {
	Store     *dedup.DB
	Blobstore blobstore.Store
	Retention time.Duration
	Run       *Run
}

// ProcessAll archives every eligible completed document.
func (a *Archiver) ProcessAll(ctx context.Context) error {
	docs, err := a.Store.GetRecords(ctx, "status", string(domain.StatusCompleted))
	if err != nil {
		return fmt.Errorf("archiver: list completed documents: %w", err)
	}

	now := time.Now()
	for _, doc := range docs {
		if a.Run.ShouldStop() {
			a.Run.Log.Info("cancellation requested, stopping before next document")
			return nil
		}

		kind := domain.Kind(stringField(doc.StructuredData, "kind"))
		if !EligibleForArchive(doc, kind, a.Retention, now) {
			continue
		}
		if err := a.processOne(ctx, doc); err != nil {
			a.Run.Log.Errorw("archive failed", "record_id", doc.ID, "error", err)
		}
	}
	return nil
}

func (a *Archiver) processOne(ctx context.Context, doc *domain.Document) error {
	data, err := a.Blobstore.FetchContent(ctx, doc.FileLocation)
	if err != nil {
		return fmt.Errorf("fetch pdf: %w", err)
	}

	archivePath := filepath.ToSlash(filepath.Join(DirArchive, filepath.Base(doc.FileLocation)))
	if err := a.Blobstore.Upload(ctx, archivePath, data, false); err != nil {
		return fmt.Errorf("upload to archive: %w", err)
	}
	if err := a.Blobstore.Delete(ctx, doc.FileLocation); err != nil {
		return fmt.Errorf("delete original: %w", err)
	}

	if err := a.Run.Transition(ctx, doc, domain.StatusArchived); err != nil {
		return err
	}
	return a.Store.UpdateRecord(ctx, doc.ID, map[string]any{"file_location": archivePath})
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
