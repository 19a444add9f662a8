package pipeline

import (
	"context"
	"fmt"

	"github.com/DusanPaal/claim-management/internal/blobstore"
	"github.com/DusanPaal/claim-management/internal/categorizer"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/ocr"
	"github.com/DusanPaal/claim-management/internal/templates"
)

// Extractor converts a registered document's PDF bytes into structured
// data (spec.md §4.8: registered → extracted | extraction_error), via
// OCR, template matching/field extraction, and categorization.
type Extractor struct {
	Store       *dedup.DB
	Blobstore   blobstore.Store
	OCR         ocr.Client
	Engine      *extraction.Engine
	Templates   *templates.Registry
	Categorizer *categorizer.Categorizer
	Run         *Run

	// ForceReextract re-runs extraction on documents already at
	// extraction_error, bypassing the idempotence no-op (the CLI's
	// --force-reextract flag, SPEC_FULL.md §3).
	ForceReextract bool
}

// ProcessAll extracts every document currently eligible for this stage.
func (e *Extractor) ProcessAll(ctx context.Context) error {
	docs, err := e.Store.GetRecords(ctx, "status", string(domain.StatusRegistrationSuccess))
	if err != nil {
		return fmt.Errorf("extractor: list registered documents: %w", err)
	}
	if e.ForceReextract {
		retry, err := e.Store.GetRecords(ctx, "status", string(domain.StatusExtractionError))
		if err != nil {
			return fmt.Errorf("extractor: list extraction_error documents: %w", err)
		}
		docs = append(docs, retry...)
	}

	for _, doc := range docs {
		if e.Run.ShouldStop() {
			e.Run.Log.Info("cancellation requested, stopping before next document")
			return nil
		}
		if err := e.processOne(ctx, doc); err != nil {
			e.Run.Log.Errorw("extraction failed", "record_id", doc.ID, "error", err)
		}
	}
	return nil
}

func (e *Extractor) processOne(ctx context.Context, doc *domain.Document) error {
	pdf, err := e.Blobstore.FetchContent(ctx, doc.FileLocation)
	if err != nil {
		return e.fail(ctx, doc, fmt.Errorf("fetch pdf: %w", err))
	}

	route := ocr.RouteTextual
	text, err := e.OCR.Convert(ctx, route, pdf)
	if err != nil {
		return e.fail(ctx, doc, fmt.Errorf("ocr convert: %w", err))
	}

	issuer := doc.MessageCategory
	extracted, err := e.Engine.Extract(issuer, text)
	if err != nil {
		return e.fail(ctx, doc, fmt.Errorf("extract: %w", err))
	}

	tmpl, ok := e.Templates.Get(extracted.TemplateID)
	if !ok {
		return e.fail(ctx, doc, fmt.Errorf("categorize: template %s vanished from registry after match", extracted.TemplateID))
	}
	category, err := e.Categorizer.Categorize(extracted, tmpl, extracted.Category)
	if err != nil {
		return e.fail(ctx, doc, fmt.Errorf("categorize: %w", err))
	}
	extracted.Category = category

	if err := e.Run.Transition(ctx, doc, domain.StatusExtracted); err != nil {
		return err
	}
	return e.Store.UpdateRecord(ctx, doc.ID, map[string]any{
		"raw_text":        text,
		"structured_data": extracted.ToStructured(),
	})
}

func (e *Extractor) fail(ctx context.Context, doc *domain.Document, cause error) error {
	if err := e.Run.Transition(ctx, doc, domain.StatusExtractionError); err != nil {
		return err
	}
	return e.Store.UpdateRecord(ctx, doc.ID, map[string]any{"log_text": cause.Error()})
}
