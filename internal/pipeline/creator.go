package pipeline

import (
	"context"
	"fmt"

	"github.com/DusanPaal/claim-management/internal/blobstore"
	"github.com/DusanPaal/claim-management/internal/compiler"
	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/erp"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/rules"
)

// Creator compiles each extracted document into a Claim Context and
// reconciles it against the ERP (spec.md §4.8: extracted → completed |
// duplicate | processing_error | claim_case_unmatched).
type Creator struct {
	Store       *dedup.DB
	Blobstore   blobstore.Store
	Rules       *rules.Registry
	AccountMaps map[string]*domain.AccountMap // keyed by upper-cased issuer
	Finder      compiler.AccountingDocsFinder
	Session     *erp.Session
	DuplicatesBy erp.DuplicatesPolicy
	Run          *Run
}

// ProcessAll reconciles every document currently extracted.
func (c *Creator) ProcessAll(ctx context.Context) error {
	docs, err := c.Store.GetRecords(ctx, "status", string(domain.StatusExtracted))
	if err != nil {
		return fmt.Errorf("creator: list extracted documents: %w", err)
	}

	for _, doc := range docs {
		if c.Run.ShouldStop() {
			c.Run.Log.Info("cancellation requested, stopping before next document")
			return nil
		}
		if err := c.processOne(ctx, doc); err != nil {
			c.Run.Log.Errorw("reconciliation failed", "record_id", doc.ID, "error", err)
		}
	}
	return nil
}

func (c *Creator) processOne(ctx context.Context, doc *domain.Document) error {
	extracted := extraction.FromStructured(doc.StructuredData)

	rule, ok := c.Rules.Get(extracted.Issuer, extracted.TemplateID, extracted.Category)
	if !ok {
		return c.fail(ctx, doc, fmt.Errorf("no processing rule for issuer=%s template_id=%s category=%s", extracted.Issuer, extracted.TemplateID, extracted.Category))
	}

	pdf, err := c.Blobstore.FetchContent(ctx, doc.FileLocation)
	if err != nil {
		return c.fail(ctx, doc, fmt.Errorf("fetch pdf: %w", err))
	}

	claim, err := compiler.Compile(compiler.Input{
		Document:       extracted,
		UserCategory:   extracted.Category,
		Rule:           rule,
		AccountMap:     c.AccountMaps[extracted.Issuer],
		AccountingDocs: c.Finder,
	})
	if err != nil {
		return c.fail(ctx, doc, fmt.Errorf("compile: %w", err))
	}

	if err := c.Session.Prepare(ctx, claim.Header.CompanyCode); err != nil {
		return c.fail(ctx, doc, fmt.Errorf("prepare erp session: %w", err))
	}

	ignoreExisting := doc.ControlCategory == domain.IgnoreAlreadyExisting
	lookups, err := erp.Search(ctx, c.Session, claim, c.DuplicatesBy, ignoreExisting)
	if err != nil {
		return c.fail(ctx, doc, fmt.Errorf("search existing cases/notifications: %w", err))
	}

	result := erp.Reconcile(ctx, c.Session, claim, pdf, lookups)

	switch result.Outcome {
	case erp.OutcomeCreated:
		if err := c.Run.Transition(ctx, doc, domain.StatusCompleted); err != nil {
			return err
		}
		return c.Store.UpdateRecord(ctx, doc.ID, map[string]any{"case_id": result.CaseID})
	case erp.OutcomeDuplicated:
		if err := c.Run.Transition(ctx, doc, domain.StatusDuplicate); err != nil {
			return err
		}
		return c.Store.UpdateRecord(ctx, doc.ID, map[string]any{"case_id": result.CaseID, "log_text": result.Reason})
	case erp.OutcomeNotApplicable:
		if err := c.Run.Transition(ctx, doc, domain.StatusClaimCaseUnmatched); err != nil {
			return err
		}
		return c.Store.UpdateRecord(ctx, doc.ID, map[string]any{"log_text": result.Reason})
	default:
		return c.fail(ctx, doc, fmt.Errorf("erp reconcile: %w", result.Err))
	}
}

func (c *Creator) fail(ctx context.Context, doc *domain.Document, cause error) error {
	if err := c.Run.Transition(ctx, doc, domain.StatusProcessingError); err != nil {
		return err
	}
	return c.Store.UpdateRecord(ctx, doc.ID, map[string]any{"log_text": cause.Error()})
}
