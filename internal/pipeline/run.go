package pipeline

import (
	"context"
	"time"

	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run is the explicit, per-process session object a stage's cmd/
// entrypoint constructs once and threads through every document
// (SPEC_FULL.md §7): it owns the dedup store connection, the stage's
// cancel watcher, and a correlation id used to tie together every log
// line this invocation produces.
type Run struct {
	ID      uuid.UUID
	Stage   Stage
	Store   *dedup.DB
	Cancel  *CancelWatcher
	Log     *zap.SugaredLogger
	started time.Time
}

// NewRun constructs a Run with a fresh correlation id.
func NewRun(stage Stage, store *dedup.DB, cancel *CancelWatcher, log *zap.SugaredLogger) *Run {
	id := uuid.New()
	return &Run{
		ID:      id,
		Stage:   stage,
		Store:   store,
		Cancel:  cancel,
		Log:     log.With("run_id", id.String(), "stage", stage),
		started: time.Now(),
	}
}

// Transition validates and persists a document's status change, then
// logs it against this run's correlation id. Every ERP write is expected
// to have already committed (spec.md §5 Ordering guarantees) before the
// caller reaches this call.
func (r *Run) Transition(ctx context.Context, doc *domain.Document, to domain.Status) error {
	if err := ValidateTransition(doc.Status, to); err != nil {
		return err
	}
	from := doc.Status
	if err := r.Store.UpdateRecord(ctx, doc.ID, map[string]any{"status": string(to)}); err != nil {
		return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "pipeline.Transition", err)
	}
	doc.Status = to
	r.Log.Infow("status transition", "doc_id", doc.ID, "from", from, "to", to)
	return nil
}

// ShouldStop reports whether the run's cancel file has been observed;
// stage loops call this between documents only, never mid-document
// (spec.md §5 Cancellation).
func (r *Run) ShouldStop() bool {
	return r.Cancel != nil && r.Cancel.Cancelled()
}

// EligibleForArchive reports whether a completed credit-note document has
// sat past the retention window and is ready for the archiver to move
// its PDF out of `done` into `archive` (spec.md §4.8: "completed (credit,
// retention elapsed) → archived").
func EligibleForArchive(doc *domain.Document, kind domain.Kind, retention time.Duration, now time.Time) bool {
	if doc.Status != domain.StatusCompleted {
		return false
	}
	if kind != domain.KindCredit {
		return false
	}
	return now.Sub(doc.LastUpdate) >= retention
}
