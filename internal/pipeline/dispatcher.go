package pipeline

import (
	"context"
	"fmt"

	"github.com/DusanPaal/claim-management/internal/dedup"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/mailbox"
)

// mailOutcomes maps each stage-terminal status to the subfolder it's
// filed under and the transition the dispatcher applies once filed
// (spec.md §4.8: completed | duplicate | processing_error |
// claim_case_unmatched → mail_*_moved).
var mailOutcomes = map[domain.Status]struct {
	subfolder string
	next      domain.Status
	tag       string
}{
	domain.StatusCompleted:          {DirDone, domain.StatusMailCompletedMoved, "INFO"},
	domain.StatusDuplicate:          {DirDuplicate, domain.StatusMailDuplicateMoved, "WARNING"},
	domain.StatusProcessingError:    {DirFailed, domain.StatusMailFailedMoved, "ERROR"},
	domain.StatusClaimCaseUnmatched: {DirFailed, domain.StatusMailUnmatchedMoved, "WARNING"},
}

// Dispatcher files the originating email into the subfolder matching its
// document's terminal outcome, annotating it with a single tagged line
// (spec.md §7 Propagation: "the originating email is always annotated
// with a single tagged line").
type Dispatcher struct {
	Store   *dedup.DB
	Mailbox mailbox.Client
	Run     *Run
}

// ProcessAll dispatches every document at a mail-eligible status.
func (d *Dispatcher) ProcessAll(ctx context.Context) error {
	for status := range mailOutcomes {
		docs, err := d.Store.GetRecords(ctx, "status", string(status))
		if err != nil {
			return fmt.Errorf("dispatcher: list %s documents: %w", status, err)
		}
		for _, doc := range docs {
			if d.Run.ShouldStop() {
				d.Run.Log.Info("cancellation requested, stopping before next document")
				return nil
			}
			if err := d.processOne(ctx, doc); err != nil {
				d.Run.Log.Errorw("dispatch failed", "record_id", doc.ID, "error", err)
			}
		}
	}
	return nil
}

func (d *Dispatcher) processOne(ctx context.Context, doc *domain.Document) error {
	outcome, ok := mailOutcomes[doc.Status]
	if !ok {
		return fmt.Errorf("no mail outcome mapped for status %s", doc.Status)
	}

	line := fmt.Sprintf("G.ROBOT_RFC (%s): %s", outcome.tag, annotationText(doc))
	if err := d.Mailbox.AppendBody(ctx, doc.ExternalMsgID, line); err != nil {
		return fmt.Errorf("annotate email: %w", err)
	}
	if err := d.Mailbox.MoveToSubfolder(ctx, doc.ExternalMsgID, outcome.subfolder); err != nil {
		return fmt.Errorf("move to subfolder: %w", err)
	}
	if err := d.Mailbox.MarkCompleted(ctx, doc.ExternalMsgID, true); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	return d.Run.Transition(ctx, doc, outcome.next)
}

func annotationText(doc *domain.Document) string {
	if doc.LogText != "" {
		return doc.LogText
	}
	return fmt.Sprintf("document %d processed as %s", doc.ID, doc.Status)
}
