// Package pipeline implements the Pipeline Controller & state machine
// (spec.md §4.8): the per-document status graph, soft cancellation, and
// idempotent hand-off between the Download, Extract, Create, Dispatch,
// and Archive stages.
//
// Grounded on the teacher's explicit-session idiom (pkg/clock.Clock
// injected rather than a package global, quantumlife-canon-core) applied
// to every shared resource the controller touches: the dedup.DB
// connection, the mailbox session, and the ERP session are all
// constructed once per stage process and passed down (SPEC_FULL.md §7).
package pipeline

import (
	"fmt"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

// Stage identifies one of the five pipeline stages (spec.md §2).
type Stage string

const (
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
	StageCreate   Stage = "create"
	StageDispatch Stage = "dispatch"
	StageArchive  Stage = "archive"
)

// allowedTransitions is the monotone status graph of spec.md §4.8. A
// document's status only ever advances along an edge of this graph
// within one run.
var allowedTransitions = map[domain.Status][]domain.Status{
	domain.StatusRegistrationSuccess: {
		domain.StatusExtracted,
		domain.StatusExtractionError,
	},
	domain.StatusExtracted: {
		domain.StatusCompleted,
		domain.StatusDuplicate,
		domain.StatusProcessingError,
		domain.StatusClaimCaseUnmatched,
	},
	domain.StatusCompleted: {
		domain.StatusMailCompletedMoved,
		domain.StatusArchived,
	},
	domain.StatusDuplicate: {
		domain.StatusMailDuplicateMoved,
	},
	domain.StatusProcessingError: {
		domain.StatusMailFailedMoved,
	},
	domain.StatusClaimCaseUnmatched: {
		domain.StatusMailUnmatchedMoved,
	},
	domain.StatusExtractionError: {
		domain.StatusMailExtractErrMoved,
	},
}

// ValidateTransition reports whether moving a document from status from
// to status to is legal. Replaying the same status is always legal (a
// no-op, per the idempotence invariant) even though it isn't a listed
// edge.
func ValidateTransition(from, to domain.Status) error {
	if from == to {
		return nil
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.KindFatal, "pipeline.ValidateTransition",
		fmt.Sprintf("illegal status transition %s -> %s", from, to))
}

// StageOf reports which stage owns the transition into status s, or ""
// if s is not a stage's output status. Used to route a document's next
// hop without the caller hard-coding the graph a second time.
func StageOf(s domain.Status) Stage {
	switch s {
	case domain.StatusExtracted, domain.StatusExtractionError:
		return StageExtract
	case domain.StatusCompleted, domain.StatusDuplicate, domain.StatusProcessingError, domain.StatusClaimCaseUnmatched:
		return StageCreate
	case domain.StatusMailCompletedMoved, domain.StatusMailDuplicateMoved, domain.StatusMailFailedMoved,
		domain.StatusMailExtractErrMoved, domain.StatusMailUnmatchedMoved:
		return StageDispatch
	case domain.StatusArchived:
		return StageArchive
	default:
		return ""
	}
}
