package pipeline

import "github.com/DusanPaal/claim-management/internal/domain"

// Action is the controller's decision when the downloader re-sees a
// document hash it already has a record for (spec.md §4.8 Idempotence).
type Action int

const (
	// ActionSkip means the document is already in a terminal status and
	// the control category does not force re-processing; do nothing
	// beyond the metadata refresh below.
	ActionSkip Action = iota
	// ActionRequeue means the document should re-enter its next stage:
	// either it was never terminal, or IGNORE_ALREADY_EXISTING was applied.
	ActionRequeue
)

// Seen is the metadata a re-observed document carries on this pass; the
// controller refreshes the stored record with these fields regardless of
// the resulting Action (spec.md §4.8: "updates the existing record's
// subfolder/message id/category").
type Seen struct {
	Subfolder       string
	ExternalMsgID   string
	MessageCategory string
	ControlCategory domain.ControlCategory
}

// Resolve decides what to do when a document with the given hash is
// re-observed, given its existing record's current status. It never
// mutates existing; callers apply the returned refreshed fields via
// dedup.DB.UpdateRecord themselves.
func Resolve(existing *domain.Document, seen Seen) (Action, map[string]any) {
	refresh := map[string]any{
		"subfolder":        seen.Subfolder,
		"external_msg_id":  seen.ExternalMsgID,
		"message_category": seen.MessageCategory,
	}

	if seen.ControlCategory == domain.IgnoreAlreadyExisting {
		return ActionRequeue, refresh
	}
	if existing.Status.IsTerminalForReplay() {
		return ActionSkip, refresh
	}
	return ActionRequeue, refresh
}
