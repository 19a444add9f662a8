package mailbox

import "context"

// Client is the seam between the Pipeline Controller and the shared
// mailbox. Every operation is blocking from the calling document's
// perspective (spec.md §5 Blocking points).
type Client interface {
	// Identity returns the primary SMTP address of the shared mailbox.
	Identity() string

	// WalkInbox returns every message matching filter, across the full
	// subfolder tree (spec.md §6: "walk inbox tree").
	WalkInbox(ctx context.Context, filter ListFilter) ([]Message, error)

	// MoveToSubfolder moves a message into the named subfolder path,
	// creating it if absent (spec.md §6: "move to subfolder-by-name path").
	MoveToSubfolder(ctx context.Context, messageID, subfolderPath string) error

	// BulkMove moves every message in messageIDs into the named subfolder.
	BulkMove(ctx context.Context, messageIDs []string, subfolderPath string) error

	// DownloadAttachments fetches every PDF attachment of a message.
	DownloadAttachments(ctx context.Context, messageID string) ([]Attachment, error)

	// AppendBody appends HTML content to a message's body (spec.md §6:
	// "append HTML to body"), used to annotate a failed claim.
	AppendBody(ctx context.Context, messageID, html string) error

	// Delete removes a message from the mailbox.
	Delete(ctx context.Context, messageID string) error

	// MarkRead sets or clears the read flag on a message.
	MarkRead(ctx context.Context, messageID string, read bool) error

	// MarkCompleted sets the extended property tag 0x1090 (Integer) used
	// by the mailbox UI to flag a message as fully processed.
	MarkCompleted(ctx context.Context, messageID string, completed bool) error

	// Refresh re-authenticates/renews the underlying session handle
	// (spec.md §5: "the mailbox account handle is reused across documents
	// of the same run").
	Refresh(ctx context.Context) error
}
