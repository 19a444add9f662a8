package erp

import (
	"context"
)

// TableReadRequest mirrors RFC_READ_TABLE's filter/field/offset-length
// projection (spec.md §6 "ERP (structured RPC)").
type TableReadRequest struct {
	Table   string
	Fields  []string
	Where   []string // ABAP-style condition lines, ANDed
	Offset  int
	Length  int // 0 means unbounded
}

// TableRow is one projected row of a table-read response, keyed by field
// name exactly as requested.
type TableRow map[string]string

// Client is the provider-neutral seam between the Reconciler and the live
// SAP connection (spec.md §6 "ERP (structured RPC)"). All calls are
// synchronous; the caller commits explicitly via Commit.
//
// Grounded on the read/write split of
// _examples/quantumlife-canon-core/internal/connectors/finance/{read,write}
// — here collapsed into one interface because, unlike the finance
// connector, the ERP boundary has no architectural read/write separation
// requirement in spec.md.
type Client interface {
	// ReadTable runs a projected table read (RFC_READ_TABLE equivalent).
	ReadTable(ctx context.Context, req TableReadRequest) ([]TableRow, error)

	// CreateNotification creates a new QM/ZQM notification and returns its
	// assigned notification ID.
	CreateNotification(ctx context.Context, header NotificationHeader) (int64, error)

	// GetNotification fetches a notification header by ID.
	GetNotification(ctx context.Context, notifID int64) (NotificationHeader, error)

	// SaveNotification persists changes to a notification header (e.g.
	// re-activation during the Add-case protocol).
	SaveNotification(ctx context.Context, header NotificationHeader) error

	// AddNotificationData appends line data to an existing notification.
	AddNotificationData(ctx context.Context, notifID int64, data map[string]string) error

	// PostClaimDispute is the composite RPC creating the paired DMS case
	// for a notification (spec.md §4.6 step 3).
	PostClaimDispute(ctx context.Context, notifID int64) (caseID int64, err error)

	// ChangeTaskStatus transitions a dispute or CS task's status.
	ChangeTaskStatus(ctx context.Context, caseID int64, taskType string, status string) error

	// ChangeDisputeAttributes overwrites case attributes (reason code,
	// account, branch, status, root cause, status texts).
	ChangeDisputeAttributes(ctx context.Context, attrs CaseAttributes) error

	// GetDisputeDetail fetches the current case attributes.
	GetDisputeDetail(ctx context.Context, caseID int64) (CaseAttributes, error)

	// CreateBinaryRelation links an uploaded document GUID to a case.
	CreateBinaryRelation(ctx context.Context, caseID int64, documentGUID string) error

	// UploadOfficeDocument uploads the PDF bytes and returns its document
	// GUID, ready to be linked via CreateBinaryRelation.
	UploadOfficeDocument(ctx context.Context, attachmentName string, pdf []byte) (documentGUID string, err error)

	// Commit flushes pending changes for the current logical unit of work.
	Commit(ctx context.Context) error
}
