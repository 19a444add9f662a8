package domain

import "github.com/shopspring/decimal"

// ClaimHeader carries the transaction-level decisions made by the Claim
// Compiler (spec.md §3 "Claim Context").
type ClaimHeader struct {
	Issuer      string
	Kind        Kind
	Category    Category
	TemplateID  string
	Transaction Transaction `validate:"oneof=QM ZQM DMS"`
	CompanyCode string      `validate:"oneof=1001 1072 0074"`
	Threshold   decimal.Decimal
	Tolerance   decimal.Decimal
}

// CaseSearch is the DMS case-search section (spec.md §3 "case.search").
type CaseSearch struct {
	Title            string `validate:"required"`
	DisputedAmount   *decimal.Decimal
}

// CaseUpdate is populated for credit notes (spec.md §3 "case.update").
type CaseUpdate struct {
	StatusSales    string // raw "<amount>"/"+=" formatting rule; resolved by the ERP Reconciler
	StatusAC       string // raw formatting rule; the ERP Reconciler resolves it against the live case text
	AttachmentName string
	CreditAmount   decimal.Decimal
}

// NotificationCreate is populated when creating a brand-new debit
// notification (spec.md §3 "notification.create").
type NotificationCreate struct {
	Reference      Reference
	Description    string `validate:"required"`
	Processor      string
	Coordinator    string
	Responsible    string
	StatusAC       string // raw formatting rule; resolved by the ERP Reconciler at creation time
	AttachmentName string
}

// NotificationExtend is populated when adding a case to an existing
// notification (spec.md §3 "notification.extend").
type NotificationExtend struct {
	Description    string `validate:"required"`
	Processor      string
	Coordinator    string
	Responsible    string
	StatusAC       string // raw formatting rule; resolved by the ERP Reconciler at creation time
	AttachmentName string
}

// ReferenceKind names which business key a notification is referenced by
// (spec.md §4.5 "Reference selection for QM").
type ReferenceKind string

const (
	ReferenceInvoice       ReferenceKind = "invoice_number"
	ReferenceDelivery      ReferenceKind = "delivery_number"
	ReferenceAccount       ReferenceKind = "account_number"
	ReferenceHeadOffice    ReferenceKind = "head_office_number"
	ReferencePurchaseOrder ReferenceKind = "purchase_order_number"
)

// Reference is the chosen reference field and value for a QM notification.
type Reference struct {
	Kind  ReferenceKind
	Value string
}

// ClaimContext is the fully-specified, immutable claim assembled by the
// Claim Compiler (spec.md §3 "Claim Context", §4.5).
type ClaimContext struct {
	Header       ClaimHeader       `validate:"required"`
	Search       CaseSearch        `validate:"required"`
	CaseUpdate   *CaseUpdate       // credits only
	Create       *NotificationCreate
	Extend       *NotificationExtend
	ExtractedData map[string]any
	AccountNumber int64
}
