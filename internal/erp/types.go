// Package erp implements the ERP Reconciler (spec.md §4.6): given a Claim
// Context it searches the ERP system for an existing notification or DMS
// case, decides create / extend / record-credit / duplicate, and executes
// the decided transaction against a Client.
//
// Grounded on the connector-interface split of
// _examples/quantumlife-canon-core/internal/connectors/{calendar,finance}:
// one package holding a provider-neutral Client interface (client.go), its
// domain types (types.go), and a Result sum type standing in for the
// warning-as-control-flow the original_source used
// (original_source/app/svc_creator/erp.py).
package erp

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationHeader is the subset of an ERP quality-notification header
// the Reconciler reads and writes (spec.md §4.6 "Create-notification
// protocol", original_source notification payload fields).
type NotificationHeader struct {
	NotificationID int64
	CaseID         int64
	CompanyCode    string
	Transaction    string // QM | ZQM
	ShippingPoint  string
	Currency       string
	CaseType       string
	CategoryCode   string
	Priority       string
	Coordinator    string
	Processor      string
	Responsible    string
	InvoiceNumber  string
	DeliveryNumber string
	AccountNumber  int64
	MarkedDeleted  bool
}

// CaseAttributes is the subset of DMS case attributes the Record-credit
// and Add-case protocols read and overwrite.
type CaseAttributes struct {
	CaseID          int64
	CompanyCode     string
	Title           string
	Status          int // 1..4, advanced one hop at a time
	StatusSales     string
	StatusAC        string
	RootCause       string
	ReasonCode      string
	DisputedAmount  decimal.Decimal
	RecordedCredits decimal.Decimal
	AccountNumber   int64
	BranchNumber    int64
	CreatedAt       time.Time
}

// PriorityTableKey indexes the company_code × shipping_point × threshold
// priority table used to build a notification header (spec.md §4.6 step 1).
type PriorityTableKey struct {
	CompanyCode   string
	ShippingPoint string
	OverThreshold bool
}

// Result is the outcome of reconciling one Claim Context, replacing the
// original's warning-as-control-flow with an explicit sum type (design
// note §9 redesign instruction, SPEC_FULL.md §8).
type Result struct {
	Outcome  Outcome
	CaseID   int64
	Notif    int64
	Reason   string // populated for Duplicated/NotApplicable/Failed
	Err      error  // populated for Failed
}

// Outcome enumerates the terminal states a reconciliation can reach.
type Outcome int

const (
	// OutcomeCreated: a new QM/ZQM notification (and DMS case) was created,
	// or a credit note was recorded against an existing case.
	OutcomeCreated Outcome = iota
	// OutcomeDuplicated: an equivalent case/notification already exists.
	OutcomeDuplicated
	// OutcomeNotApplicable: a credit note found no matching case within the
	// retention window (claim_case_unmatched, spec.md §4.8).
	OutcomeNotApplicable
	// OutcomeFailed: ERP or compile failure that could not be retried away.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeDuplicated:
		return "duplicated"
	case OutcomeNotApplicable:
		return "not_applicable"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
