package domain

import "github.com/shopspring/decimal"

// ActionRule is one of claim_create / case_add / case_update
// (spec.md §3 "Processing Rule", §6 "Processing-rule file").
type ActionRule struct {
	ReferenceBy      []string // ordered candidate field names, claim_create only
	ReferenceNo      string   // explicit reference override, if set
	Description      string   // description template with <field>/<?field> tokens
	Processor        string
	Coordinator      string
	Responsible      string
	AttachmentName   string // template containing <case_id>
	StatusAC         string // status-AC template, claim_create/case_add only
	StatusSales      string // status-sales template, case_update only
	User             string
	AmountField      string // case_update: field naming the credit amount
}

// CaseSearchRule drives the DMS case-search lookup (spec.md §3
// "case.search", §4.5). AccountSource selects which resolved account
// number (if any) narrows the search; empty means the search is by
// title/company code/amount alone.
type CaseSearchRule struct {
	Title               string // search-text template; may reference placeholder fields
	AccountSource       string // "head_office" | "customer_account"; empty means none
	DisputedAmountField string // extracted-data field naming cust_disputed, if any
}

// AccountSourceHeadOffice and AccountSourceCustomer are the two
// CaseSearchRule.AccountSource values a processing-rule file may declare.
const (
	AccountSourceHeadOffice = "head_office"
	AccountSourceCustomer   = "customer_account"
)

// ProcessingRule is keyed by (issuer, template_id, optional category)
// (spec.md §3 "Processing Rule").
type ProcessingRule struct {
	Issuer      string
	TemplateID  string
	Category    Category // empty means "applies regardless of category"
	CompanyCode string   // one of 1001, 1072, 0074
	Threshold   decimal.Decimal
	Tolerance   decimal.Decimal
	Kind        Kind

	CaseSearch  CaseSearchRule
	ClaimCreate ActionRule
	CaseAdd     ActionRule
	CaseUpdate  ActionRule
}

// ValidCompanyCodes is the closed set enforced post-compile (spec.md §4.5).
var ValidCompanyCodes = map[string]bool{"1001": true, "1072": true, "0074": true}
