package compiler

import (
	"fmt"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// AccountingDocsFinder resolves missing invoice/delivery numbers from ERP
// when the extracted data didn't carry both (spec.md §4.5 "Accounting-
// document resolution", original_source Claim._get_accounting_docs).
// Implemented by internal/erp against the live SAP connection.
type AccountingDocsFinder interface {
	FindByPurchaseOrder(po string, account *int64) (invoices, deliveries []string, err error)
	FindByDelivery(delivery string) (invoices []string, err error)
	FindByInvoice(invoice string) (deliveries []string, err error)
}

// Input bundles everything Compile needs to assemble one Claim Context.
type Input struct {
	Document       *extraction.Document
	UserCategory   domain.Category // already-resolved category for debits; "" for credits
	Rule           *domain.ProcessingRule
	AccountMap     *domain.AccountMap // the issuer's account map, or nil if none exists
	AccountingDocs AccountingDocsFinder
}

var validate = validator.New()

// Compile assembles the immutable Claim Context from extracted document
// data, the matched processing rule, and the account map (spec.md §4.5).
func Compile(in Input) (*domain.ClaimContext, error) {
	doc := in.Document
	issuer := strings.ReplaceAll(doc.Issuer, " ", "_")

	transaction, err := SelectTransaction(doc.Kind, in.UserCategory)
	if err != nil {
		return nil, err
	}

	header := domain.ClaimHeader{
		Issuer:      issuer,
		Kind:        doc.Kind,
		Category:    in.UserCategory,
		TemplateID:  doc.TemplateID,
		Transaction: transaction,
		CompanyCode: in.Rule.CompanyCode,
		Threshold:   in.Rule.Threshold,
		Tolerance:   in.Rule.Tolerance,
	}

	if err := validateHeaderShape(header); err != nil {
		return nil, err
	}

	fields := stringifyFields(doc.Fields)
	accNum, hoffNum := resolveAccounts(issuer, fields, in.AccountMap)

	search, err := compileCaseSearch(in.Rule.CaseSearch, doc, fields)
	if err != nil {
		return nil, err
	}

	ctx := &domain.ClaimContext{
		Header:        header,
		Search:        *search,
		ExtractedData: doc.Fields,
	}

	searchAccount := accNum
	if in.Rule.CaseSearch.AccountSource == domain.AccountSourceHeadOffice {
		searchAccount = hoffNum
	}
	if searchAccount != nil {
		ctx.AccountNumber = *searchAccount
	}

	switch transaction {
	case domain.TransactionQM, domain.TransactionZQM:
		create, err := compileNotificationCreate(in, fields, accNum, hoffNum, transaction)
		if err != nil {
			return nil, err
		}
		ctx.Create = create

		extend, err := compileNotificationExtend(in.Rule.CaseAdd, fields)
		if err != nil {
			return nil, err
		}
		ctx.Extend = extend
	case domain.TransactionDMS:
		update, err := compileCaseUpdate(in.Rule.CaseUpdate, doc, fields)
		if err != nil {
			return nil, err
		}
		ctx.CaseUpdate = update
	}

	if err := validate.Struct(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindFatal, "compiler.Compile", err)
	}

	return ctx, nil
}

func validateHeaderShape(h domain.ClaimHeader) error {
	if !domain.ValidCompanyCodes[h.CompanyCode] {
		return pkgerrors.New(pkgerrors.KindFatal, "compiler.Compile", "unrecognized company code")
	}
	if len(h.TemplateID) != 11 {
		return pkgerrors.New(pkgerrors.KindFatal, "compiler.Compile", "invalid template ID")
	}
	if h.Threshold.IsNegative() {
		return pkgerrors.New(pkgerrors.KindFatal, "compiler.Compile", "invalid threshold")
	}
	if h.Tolerance.IsNegative() {
		return pkgerrors.New(pkgerrors.KindFatal, "compiler.Compile", "invalid tolerance")
	}
	tokens := strings.Split(h.Issuer, "_")
	if len(tokens) != 2 || len(tokens[1]) != 2 {
		return pkgerrors.New(pkgerrors.KindFatal, "compiler.Compile", "invalid issuer name")
	}
	return nil
}

// resolveAccounts identifies the customer and head-office account numbers
// from the issuer's account map, dispatching by issuer family the way the
// original's per-customer AccountMap subclasses did (original_source
// Claim._get_accounts / accmaps.py).
func resolveAccounts(issuer string, fields map[string]string, m *domain.AccountMap) (acc, hoff *int64) {
	if m == nil {
		return nil, nil
	}

	supplier, branch := fields["supplier"], fields["branch"]

	switch {
	case strings.Contains(issuer, "BAHAG"), strings.Contains(issuer, "OBI"):
		if v, ok := m.Lookup(supplier, branch); ok {
			acc = &v
		}
		if v, ok := m.Lookup(supplier, domain.HeadOffice); ok {
			hoff = &v
		}
	case strings.Contains(issuer, "HAGEBAU"), strings.Contains(issuer, "METRO"):
		if v, ok := m.Lookup("", branch); ok {
			acc = &v
		}
		if v, ok := m.HeadOfficeAccount(); ok {
			hoff = &v
		}
	case strings.Contains(issuer, "MARKANT"):
		if v, ok := m.Lookup(supplier, ""); ok {
			acc = &v
		}
	}

	return acc, hoff
}

func compileCaseSearch(rule domain.CaseSearchRule, doc *extraction.Document, fields map[string]string) (*domain.CaseSearch, error) {
	title, err := CreateCaseSearchText(rule.Title, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindFatal, "compiler.Compile", err)
	}

	search := &domain.CaseSearch{Title: title}

	if rule.DisputedAmountField != "" {
		if d, ok := doc.Fields[rule.DisputedAmountField].(decimal.Decimal); ok {
			search.DisputedAmount = &d
		}
	}

	return search, nil
}

func compileNotificationCreate(in Input, fields map[string]string, accNum, hoffNum *int64, transaction domain.Transaction) (*domain.NotificationCreate, error) {
	rule := in.Rule.ClaimCreate

	invoices, deliveries, err := resolveAccountingDocuments(rule.ReferenceBy, in.Document.Fields, accNum, in.AccountingDocs)
	if err != nil {
		return nil, err
	}

	available := map[domain.ReferenceKind]string{}
	if len(invoices) > 0 {
		available[domain.ReferenceInvoice] = invoices[0]
	}
	if len(deliveries) > 0 {
		available[domain.ReferenceDelivery] = deliveries[0]
	}
	if accNum != nil {
		available[domain.ReferenceAccount] = fmt.Sprintf("%d", *accNum)
	}
	if hoffNum != nil {
		available[domain.ReferenceHeadOffice] = fmt.Sprintf("%d", *hoffNum)
	}
	if po := fields["purchase_order_number"]; po != "" {
		available[domain.ReferencePurchaseOrder] = po
	}

	ref, err := SelectReference(transaction, rule.ReferenceBy, available, nil)
	if err != nil && !pkgerrors.IsWarning(err) {
		return nil, err
	}

	desc, err := GenerateDescription(rule.Description, fields)
	if err != nil {
		return nil, err
	}

	return &domain.NotificationCreate{
		Reference:      ref,
		Description:    desc,
		Processor:      rule.Processor,
		Coordinator:    rule.Coordinator,
		Responsible:    rule.Responsible,
		StatusAC:       rule.StatusAC,
		AttachmentName: rule.AttachmentName,
	}, nil
}

// compileNotificationExtend builds the case_add ruleset the ERP
// Reconciler uses when it decides to add a case to an already-existing
// notification instead of creating a new one (spec.md §4.5 "case_add",
// §4.6 "Add-case protocol").
func compileNotificationExtend(rule domain.ActionRule, fields map[string]string) (*domain.NotificationExtend, error) {
	desc, err := GenerateDescription(rule.Description, fields)
	if err != nil {
		return nil, err
	}

	return &domain.NotificationExtend{
		Description:    desc,
		Processor:      rule.Processor,
		Coordinator:    rule.Coordinator,
		Responsible:    rule.Responsible,
		StatusAC:       rule.StatusAC,
		AttachmentName: rule.AttachmentName,
	}, nil
}

func compileCaseUpdate(rule domain.ActionRule, doc *extraction.Document, fields map[string]string) (*domain.CaseUpdate, error) {
	update := &domain.CaseUpdate{
		StatusSales:    rule.StatusSales,
		StatusAC:       rule.StatusAC,
		AttachmentName: rule.AttachmentName,
	}

	if rule.AmountField != "" {
		if d, ok := doc.Fields[rule.AmountField].(decimal.Decimal); ok {
			update.CreditAmount = d
		}
	}

	return update, nil
}

// resolveAccountingDocuments implements spec.md §4.5 "Accounting-document
// resolution" (original_source Claim._get_accounting_docs).
func resolveAccountingDocuments(referenceBy []string, data map[string]any, account *int64, finder AccountingDocsFinder) (invoices, deliveries []string, err error) {
	invoiceVal, hasInvoice := data["invoice_number"]
	deliveryVal, hasDelivery := data["delivery_number"]

	if hasInvoice && hasDelivery {
		return toStringList(invoiceVal), toStringList(deliveryVal), nil
	}

	if !hasInvoice && !hasDelivery {
		if !containsString(referenceBy, "purchase_order_number") {
			return nil, nil, nil
		}
		poVal, ok := data["purchase_order_number"]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.KindFatal, "compiler.Compile",
				"purchase order number is required to create a notification, but not found in the document data")
		}
		pos := toStringList(poVal)
		if finder == nil || len(pos) == 0 {
			return nil, nil, nil
		}
		invoices, deliveries, err = finder.FindByPurchaseOrder(pos[0], account)
		if err != nil {
			if pkgerrors.IsWarning(err) {
				return nil, nil, nil
			}
			return nil, nil, err
		}
		return invoices, deliveries, nil
	}

	if !hasInvoice && hasDelivery {
		deliveries = toStringList(deliveryVal)
		if finder != nil {
			invoices, err = finder.FindByDelivery(deliveries[0])
			if err != nil && !pkgerrors.IsWarning(err) {
				return nil, nil, err
			}
		}
		return invoices, deliveries, nil
	}

	// hasInvoice && !hasDelivery
	invoices = toStringList(invoiceVal)
	if finder != nil {
		deliveries, err = finder.FindByInvoice(invoices[0])
		if err != nil && !pkgerrors.IsWarning(err) {
			return nil, nil, err
		}
	}
	return invoices, deliveries, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case decimal.Decimal:
		return []string{t.String()}
	case []decimal.Decimal:
		out := make([]string, len(t))
		for i, d := range t {
			out[i] = d.String()
		}
		return out
	case string:
		return []string{t}
	case []string:
		return t
	default:
		return nil
	}
}

// stringifyFields renders every extracted field to its string form for
// description/search-text templating, which only ever substitutes scalar
// text (spec.md §4.5).
func stringifyFields(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case decimal.Decimal:
			out[k] = t.String()
		case []decimal.Decimal:
			parts := make([]string, len(t))
			for i, d := range t {
				parts[i] = d.String()
			}
			out[k] = strings.Join(parts, ",")
		case string:
			out[k] = t
		case []string:
			out[k] = strings.Join(t, ",")
		}
	}
	return out
}
