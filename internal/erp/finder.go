package erp

import (
	"context"
	"strconv"

	"github.com/DusanPaal/claim-management/internal/compiler"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

// docFinder adapts a Session to the Claim Compiler's AccountingDocsFinder
// seam (internal/compiler.AccountingDocsFinder), resolving missing
// invoice/delivery numbers via ERP table reads (spec.md §4.5 "Accounting-
// document resolution", original_source Claim._get_accounting_docs).
type docFinder struct {
	ctx     context.Context
	session *Session
}

// NewAccountingDocsFinder builds the compiler-facing ERP lookup seam that
// internal/pipeline passes into compiler.Input.AccountingDocs.
func NewAccountingDocsFinder(ctx context.Context, session *Session) compiler.AccountingDocsFinder {
	return &docFinder{ctx: ctx, session: session}
}

func (f *docFinder) FindByPurchaseOrder(po string, account *int64) (invoices, deliveries []string, err error) {
	where := []string{"EBELN = '" + po + "'"}
	if account != nil {
		where = append(where, "KUNNR = '" + formatAccount(*account) + "'")
	}
	rows, err := f.session.Client.ReadTable(f.ctx, TableReadRequest{
		Table: "VBRK", Fields: []string{"VBELN", "LFART"}, Where: where,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.FindByPurchaseOrder", err)
	}
	if len(rows) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.KindBusinessWarning, "erp.FindByPurchaseOrder",
			"no accounting documents found for purchase order "+po)
	}
	return splitByDocType(rows)
}

func (f *docFinder) FindByDelivery(delivery string) (invoices []string, err error) {
	rows, err := f.session.Client.ReadTable(f.ctx, TableReadRequest{
		Table: "VBFA", Fields: []string{"VBELN"}, Where: []string{"VBELV = '" + delivery + "'", "VBTYP_N = 'M'"},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.FindByDelivery", err)
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.KindBusinessWarning, "erp.FindByDelivery",
			"no invoice found for delivery "+delivery)
	}
	for _, r := range rows {
		invoices = append(invoices, r["VBELN"])
	}
	return invoices, nil
}

func (f *docFinder) FindByInvoice(invoice string) (deliveries []string, err error) {
	rows, err := f.session.Client.ReadTable(f.ctx, TableReadRequest{
		Table: "VBFA", Fields: []string{"VBELV"}, Where: []string{"VBELN = '" + invoice + "'", "VBTYP_V = 'J'"},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.FindByInvoice", err)
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.KindBusinessWarning, "erp.FindByInvoice",
			"no delivery found for invoice "+invoice)
	}
	for _, r := range rows {
		deliveries = append(deliveries, r["VBELV"])
	}
	return deliveries, nil
}

func splitByDocType(rows []TableRow) (invoices, deliveries []string, err error) {
	for _, r := range rows {
		switch r["LFART"] {
		case "J":
			invoices = append(invoices, r["VBELN"])
		case "M":
			deliveries = append(deliveries, r["VBELN"])
		}
	}
	return invoices, deliveries, nil
}

// formatAccount renders an account number in SAP's 10-digit zero-padded
// customer-number form, the shape every KUNNR filter in this package
// expects.
func formatAccount(acc int64) string {
	s := strconv.FormatInt(acc, 10)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}
