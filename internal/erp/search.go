// Package erp — search.go builds the Lookups Reconcile's decision tree
// branches on: the "existing case" DMS search and the "existing
// notification" ERP table lookup of spec.md §4.6.
package erp

import (
	"context"
	"strconv"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/shopspring/decimal"
)

// caseIndexTable and notificationIndexTable are the projected index
// tables Search reads candidate ids from before fetching full attributes.
const (
	caseIndexTable         = "ZCASE_IDX"
	notificationIndexTable = "QMEL"
)

// Search runs spec.md §4.6's "existing case" and "existing notification"
// lookups for one Claim Context, returning a Lookups ready to pass into
// Reconcile. ignoreExisting carries the document's IGNORE_ALREADY_EXISTING
// control category (spec.md §8 scenario 6): Search still runs the
// lookups so the result can be reported, but its decision tree treats a
// found duplicate as non-blocking.
func Search(ctx context.Context, sess *Session, claim *domain.ClaimContext, duplicatesBy DuplicatesPolicy, ignoreExisting bool) (Lookups, error) {
	cases, err := searchCases(ctx, sess, claim)
	if err != nil {
		return Lookups{}, err
	}

	var notifs []NotificationHeader
	if claim.Header.Transaction == domain.TransactionQM {
		notifs, err = searchNotifications(ctx, sess, claim)
		if err != nil {
			return Lookups{}, err
		}
	}

	return Lookups{Cases: cases, Notifications: notifs, DuplicatesBy: duplicatesBy, IgnoreExisting: ignoreExisting}, nil
}

// searchCases runs the DMS case-search (title pattern, company code,
// amount within tolerance); an archived case with no attribute row (a
// zero CreatedAt) is dropped rather than treated as a match (spec.md
// §4.6 "Duplicate detection precision").
func searchCases(ctx context.Context, sess *Session, claim *domain.ClaimContext) ([]CaseAttributes, error) {
	pattern := strings.ReplaceAll(claim.Search.Title, "*", "%")
	rows, err := sess.Client.ReadTable(ctx, TableReadRequest{
		Table:  caseIndexTable,
		Fields: []string{"CASE_GUID", "TITLE"},
		Where:  []string{"TITLE LIKE '" + pattern + "'", "WERKS = '" + claim.Header.CompanyCode + "'"},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.searchCases", err)
	}

	var candidates []CaseMatch
	for _, row := range rows {
		if !MatchesTitle(claim.Search.Title, row["TITLE"]) {
			continue
		}
		caseID, convErr := strconv.ParseInt(row["CASE_GUID"], 10, 64)
		if convErr != nil {
			continue
		}
		attrs, err := sess.Client.GetDisputeDetail(ctx, caseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.searchCases", err)
		}
		candidates = append(candidates, CaseMatch{Attrs: attrs, HasAttrs: !attrs.CreatedAt.IsZero()})
	}

	amount := decimal.Zero
	if claim.Search.DisputedAmount != nil {
		amount = *claim.Search.DisputedAmount
	}
	return FilterDuplicateCandidates(candidates, claim.Header.CompanyCode, amount, claim.Header.Tolerance), nil
}

// searchNotifications runs the ERP table lookup by (invoice, delivery)
// with the notification type tag, for the QM reference carried by
// whichever of Create/Extend the Claim Compiler populated.
func searchNotifications(ctx context.Context, sess *Session, claim *domain.ClaimContext) ([]NotificationHeader, error) {
	ref, ok := referenceOf(claim)
	if !ok {
		return nil, nil
	}

	where := []string{"QMART = 'QM'"}
	switch ref.Kind {
	case domain.ReferenceInvoice:
		where = append(where, "RBELN = '"+ref.Value+"'")
	case domain.ReferenceDelivery:
		where = append(where, "VBELN = '"+ref.Value+"'")
	case domain.ReferenceAccount, domain.ReferenceHeadOffice:
		where = append(where, "KUNNR = '"+ref.Value+"'")
	case domain.ReferencePurchaseOrder:
		where = append(where, "EBELN = '"+ref.Value+"'")
	}

	rows, err := sess.Client.ReadTable(ctx, TableReadRequest{
		Table:  notificationIndexTable,
		Fields: []string{"QMNUM"},
		Where:  where,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.searchNotifications", err)
	}

	var notifs []NotificationHeader
	for _, row := range rows {
		notifID, convErr := strconv.ParseInt(row["QMNUM"], 10, 64)
		if convErr != nil {
			continue
		}
		header, err := sess.Client.GetNotification(ctx, notifID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "erp.searchNotifications", err)
		}
		notifs = append(notifs, header)
	}
	return notifs, nil
}

func referenceOf(claim *domain.ClaimContext) (domain.Reference, bool) {
	if claim.Create != nil {
		return claim.Create.Reference, true
	}
	if claim.Extend != nil {
		return claim.Extend.Reference, true
	}
	return domain.Reference{}, false
}
