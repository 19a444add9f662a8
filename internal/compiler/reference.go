package compiler

import (
	"fmt"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

// availableReferences lists, in descending priority order, every field a
// QM/ZQM notification may be referenced by (spec.md §4.5 "Reference
// selection for QM", original_source Claim._get_reference).
var availableReferences = []domain.ReferenceKind{
	domain.ReferenceInvoice,
	domain.ReferenceDelivery,
	domain.ReferencePurchaseOrder,
	domain.ReferenceAccount,
	domain.ReferenceHeadOffice,
}

// ErrNoReferenceableData signals that none of the candidate reference
// fields the rule names resolved to a value, and no other reference field
// did either — a "no referenceable data" warning distinct from a
// misconfigured rule, which is reported when other reference fields do
// carry a value (spec.md §4.5).
var ErrNoReferenceableData = pkgerrors.New(pkgerrors.KindBusinessWarning, "compiler.SelectReference",
	"no valid reference value found for notification creation")

// SelectReference picks the notification reference field for a QM/ZQM
// claim. referenceBy is the rule's ordered candidate list; available maps
// every reference field the extracted data (plus resolved account
// numbers) actually populated to its value. staticAccount, when non-nil,
// forces a fixed account-number reference regardless of referenceBy
// (original_source: `isinstance(val, int)` branch).
func SelectReference(transaction domain.Transaction, referenceBy []string, available map[domain.ReferenceKind]string, staticAccount *int64) (domain.Reference, error) {
	if transaction != domain.TransactionQM && transaction != domain.TransactionZQM {
		return domain.Reference{}, pkgerrors.New(pkgerrors.KindFatal, "compiler.SelectReference",
			fmt.Sprintf("reference identification is not applicable for transaction %q", transaction))
	}

	if staticAccount != nil {
		return domain.Reference{Kind: domain.ReferenceAccount, Value: fmt.Sprintf("%d", *staticAccount)}, nil
	}

	// usedValid follows referenceBy's own order, not availableReferences'
	// priority order: the rule author's ordering is the one that decides
	// which populated field wins (spec.md §4.5 "Given the rule's ordered
	// reference_by list ... pick the first whose value is non-null").
	usedRefs := make(map[domain.ReferenceKind]bool, len(referenceBy))
	var usedValid []domain.ReferenceKind
	for _, name := range referenceBy {
		kind := domain.ReferenceKind(name)
		if !validReferenceKind(kind) {
			return domain.Reference{}, pkgerrors.New(pkgerrors.KindFatal, "compiler.SelectReference",
				fmt.Sprintf("unrecognized 'reference_by' value: %q", name))
		}
		if transaction == domain.TransactionZQM && kind != domain.ReferenceHeadOffice && kind != domain.ReferenceAccount {
			return domain.Reference{}, pkgerrors.New(pkgerrors.KindFatal, "compiler.SelectReference",
				fmt.Sprintf("invalid 'reference_by' value: %q for category 'quality': quality can be referenced by an account or head office number only", name))
		}
		usedRefs[kind] = true
		if val, ok := available[kind]; ok && val != "" {
			usedValid = append(usedValid, kind)
		}
	}

	var unusedValid []domain.ReferenceKind
	for _, kind := range availableReferences {
		if usedRefs[kind] {
			continue
		}
		if val, ok := available[kind]; ok && val != "" {
			unusedValid = append(unusedValid, kind)
		}
	}

	if len(usedValid) == 0 {
		if len(unusedValid) != 0 {
			return domain.Reference{}, pkgerrors.New(pkgerrors.KindFatal, "compiler.SelectReference",
				"other references with valid values are available but are not included in the 'reference_by' rule; check the processing rules")
		}
		return domain.Reference{}, ErrNoReferenceableData
	}

	selected := usedValid[0]
	return domain.Reference{Kind: selected, Value: available[selected]}, nil
}

func validReferenceKind(kind domain.ReferenceKind) bool {
	for _, k := range availableReferences {
		if k == kind {
			return true
		}
	}
	return false
}
