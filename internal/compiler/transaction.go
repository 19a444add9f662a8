package compiler

import (
	"fmt"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

// qmCategories and zqmCategories partition the debit-note category space
// into the two QM-family transaction tags (spec.md §4.5 "Transaction tag
// selection", original_source Claim._categories).
var qmCategories = map[domain.Category]bool{
	domain.CategoryDelivery:       true,
	domain.CategoryFinance:        true,
	domain.CategoryInvoice:        true,
	domain.CategoryPenaltyGeneral: true,
	domain.CategoryPenaltyDelay:   true,
	domain.CategoryPenaltyQuote:   true,
	domain.CategoryPrice:          true,
	domain.CategoryRebuild:        true,
	domain.CategoryReturn:         true,
}

var zqmCategories = map[domain.Category]bool{
	domain.CategoryBonus:   true,
	domain.CategoryPromo:   true,
	domain.CategoryQuality: true,
}

// SelectTransaction resolves the ERP transaction tag from a document's
// kind and (for debits) category (spec.md §4.5 "Transaction tag
// selection").
func SelectTransaction(kind domain.Kind, category domain.Category) (domain.Transaction, error) {
	switch kind {
	case domain.KindCredit:
		return domain.TransactionDMS, nil
	case domain.KindDebit:
		switch {
		case qmCategories[category]:
			return domain.TransactionQM, nil
		case zqmCategories[category]:
			return domain.TransactionZQM, nil
		default:
			return "", pkgerrors.New(pkgerrors.KindDataShape, "compiler.SelectTransaction",
				fmt.Sprintf("unrecognized document category: %q", category))
		}
	default:
		return "", pkgerrors.New(pkgerrors.KindDataShape, "compiler.SelectTransaction",
			fmt.Sprintf("unrecognized document kind: %q", kind))
	}
}
