package erp

import (
	"github.com/DusanPaal/claim-management/internal/compiler"
	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/shopspring/decimal"
)

// attachmentName resolves an attachment-naming rule against a case ID,
// delegating to the Claim Compiler's templating DSL
// (compiler.CreateAttachmentName), for the protocols' attach-PDF step.
func attachmentName(rule string, caseID int64) (string, error) {
	return compiler.CreateAttachmentName(rule, caseID)
}

// extractAmount recovers the claim's monetary amount for the threshold
// comparisons the Create-notification and Add-case protocols need (spec.md
// §4.6 step 7 "if amount ≥ threshold"): the extracted "amount" field for
// debit notes, or the credit amount being recorded for credit notes.
func extractAmount(claim *domain.ClaimContext) (decimal.Decimal, bool) {
	if claim.CaseUpdate != nil {
		return claim.CaseUpdate.CreditAmount, true
	}
	if v, ok := claim.ExtractedData["amount"]; ok {
		if d, ok := v.(decimal.Decimal); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}
