package erp

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMatchesTitleExact(t *testing.T) {
	assert.True(t, MatchesTitle("Claim 123", "Claim 123"))
	assert.False(t, MatchesTitle("Claim 123", "Claim 124"))
}

func TestMatchesTitleWildcard(t *testing.T) {
	assert.True(t, MatchesTitle("Claim*123", "Claim for invoice 123"))
	assert.False(t, MatchesTitle("Claim*999", "Claim for invoice 123"))
}

func TestAmountsMatchWithinTolerance(t *testing.T) {
	a := decimal.NewFromFloat(100.00)
	b := decimal.NewFromFloat(100.009)
	assert.True(t, AmountsMatch(a, b, decimal.NewFromFloat(0.01)))
	assert.False(t, AmountsMatch(a, b, decimal.NewFromFloat(0.001)))
}

func TestFilterDuplicateCandidatesDropsArchivedWithoutAttrs(t *testing.T) {
	candidates := []CaseMatch{
		{HasAttrs: false},
		{HasAttrs: true, Attrs: CaseAttributes{CompanyCode: "1001", DisputedAmount: decimal.NewFromInt(100)}},
	}
	out := FilterDuplicateCandidates(candidates, "1001", decimal.NewFromInt(100), decimal.NewFromFloat(0.01))
	assert.Len(t, out, 1)
}
