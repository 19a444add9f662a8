package erp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MatchesTitle reports whether a DMS case title matches a search pattern,
// translating SAP's '*' wildcard into a substring-contains test the way
// the ERP query itself maps '*' to '%' (spec.md §4.6 "Duplicate detection
// precision").
func MatchesTitle(pattern, title string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == title
	}
	parts := strings.Split(pattern, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(title[pos:], part)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(part)
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(title, last) {
		return false
	}
	return true
}

// AmountsMatch reports whether a and b are equal within tolerance
// (spec.md §4.6 "amounts compare via |a − b| ≤ tolerance").
func AmountsMatch(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// CaseMatch is a candidate DMS case surviving the open/solved/closed and
// amount-tolerance filter of a duplicate search.
type CaseMatch struct {
	Attrs    CaseAttributes
	HasAttrs bool // false means "archived case with no attribute row"
}

// FilterDuplicateCandidates applies spec.md §4.6's duplicate-search
// filter: an archived case with no attribute row is treated as "no match"
// (with a warning) rather than a false-positive duplicate.
func FilterDuplicateCandidates(candidates []CaseMatch, companyCode string, amount, tolerance decimal.Decimal) []CaseAttributes {
	var out []CaseAttributes
	for _, c := range candidates {
		if !c.HasAttrs {
			continue
		}
		if c.Attrs.CompanyCode != companyCode {
			continue
		}
		if !AmountsMatch(c.Attrs.DisputedAmount, amount, tolerance) {
			continue
		}
		out = append(out, c.Attrs)
	}
	return out
}
