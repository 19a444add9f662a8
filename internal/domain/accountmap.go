package domain

// AccountMapKey identifies a row in a customer's Account Map: keyed by
// (supplier, business_unit), (business_unit) alone, (supplier) alone, or
// the distinguished head-office row (spec.md §3 "Account Map").
type AccountMapKey struct {
	Supplier     string // empty means "not part of the key"
	BusinessUnit string // empty means "not part of the key"; literal "head_office" for HO rows
}

// HeadOffice is the literal business_unit value denoting the head-office row.
const HeadOffice = "head_office"

// AccountMap is an immutable-per-load per-customer lookup table
// (spec.md §3, §4.4).
type AccountMap struct {
	Customer string
	Rows     map[AccountMapKey]int64
}

// Lookup resolves an account number deterministically and side-effect-free
// (spec.md §4.4). It tries (supplier, business_unit), then (business_unit),
// then (supplier), returning (0, false) when nothing matches.
func (m *AccountMap) Lookup(supplier, businessUnit string) (int64, bool) {
	if supplier != "" && businessUnit != "" {
		if acc, ok := m.Rows[AccountMapKey{Supplier: supplier, BusinessUnit: businessUnit}]; ok {
			return acc, true
		}
	}
	if businessUnit != "" {
		if acc, ok := m.Rows[AccountMapKey{BusinessUnit: businessUnit}]; ok {
			return acc, true
		}
	}
	if supplier != "" {
		if acc, ok := m.Rows[AccountMapKey{Supplier: supplier}]; ok {
			return acc, true
		}
	}
	return 0, false
}

// HeadOfficeAccount resolves the distinguished head-office account number.
func (m *AccountMap) HeadOfficeAccount() (int64, bool) {
	acc, ok := m.Rows[AccountMapKey{BusinessUnit: HeadOffice}]
	return acc, ok
}
