package domain

// FieldPattern is a field's regex, or an ordered list of regex candidates
// tried in order until one matches (spec.md §3 Template, §4.2 step 4).
type FieldPattern struct {
	Patterns []string
}

// Options controls text normalization applied before keyword matching and
// field extraction (spec.md §4.1 "Matching").
type Options struct {
	RemoveWhitespace bool
	Lowercase        bool
	Replace          [][2]string // ordered [from_regex, to] pairs
	DateFormats      []string
}

// Template is a read-only, immutable-per-load extraction template
// (spec.md §3 "Template").
type Template struct {
	TemplateID        string // 11-char, upper-cased on load
	Issuer            string // upper-cased on load
	Kind              Kind   // lower-cased on load
	Name              string
	Categories        []Category // allowed categories; nil for credit
	InclusiveKeywords []string
	ExclusiveKeywords []string
	Fields            map[string]FieldPattern
	FieldOrder        []string // preserves declaration order for deterministic extraction
	OptionalFields    map[string]bool
	Options           Options
}

// RequiredFields returns the template fields minus OptionalFields
// (spec.md §4.2 step 6).
func (t *Template) RequiredFields() []string {
	var req []string
	for _, f := range t.FieldOrder {
		if !t.OptionalFields[f] {
			req = append(req, f)
		}
	}
	return req
}

// AllowsCategory reports whether categ is in the template's allowed set.
func (t *Template) AllowsCategory(categ Category) bool {
	for _, c := range t.Categories {
		if c == categ {
			return true
		}
	}
	return false
}

// UniqueValueFields must resolve to a single match or extraction fails
// (spec.md §4.2 step 4).
var UniqueValueFields = map[string]bool{
	"amount": true, "document_number": true, "archive_number": true,
	"return_number": true, "agreement_number": true, "supplier": true,
	"subtotals": true, "identifier": true, "branch": true, "zip": true,
}
