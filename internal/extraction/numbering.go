package extraction

import (
	"regexp"
	"strings"

	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

var allDigits = regexp.MustCompile(`^[0-9]+$`)

// validateNumbering enforces the per-field numbering conventions in
// spec.md §4.2 step 4, grounded on original_source/app/svc_extractor/
// parsers.py: Template._validate_numbering.
func validateNumbering(field string, values []string) error {
	for _, v := range values {
		var ok bool
		switch field {
		case "":
			ok = allDigits.MatchString(v)
		case "delivery_number":
			ok = strings.HasPrefix(v, "31") && len(v) == 9
		case "invoice_number":
			ok = allDigits.MatchString(v) && !strings.HasPrefix(v, "0") && len(v) == 9
		case "purchase_order_number":
			ok = allDigits.MatchString(v) && !strings.HasPrefix(v, "0") && len(v) >= 5 && len(v) <= 7
		case "return_number":
			ok = allDigits.MatchString(v) && len(v) >= 6 && len(v) <= 7
		case "agreement_number":
			ok = allDigits.MatchString(v) || len(v) == 10
		default:
			return pkgerrors.New(pkgerrors.KindDataShape, "extraction.validateNumbering",
				"unrecognized numbering type: "+field)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.KindDataShape, "extraction.validateNumbering",
				"invalid "+numberingLabel(field)+": "+v)
		}
	}
	return nil
}

func numberingLabel(field string) string {
	if field == "" {
		return "number"
	}
	return field
}
