package extraction

import (
	"fmt"
	"strings"

	"github.com/DusanPaal/claim-management/internal/numeric"
	"github.com/shopspring/decimal"
)

// coerceField applies the per-field-type coercion dispatch
// (original_source/app/svc_extractor/parsers.py: Template.extract's
// per-field if/elif chain). matches holds the deduplicated values
// matched for field.
func coerceField(field string, matches []string) (any, error) {
	switch field {
	case "amount":
		amount, err := numeric.ParseAmount(matches[0])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("field %q: extracted document amount must be a non-zero positive value", field)
		}
		return amount, nil

	case "zip", "archive_number", "branch":
		if err := validateNumbering("", matches[:1]); err != nil {
			return nil, err
		}
		return parseAllInt(matches[:1])

	case "supplier", "document_number", "identifier", "backreference_number":
		d, ok, _ := numeric.ParseAmountMode(matches[0], numeric.ModeIgnore)
		if !ok {
			return matches[0], nil
		}
		return d, nil

	case "tax":
		if len(matches) == 1 {
			return numeric.ParseAmount(matches[0])
		}
		return parseAllDecimal(matches)

	case "subtotals":
		return parseSubtotals(matches[0])

	case "delivery_number", "invoice_number", "purchase_order_number", "return_number", "agreement_number":
		if err := validateNumbering(field, matches); err != nil {
			return nil, err
		}
		if len(matches) == 1 {
			return parseAllInt(matches[:1])
		}
		return parseAllInt(matches)

	case "email":
		return strings.ReplaceAll(matches[0], " ", ""), nil

	case "reason":
		trimmed := make([]string, len(matches))
		for i, m := range matches {
			trimmed[i] = strings.TrimSpace(m)
		}
		if len(trimmed) == 1 {
			return trimmed[0], nil
		}
		return trimmed, nil

	default:
		return matches[0], nil
	}
}

// parseAllInt parses every value as an integral decimal, returning the
// single value unwrapped when there is exactly one.
func parseAllInt(vals []string) (any, error) {
	out, err := parseAllDecimal(vals)
	if err != nil {
		return nil, err
	}
	ds := out.([]decimal.Decimal)
	if len(ds) == 1 {
		return ds[0], nil
	}
	return ds, nil
}

func parseAllDecimal(vals []string) (any, error) {
	out := make([]decimal.Decimal, 0, len(vals))
	for _, v := range vals {
		d, err := numeric.ParseAmount(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// parseSubtotals splits a single matched subtotals string into its
// component numbers (original_source Parser.parse_numbers called with
// the first match only).
func parseSubtotals(val string) ([]decimal.Decimal, error) {
	parts := strings.Fields(val)
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := numeric.ParseAmount(p)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", "subtotals", err)
		}
		out = append(out, d)
	}
	return out, nil
}
