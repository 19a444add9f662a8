package compiler

import (
	"strings"

	"github.com/DusanPaal/claim-management/internal/numeric"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/shopspring/decimal"
)

// TaxCodes is the per-company-code tax-rate → SAP tax-code table used by
// CreateStatusAC (spec.md §4.5 "Status-AC templating", original_source
// Claim._tax_codes).
var TaxCodes = map[string]map[string]decimal.Decimal{
	"1001": {"": decimal.Zero, "AB": decimal.NewFromInt(19), "AA": decimal.NewFromInt(16)},
	"0074": {"": decimal.Zero, "IG": decimal.NewFromFloat(7.7)},
	"1072": {"": decimal.Zero, "YR": decimal.NewFromInt(20)},
}

// CreateStatusSales formats the Status-Sales text: the document amount in
// German locale (thousands '.', decimal ',', no currency symbol),
// concatenated onto any previous Status-Sales text when genRule carries
// the "+=" accumulation operator (spec.md §4.5 "Status-Sales templating",
// original_source Claim.create_status_sales). It is invoked by the ERP
// Reconciler once the existing DMS text is known, not at compile time.
func CreateStatusSales(origStatusSales, genRule string, amount decimal.Decimal) (string, error) {
	if !strings.Contains(genRule, "<amount>") {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.CreateStatusSales", "placeholder <amount> not found in the formatting rule")
	}

	formatted := numeric.FormatGerman(amount)
	repl := strings.ReplaceAll(genRule, "<amount>", formatted)

	if !strings.Contains(repl, "+=") {
		return strings.TrimSpace(repl), nil
	}
	repl = strings.TrimSpace(strings.ReplaceAll(repl, "+=", ""))

	trimmed := strings.TrimSpace(origStatusSales)
	if trimmed != "" && strings.HasSuffix(trimmed, repl) {
		return trimmed, nil
	}

	return strings.TrimSpace(origStatusSales + " " + repl), nil
}

// CreateStatusAC resolves the "tax_code" placeholder of a Status-AC
// formatting rule against companyCode's tax-rate table. A missing tax
// rate (nil) erases the existing Status-AC text: returns ("", true)
// meaning "clear the field". The "+=" operator appends to origStatusAC
// instead of replacing it (spec.md §4.5 "Status-AC templating",
// original_source Claim.create_status_ac).
func CreateStatusAC(fmtRule string, companyCode string, taxRate *decimal.Decimal, origStatusAC string) (string, bool, error) {
	if fmtRule == "" {
		return "", false, nil
	}

	if taxRate == nil {
		return "", true, nil
	}

	rates, ok := TaxCodes[companyCode]
	if !ok {
		return "", false, pkgerrors.New(pkgerrors.KindFatal, "compiler.CreateStatusAC",
			"unrecognized company code: "+companyCode)
	}

	taxCode := ""
	found := false
	for code, rate := range rates {
		if rate.Equal(*taxRate) {
			taxCode, found = code, true
			break
		}
	}
	if !found {
		return "", false, pkgerrors.New(pkgerrors.KindFatal, "compiler.CreateStatusAC",
			"could not identify a tax code for tax rate "+taxRate.String()+" and company code "+companyCode)
	}

	result := strings.ReplaceAll(fmtRule, "tax_code", taxCode)

	if strings.Contains(result, "+=") {
		suffix := strings.TrimSpace(strings.ReplaceAll(result, "+=", ""))
		trimmedOrig := strings.TrimSpace(origStatusAC)
		if trimmedOrig != "" && strings.HasSuffix(trimmedOrig, suffix) {
			result = trimmedOrig
		} else {
			result = strings.TrimSpace(origStatusAC + " " + suffix)
		}
	}
	result = strings.TrimSpace(result)

	if result == "" {
		return "", true, nil
	}
	return result, false, nil
}
