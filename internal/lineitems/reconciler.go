// Package lineitems implements the Line-Item Reconciler (spec.md §4.2
// step 5, §3 "Processing Rule" line-item reconciliation law): given the
// raw item rows a Template extracted and the document's declared total
// amount, recompute each row's contribution and verify that the rows
// reconcile with the total within the issuer's tolerance.
//
// Each issuer/template combination reconciles items differently, so
// strategies are kept in a registry keyed by template_id rather than
// as methods on a class hierarchy (original_source/app/svc_extractor/
// parsers.py: MarkantParser, ObiParser, RollerParser, ToomParser,
// HornbachParser each implement a `parse_items` dispatcher).
package lineitems

import (
	"fmt"

	"github.com/DusanPaal/claim-management/internal/numeric"
	"github.com/shopspring/decimal"
)

// Row is a single extracted item's raw field values, in declaration order.
type Row []string

// ErrItemsNotReconciled signals that the reconciled item total did not
// match the document's declared amount within tolerance; the caller
// drops the "items" field rather than failing the whole extraction
// (spec.md §4.2 step 5: "on mismatch, items is dropped, not the document").
var ErrItemsNotReconciled = fmt.Errorf("lineitems: reconciled item total does not match document amount")

// Strategy reconciles a template's item rows against the document total.
// It returns the parsed rows (field name -> decimal value) in the same
// order as the input, or ErrItemsNotReconciled if the totals disagree.
type Strategy func(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error)

// Registry maps a template_id to the Strategy that reconciles its items.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds the registry of known line-item strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}

	// Markant debit templates: three template IDs, one identical
	// quantity/price-difference strategy (original_source parsers.py
	// MarkantParser._parse_bgl_debit/_parse_dp_debit/_parse_debit).
	for _, id := range []string{"141001DE002", "141001DE003", "141001DE011"} {
		r.strategies[id] = quantityPriceDifference
	}

	r.strategies["161001DE005"] = obiDelivery
	r.strategies["161001DE001"] = obiPenalty
	r.strategies["161072AT005"] = obiPenalty
	r.strategies["161001DE007"] = obiReturn
	r.strategies["171001DE001"] = rollerReturn
	r.strategies["181001DE001"] = toomReturn
	r.strategies["211072AT001"] = hornbachDeliveryPrice
	r.strategies["211001DE001"] = hornbachDeliveryPrice

	return r
}

// Reconcile looks up templateID's strategy and runs it. Templates with
// no registered strategy have no line-item reconciliation step; nil,
// nil is returned so callers keep "items" as extracted, unreconciled.
func (r *Registry) Reconcile(templateID string, rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	strategy, ok := r.strategies[templateID]
	if !ok {
		return nil, nil
	}
	return strategy(rows, amount)
}

// parseOrZero parses val with German conventions, substituting zero
// fallback when val is empty (original_source blank-field-as-zero
// defaulting ahead of each _parse_* loop).
func parseOrZero(val, fallback string) (decimal.Decimal, error) {
	if val == "" {
		val = fallback
	}
	return numeric.ParseAmount(val)
}

// quantityPriceDifference is the shared Markant debit strategy: each
// row carries a document-stated difference plus ordered/delivered
// quantities and prices; the calculated difference is cross-checked
// against the document-stated one, and abs(calc) is summed alongside
// the document-stated sum, the two together expected to equal 2x the
// document amount (original_source parsers.py _parse_bgl_debit et al.).
func quantityPriceDifference(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var docTotal, calcTotal decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))

	for _, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("lineitems: quantity/price row needs 5 fields, got %d", len(row))
		}

		docDiff, err := numeric.ParseAmount(row[0])
		if err != nil {
			return nil, err
		}
		pcsOrdered, err := parseOrZero(row[1], "0,000")
		if err != nil {
			return nil, err
		}
		pcsDelivered, err := parseOrZero(row[2], "0,000")
		if err != nil {
			return nil, err
		}
		priceOrdered, err := parseOrZero(row[3], "0,0000")
		if err != nil {
			return nil, err
		}
		priceDelivered, err := parseOrZero(row[4], "0,0000")
		if err != nil {
			return nil, err
		}

		result = append(result, map[string]decimal.Decimal{
			"doc_diff":        docDiff,
			"pcs_ordered":     pcsOrdered,
			"pcs_delivered":   pcsDelivered,
			"price_ordered":   priceOrdered,
			"price_delivered": priceDelivered,
		})

		var calcDiff decimal.Decimal
		switch {
		case pcsOrdered.IsZero() && pcsDelivered.IsZero() && priceDelivered.IsZero() && priceOrdered.IsZero():
			calcDiff = docDiff
		case pcsOrdered.IsZero() && pcsDelivered.IsZero():
			calcDiff = priceDelivered.Sub(priceOrdered)
		case priceDelivered.IsZero() && priceOrdered.IsZero():
			calcDiff = docDiff
		case pcsOrdered.Equal(pcsDelivered):
			calcDiff = priceDelivered.Sub(priceOrdered).Mul(pcsOrdered)
		case priceDelivered.Equal(priceOrdered):
			calcDiff = pcsOrdered.Sub(pcsDelivered).Mul(priceOrdered)
		default:
			calcDiff = pcsOrdered.Sub(pcsDelivered).Mul(priceDelivered.Sub(priceOrdered))
		}

		calcTotal = calcTotal.Add(calcDiff.Abs().Round(2))
		docTotal = docTotal.Add(docDiff)
	}

	docTotal = docTotal.Round(2)
	calcTotal = calcTotal.Round(2)

	if !docTotal.Add(calcTotal).Equal(amount.Mul(decimal.NewFromInt(2))) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}

// obiDelivery sums each row's (field index 5 - field index 2) difference
// and expects an exact match to amount (original_source _parse_delivery).
func obiDelivery(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var total decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))

	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("lineitems: delivery row needs 6 fields, got %d", len(row))
		}
		parsed := make([]decimal.Decimal, len(row))
		for i, val := range row {
			d, err := numeric.ParseAmount(val)
			if err != nil {
				return nil, err
			}
			parsed[i] = d
		}
		diff := parsed[5].Sub(parsed[2])
		total = total.Add(diff)
		result = append(result, map[string]decimal.Decimal{
			"field_0": parsed[0], "field_1": parsed[1], "field_2": parsed[2],
			"field_3": parsed[3], "field_4": parsed[4], "field_5": parsed[5],
		})
	}

	if !total.Round(2).Equal(amount) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}

// obiReturn treats a blank last field as a discount of zero and sums
// each row's final field (original_source _parse_return, Obi variant).
func obiReturn(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var total decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		parsed := make([]decimal.Decimal, len(row))
		for i, val := range row {
			if val == "" {
				parsed[i] = decimal.Zero
				continue
			}
			d, err := numeric.ParseAmount(val)
			if err != nil {
				return nil, err
			}
			parsed[i] = d
		}
		last := parsed[len(parsed)-1]
		total = total.Add(last)
		result = append(result, map[string]decimal.Decimal{"value": last})
	}

	if !total.Round(2).Equal(amount) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}

// obiPenalty requires each row's partial penalty to be either exactly
// 2% or 25% of its base item amount, rejecting the whole batch as soon
// as one row fails (original_source _parse_penalty).
func obiPenalty(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var total decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))

	for _, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("lineitems: penalty row needs 3 fields, got %d", len(row))
		}
		partialPenalty, err := numeric.ParseAmount(row[0])
		if err != nil {
			return nil, err
		}
		poNumber, err := numeric.ParseAmount(row[1])
		if err != nil {
			return nil, err
		}
		itemAmount, err := numeric.ParseAmount(row[2])
		if err != nil {
			return nil, err
		}
		if itemAmount.IsZero() {
			return nil, ErrItemsNotReconciled
		}

		rate := partialPenalty.Div(itemAmount).Mul(decimal.NewFromInt(100)).IntPart()
		if rate != 2 && rate != 25 {
			return nil, ErrItemsNotReconciled
		}

		total = total.Add(partialPenalty)
		result = append(result, map[string]decimal.Decimal{
			"partial_penalty": partialPenalty,
			"po_number":       poNumber,
			"item_amount":     itemAmount,
		})
	}

	if !total.Round(2).Equal(amount) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}

// rollerReturn requires a positive piece count, a tax rate of exactly
// 19% or 0%, and a positive gross amount per row (original_source
// RollerParser._parse_return).
func rollerReturn(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var total decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))

	for _, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("lineitems: return row needs 5 fields, got %d", len(row))
		}
		nPieces, err := numeric.ParseAmount(row[0])
		if err != nil {
			return nil, err
		}
		amountNet, err := numeric.ParseAmount(row[1])
		if err != nil {
			return nil, err
		}
		taxRate, err := numeric.ParseAmount(row[2])
		if err != nil {
			return nil, err
		}
		amountTax, err := numeric.ParseAmount(row[3])
		if err != nil {
			return nil, err
		}
		amountGross, err := numeric.ParseAmount(row[4])
		if err != nil {
			return nil, err
		}

		if !nPieces.IsPositive() {
			return nil, fmt.Errorf("lineitems: number of pieces must be positive, got %s", nPieces)
		}
		nineteen := decimal.NewFromInt(19)
		if !taxRate.Equal(nineteen) && !taxRate.IsZero() {
			return nil, fmt.Errorf("lineitems: incorrect tax rate %s", taxRate)
		}
		if !amountGross.IsPositive() {
			return nil, fmt.Errorf("lineitems: item gross amount must be positive, got %s", amountGross)
		}

		total = amountNet.Add(amountTax)
		result = append(result, map[string]decimal.Decimal{
			"n_pieces": nPieces, "amount_net": amountNet, "tax_rate": taxRate, "amount_gross": amountGross,
		})
	}

	if !total.Round(2).Equal(amount) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}

// relTolerance1Pct reports whether a and b agree within 1% relative
// tolerance (original_source math.isclose(..., rel_tol = 0.01)).
func relTolerance1Pct(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	tol := decimal.NewFromFloat(0.01).Mul(decimal.Max(a.Abs(), b.Abs()))
	return diff.LessThanOrEqual(tol)
}

// toomReturn sums amount_net * n_pieces * (1 + tax_rate/100) across rows
// and compares to amount within 1% relative tolerance
// (original_source ToomParser._parse_return).
func toomReturn(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var total decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))
	hundred := decimal.NewFromInt(100)
	one := decimal.NewFromInt(1)

	for _, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("lineitems: toom return row needs 3 fields, got %d", len(row))
		}
		taxRate, err := numeric.ParseAmount(row[0])
		if err != nil {
			return nil, err
		}
		nPieces, err := numeric.ParseAmount(row[1])
		if err != nil {
			return nil, err
		}
		amountNet, err := numeric.ParseAmount(row[2])
		if err != nil {
			return nil, err
		}

		gross := amountNet.Mul(nPieces).Mul(one.Add(taxRate.Div(hundred)))
		total = total.Add(gross)
		result = append(result, map[string]decimal.Decimal{
			"tax_rate": taxRate, "n_pieces": nPieces, "amount_net": amountNet,
		})
	}

	if !relTolerance1Pct(total, amount) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}

// hornbachDeliveryPrice reconciles article-level delivered/invoiced
// quantity and price deltas against the document gross amount within
// 1% relative tolerance (original_source HornbachParser._parse_delivery_price).
func hornbachDeliveryPrice(rows []Row, amount decimal.Decimal) ([]map[string]decimal.Decimal, error) {
	var total decimal.Decimal
	result := make([]map[string]decimal.Decimal, 0, len(rows))
	hundred := decimal.NewFromInt(100)
	one := decimal.NewFromInt(1)

	for _, row := range rows {
		if len(row) < 8 {
			return nil, fmt.Errorf("lineitems: delivery/price row needs 8 fields, got %d", len(row))
		}

		articleNum, _, err := numeric.ParseAmountMode(row[0], numeric.ModeDevaluate)
		if err != nil {
			return nil, err
		}
		delivNum, err := numeric.ParseAmount(row[1])
		if err != nil {
			return nil, err
		}
		nDelivered, err := numeric.ParseAmount(row[2])
		if err != nil {
			return nil, err
		}
		nInvoiced, err := numeric.ParseAmount(row[3])
		if err != nil {
			return nil, err
		}
		amountOrdered, err := numeric.ParseAmount(row[4])
		if err != nil {
			return nil, err
		}
		amountInvoiced, err := numeric.ParseAmount(row[5])
		if err != nil {
			return nil, err
		}
		itemNetAmount, err := numeric.ParseAmount(row[6])
		if err != nil {
			return nil, err
		}
		taxRate, err := numeric.ParseAmount(row[7])
		if err != nil {
			return nil, err
		}

		result = append(result, map[string]decimal.Decimal{
			"article_num": articleNum, "deliv_num": delivNum, "n_delivered": nDelivered,
			"n_invoiced": nInvoiced, "amount_ordered": amountOrdered, "amount_invoiced": amountInvoiced,
			"item_net_amount": itemNetAmount, "tax_rate": taxRate,
		})

		if amountInvoiced.Equal(amountOrdered) {
			amountInvoiced = decimal.Zero
		}
		gross := nInvoiced.Sub(nDelivered).Mul(amountInvoiced.Add(amountOrdered)).Mul(one.Add(taxRate.Div(hundred)))
		total = total.Add(gross)
	}

	if !relTolerance1Pct(total, amount) {
		return nil, ErrItemsNotReconciled
	}
	return result, nil
}
