package categorizer

import "github.com/DusanPaal/claim-management/internal/domain"

// ReasonRule is one (category, keywords) entry of an ordered
// reason-keyword catalog (spec.md §4.3 rule 2).
type ReasonRule struct {
	Category domain.Category
	Keywords []string // case-insensitive regexes, any match wins
}

// ItemWalkConfig parameterizes the delivery/price ambiguity walk
// (spec.md §4.3 rule 4). Each issuer/template reconciles its line
// items into a different column layout via the Line-Item Reconciler
// (internal/lineitems), so the walk reads named fields rather than
// positional tuple indices.
//
// Grounded on original_source/app/svc_extractor/categorizers.py, where
// each *Document subclass re-implements this walk with slightly
// different field positions and diff arithmetic.
type ItemWalkConfig struct {
	CustPcsField, LedvPcsField     string
	CustPriceField, LedvPriceField string

	// QtyWeightedPiecesDiff selects the delivery-loss diff formula:
	// true:  diff = (ledv_pcs - cust_pcs) * ledv_price
	// false: diff = ledv_price - cust_price
	QtyWeightedPiecesDiff bool

	// CustPcsMultipliesPriceDiff selects the pricing-mistake diff formula:
	// true:  diff = (ledv_price - cust_price) * cust_pcs
	// false: diff = ledv_price - cust_price
	CustPcsMultipliesPriceDiff bool

	// AbsRound applies abs(round(diff, 2)) to both running totals.
	AbsRound bool

	// ErrorOnCustExceedsLedv raises when cust_pcs > ledv_pcs instead of
	// silently skipping the row.
	ErrorOnCustExceedsLedv bool
}

// TemplateConfig is the per-template_id categorization rule set
// (spec.md §4.3 rules 2-5).
type TemplateConfig struct {
	Catalog             []ReasonRule // rule 2, ordered, first match wins
	PenaltySubtotalSplit bool         // rule 3 variant a (Bahag): subtotals[0] vs subtotals[1]
	PenaltyTaxRateSplit  bool         // rule 3 variant b (Obi): tax field of 2%/25%/both
	ItemWalk             *ItemWalkConfig
	DefaultCategory      domain.Category // rule 5 fallback that is NOT an error
}

// bahagReturnCatalog is shared by Bahag's return-categorization templates
// (original_source categorizers.py: BahagDocument._catalog).
var bahagReturnCatalog = []ReasonRule{
	{Category: domain.CategoryRebuild, Keywords: []string{
		"altware", "umbau", "Aktualisierung", "Roll Out", "Sortimenswechsel",
	}},
	{Category: domain.CategoryQuality, Keywords: []string{
		"reklama[tc]ion", "defekt", "leuchtet nicht", "funk[tc]ioniert", "blinkelt", "kaputt", "kein Funktion",
	}},
	{Category: domain.CategoryReturn, Keywords: []string{
		"Label", "ERP Altlabel", "Energielabel", "Anweisung SCD", "ERP Richtlinie",
		"Retoure zu Reparaturauftrag", "Keine Modulware", "Im Markt vernichtet", "falsche Aufmachung",
		"Made in Russia", "vor Ort vernichten", "Retoure", "Sortimentsbereinigung", "Falschbestellung",
		"Ware vernichtet", "zurück", "Falschlieferung",
	}},
}

// hagebauCatalog (original_source categorizers.py: HagebauDocument._catalog).
var hagebauCatalog = []ReasonRule{
	{Category: domain.CategoryReturn, Keywords: []string{
		"Preisreduzierung / Abverkaufshilfe", "Rückgabe wiederverkaufsfähiger Ware",
		"Sortimentsbereinigung", "falsch bestellte Ware", "nicht bestellte Ware",
	}},
	{Category: domain.CategoryPrice, Keywords: []string{"Preisabweichung"}},
	{Category: domain.CategoryDelivery, Keywords: []string{
		"Lieferung unvollständig", "Verderb / Bruch bei Lieferung", "Annahme verweigert",
		"Paletten", "Fracht", "Verpackung",
	}},
	{Category: domain.CategoryInvoice, Keywords: []string{
		"Doppelberechnung ohne Doppellieferung", "Komplettlieferung fehlt", "Rabattabweichung", "Aufwand",
	}},
	{Category: domain.CategoryPenaltyGeneral, Keywords: []string{"Konventionalstrafe"}},
	{Category: domain.CategoryBonus, Keywords: []string{"WKZ"}},
}

// hitCatalog (original_source categorizers.py: HitDocument._catalog).
var hitCatalog = []ReasonRule{
	{Category: domain.CategoryDelivery, Keywords: []string{"Mengendifferenz", "nicht.*?geliefert"}},
	{Category: domain.CategoryPrice, Keywords: []string{"Abweichung.*Preise"}},
	{Category: domain.CategoryQuality, Keywords: []string{"Beschädigte Waren"}},
}

// markantCatalog (original_source categorizers.py: MarkantDocument._catalog).
var markantCatalog = []ReasonRule{
	{Category: domain.CategoryDelivery, Keywords: []string{
		"nicht geliefert", "kein Wareneingang", "Fehlmenge", "Mengenreklamation", "zu wenig geliefert",
	}},
	{Category: domain.CategoryPrice, Keywords: []string{"Betragsreklamation", "Abweichung Preise"}},
	{Category: domain.CategoryInvoice, Keywords: []string{
		"falschberechnung", "bereits belastet/vergütet",
		"(doppelt|mit Rechnung).*?(verrechnet|berechnet|abgerechnet)", "Abliefernachweis nicht erhalten",
	}},
	{Category: domain.CategoryFinance, Keywords: []string{"Verkaufsbelege"}},
	{Category: domain.CategoryPenaltyGeneral, Keywords: []string{`OTIF-P\?nale`}},
	{Category: domain.CategoryBonus, Keywords: []string{"Verkaufsförderung"}},
}

// markantWrReturnCatalog (original_source _categorize_wr_return).
var markantWrReturnCatalog = []ReasonRule{
	{Category: domain.CategoryQuality, Keywords: []string{"funktion", "defekt"}},
}

// markantBwlReturnCatalog (original_source _categorize_bwl_return).
var markantBwlReturnCatalog = []ReasonRule{
	{Category: domain.CategoryRebuild, Keywords: []string{"umbau"}},
}

// rollerRebuildCatalog (original_source categorizers.py: RollerDocument._catalog).
var rollerRebuildCatalog = []ReasonRule{
	{Category: domain.CategoryRebuild, Keywords: []string{"umbau", "altware", "lt. zentrale", "laut zentrale"}},
}

// Markant's quantityPriceDifference reconciliation rows (see
// internal/lineitems.quantityPriceDifference) name fields pcs_ordered /
// pcs_delivered / price_ordered / price_delivered.
var markantQtyPriceItemWalk = ItemWalkConfig{
	CustPcsField: "pcs_ordered", LedvPcsField: "pcs_delivered",
	CustPriceField: "price_ordered", LedvPriceField: "price_delivered",
	ErrorOnCustExceedsLedv: true,
}

// markantDebitnoteItemWalk backs the fallback leg of the generic Markant
// debit note, which applies the quantity-weighted delivery-loss formula
// and abs/round on both totals (original_source
// MarkantDocument._categorize_debitnote item loop).
var markantDebitnoteItemWalk = func() ItemWalkConfig {
	cfg := markantQtyPriceItemWalk
	cfg.QtyWeightedPiecesDiff = true
	cfg.AbsRound = true
	return cfg
}()

// markantBglDpItemWalk backs _categorize_bgl_dp_debitnote, which omits
// both the quantity weighting and the abs/round step.
var markantBglDpItemWalk = markantQtyPriceItemWalk

// obiDeliveryItemWalk reads the generic field_N rows produced by
// internal/lineitems.obiDelivery (original_source ObiDocument._categorize_delivery).
var obiDeliveryItemWalk = ItemWalkConfig{
	CustPcsField: "field_0", LedvPcsField: "field_3",
	CustPriceField: "field_2", LedvPriceField: "field_5",
	ErrorOnCustExceedsLedv: true,
}

// hornbachItemWalk reads internal/lineitems.hornbachDeliveryPrice rows
// (original_source HornbachDocument._categorize_rechnungskuerzung).
var hornbachItemWalk = ItemWalkConfig{
	CustPcsField: "n_delivered", LedvPcsField: "n_invoiced",
	CustPriceField: "amount_ordered", LedvPriceField: "amount_invoiced",
	CustPcsMultipliesPriceDiff: true,
	AbsRound:                   true,
}

// defaultTemplateConfigs is the issuer/template_id → categorization rule
// registry, grounded on original_source/app/svc_extractor/categorizers.py
// (the one Document subclass per issuer is collapsed into data driving
// the shared Categorizer, per the architecture note against
// re-introducing implicit per-issuer class inheritance).
func defaultTemplateConfigs() map[string]TemplateConfig {
	cfgs := map[string]TemplateConfig{
		// Bahag penalties: subtotal-split rule (deliv_quote vs deliv_delay).
		"101072AT002": {PenaltySubtotalSplit: true},
		"101001CZ002": {PenaltySubtotalSplit: true},
		"101001DE011": {PenaltySubtotalSplit: true},
		"101001LU016": {PenaltySubtotalSplit: true},
		// Bahag returns: rebuild/quality/return reason catalog, no default
		// (unmatched reason is a hard CategoryNotFoundError).
		"101001DE015": {Catalog: bahagReturnCatalog},
		"101072AT004": {Catalog: bahagReturnCatalog},

		// Hagebau debit notes share one catalog.
		"121001DE001": {Catalog: hagebauCatalog},
		"121072AT001": {Catalog: hagebauCatalog},
		"120074CH001": {Catalog: hagebauCatalog},

		// Hit debit notes.
		"131001DE001": {Catalog: hitCatalog},

		// Markant.
		"141001DE011": {Catalog: markantCatalog, ItemWalk: &markantDebitnoteItemWalk},
		"141001DE014": {DefaultCategory: domain.CategoryReturn},
		"141001DE008": {Catalog: markantWrReturnCatalog, DefaultCategory: domain.CategoryReturn},
		"141072AT004": {Catalog: markantWrReturnCatalog, DefaultCategory: domain.CategoryReturn},
		"141001DE007": {Catalog: markantBwlReturnCatalog, DefaultCategory: domain.CategoryReturn},
		"141001DE002": {ItemWalk: &markantBglDpItemWalk},
		"141001DE003": {ItemWalk: &markantBglDpItemWalk},
		"141001DE004": {Catalog: markantCatalog},
		"141072AT008": {Catalog: markantCatalog},
		"141072AT007": {Catalog: markantCatalog},

		// Obi.
		"161001DE005": {ItemWalk: &obiDeliveryItemWalk},
		"161072AT005": {PenaltyTaxRateSplit: true},
		"161001DE001": {PenaltyTaxRateSplit: true},
		"161072SI003": {PenaltyTaxRateSplit: true},

		// Roller.
		"171001DE001": {Catalog: rollerRebuildCatalog, DefaultCategory: domain.CategoryReturn},

		// Hornbach.
		"211072AT001": {ItemWalk: &hornbachItemWalk},
		"211001DE001": {ItemWalk: &hornbachItemWalk},
	}
	return cfgs
}
