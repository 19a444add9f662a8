// Package categorizer implements the Categorizer (spec.md §4.3):
// resolving a debit note's single business category from the
// user-applied message category, a per-issuer reason-keyword catalog,
// penalty sub-total/tax-rate arithmetic, or a line-item delivery/price
// ambiguity walk, tried in that order.
//
// Grounded on original_source/app/svc_extractor/categorizers.py, whose
// per-issuer Document subclasses are collapsed here into data
// (TemplateConfig, see catalog.go) driving one shared rule engine.
package categorizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCategoryApplied is returned when a user applies a message
// category outside the template's allowed set (spec.md §4.3 rule 1).
var ErrInvalidCategoryApplied = pkgerrors.New(pkgerrors.KindDataShape, "categorizer.Categorize", "user-applied category is not allowed by the template")

// ErrCategoryNotFound is returned when no rule resolves a category
// (spec.md §4.3 rule 5).
var ErrCategoryNotFound = pkgerrors.New(pkgerrors.KindBusinessWarning, "categorizer.Categorize", "no rule matched a category for the document")

// Categorizer resolves debit-note categories against a fixed
// template_id → TemplateConfig registry.
type Categorizer struct {
	configs map[string]TemplateConfig
}

// New builds a Categorizer over the built-in catalog/item-walk
// configuration for every known issuer template.
func New() *Categorizer {
	return &Categorizer{configs: defaultTemplateConfigs()}
}

// Categorize resolves doc's category (spec.md §4.3). userCategory is
// the message category the user applied to the email, if any; pass ""
// when none was applied. Credit notes have no category and must not be
// passed to Categorize.
func (c *Categorizer) Categorize(doc *extraction.Document, tmpl *domain.Template, userCategory domain.Category) (domain.Category, error) {
	if userCategory != "" {
		if !tmpl.AllowsCategory(userCategory) {
			return "", ErrInvalidCategoryApplied
		}
		return userCategory, nil
	}

	cfg, ok := c.configs[tmpl.TemplateID]
	if !ok {
		return "", pkgerrors.New(pkgerrors.KindFatal, "categorizer.Categorize",
			fmt.Sprintf("no categorization rule registered for template %q", tmpl.TemplateID))
	}

	if cat, ok := matchCatalog(cfg.Catalog, reasonText(doc.Fields["reason"])); ok {
		return c.allow(tmpl, cat)
	}

	if cfg.PenaltySubtotalSplit {
		if cat, ok := penaltyBySubtotalSplit(doc.Fields["subtotals"]); ok {
			return c.allow(tmpl, cat)
		}
	}

	if cfg.PenaltyTaxRateSplit {
		if cat, ok := penaltyByTaxRate(doc.Fields["tax"]); ok {
			return c.allow(tmpl, cat)
		}
	}

	if cfg.ItemWalk != nil {
		cat, err := walkItemDiff(doc.Fields["items"], *cfg.ItemWalk)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.KindDataShape, "categorizer.Categorize", err)
		}
		if cat != "" {
			return c.allow(tmpl, cat)
		}
	}

	if cfg.DefaultCategory != "" {
		return c.allow(tmpl, cfg.DefaultCategory)
	}

	return "", ErrCategoryNotFound
}

func (c *Categorizer) allow(tmpl *domain.Template, cat domain.Category) (domain.Category, error) {
	if !tmpl.AllowsCategory(cat) {
		return "", pkgerrors.New(pkgerrors.KindDataShape, "categorizer.Categorize",
			fmt.Sprintf("resolved category %q is not among template %q's allowed categories", cat, tmpl.TemplateID))
	}
	return cat, nil
}

// reasonText normalizes the "reason" field value (string or []string,
// see internal/extraction.coerceField) into one search string joined by
// "|" the way the Python original concatenated multiple reason matches
// before a single catalog scan (original_source BahagDocument._categorize_return).
func reasonText(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "|")
	default:
		return ""
	}
}

func matchCatalog(catalog []ReasonRule, reason string) (domain.Category, bool) {
	if reason == "" {
		return "", false
	}
	for _, rule := range catalog {
		for _, kwd := range rule.Keywords {
			re, err := regexp.Compile("(?i)" + kwd)
			if err != nil {
				continue
			}
			if re.MatchString(reason) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// penaltyBySubtotalSplit compares the two declared sub-totals
// (original_source BahagDocument._categorize_penalty).
func penaltyBySubtotalSplit(val any) (domain.Category, bool) {
	subtotals, ok := val.([]decimal.Decimal)
	if !ok || len(subtotals) != 2 {
		return "", false
	}
	delivQuote, delivDelay := subtotals[0], subtotals[1]
	switch {
	case delivQuote.Equal(delivDelay):
		return domain.CategoryPenaltyGeneral, true
	case delivQuote.GreaterThan(delivDelay):
		return domain.CategoryPenaltyQuote, true
	default:
		return domain.CategoryPenaltyDelay, true
	}
}

// penaltyByTaxRate derives a penalty sub-category from the declared tax
// rate(s), which must be drawn from {2%, 25%} (original_source
// ObiDocument._categorize_penalty).
func penaltyByTaxRate(val any) (domain.Category, bool) {
	var rates []decimal.Decimal
	switch v := val.(type) {
	case decimal.Decimal:
		rates = []decimal.Decimal{v}
	case []decimal.Decimal:
		rates = v
	default:
		return "", false
	}

	two := decimal.NewFromInt(2)
	twentyFive := decimal.NewFromInt(25)
	hasTwo, hasTwentyFive := false, false
	for _, r := range rates {
		switch {
		case r.Equal(two):
			hasTwo = true
		case r.Equal(twentyFive):
			hasTwentyFive = true
		default:
			return "", false
		}
	}

	switch {
	case hasTwo && hasTwentyFive:
		return domain.CategoryPenaltyGeneral, true
	case hasTwentyFive:
		return domain.CategoryPenaltyQuote, true
	case hasTwo:
		return domain.CategoryPenaltyDelay, true
	default:
		return "", false
	}
}

// walkItemDiff implements the delivery/price ambiguity walk
// (spec.md §4.3 rule 4): sum a pieces_diff (delivery-loss contribution)
// and a price_diff (pricing-mistake contribution) across item rows,
// and resolve to whichever is larger.
func walkItemDiff(val any, cfg ItemWalkConfig) (domain.Category, error) {
	rows, ok := val.([]map[string]decimal.Decimal)
	if !ok || len(rows) == 0 {
		return "", fmt.Errorf("walkItemDiff: items are required to categorize the document")
	}

	var piecesDiff, priceDiff decimal.Decimal
	for _, row := range rows {
		custPcs, custOK := row[cfg.CustPcsField]
		ledvPcs, ledvOK := row[cfg.LedvPcsField]
		custPrice, custPriceOK := row[cfg.CustPriceField]
		ledvPrice, ledvPriceOK := row[cfg.LedvPriceField]
		if !custOK || !ledvOK || !custPriceOK || !ledvPriceOK {
			return "", fmt.Errorf("walkItemDiff: item row is missing expected fields")
		}

		switch {
		case custPcs.GreaterThan(ledvPcs):
			if cfg.ErrorOnCustExceedsLedv {
				return "", fmt.Errorf("walkItemDiff: customer-received quantity cannot exceed the expected delivered quantity")
			}
		case custPcs.LessThan(ledvPcs):
			var diff decimal.Decimal
			if cfg.QtyWeightedPiecesDiff {
				diff = ledvPcs.Sub(custPcs).Mul(ledvPrice)
			} else {
				diff = ledvPrice.Sub(custPrice)
			}
			if cfg.AbsRound {
				diff = diff.Abs().Round(2)
			}
			piecesDiff = piecesDiff.Add(diff)
		default: // equal quantities: a pricing mistake
			var diff decimal.Decimal
			if cfg.CustPcsMultipliesPriceDiff {
				diff = ledvPrice.Sub(custPrice).Mul(custPcs)
			} else {
				diff = ledvPrice.Sub(custPrice)
			}
			if cfg.AbsRound {
				diff = diff.Abs().Round(2)
			}
			priceDiff = priceDiff.Add(diff)
		}
	}

	if priceDiff.GreaterThan(piecesDiff) {
		return domain.CategoryPrice, nil
	}
	return domain.CategoryDelivery, nil
}
