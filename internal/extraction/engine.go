// Package extraction implements the Extraction Engine (spec.md §4.2):
// selecting the one Template that matches a document's OCR text, then
// running each declared field's regex and per-field-type coercion to
// build structured data, and finally reconciling any "items" field
// against the declared amount through the Line-Item Reconciler.
//
// Grounded on original_source/app/svc_extractor/parsers.py: Template.extract,
// Template._match_patterns, Template.prepare_input.
package extraction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/lineitems"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/DusanPaal/claim-management/internal/templates"
	"github.com/shopspring/decimal"
)

// ErrNoTemplateMatch is returned when no template in the registry
// matches a document's normalized text for the given issuer.
var ErrNoTemplateMatch = pkgerrors.New(pkgerrors.KindDataShape, "extraction.Extract", "no template matched the document")

// ErrAmbiguousTemplateMatch is returned when more than one template
// matches (spec.md §8 boundary behavior: ambiguous matches fail rather
// than silently picking the first).
var ErrAmbiguousTemplateMatch = pkgerrors.New(pkgerrors.KindDataShape, "extraction.Extract", "more than one template matched the document")

// Document is the structured result of extracting one document's text
// against its matched template (spec.md §3 "structured_data").
type Document struct {
	Issuer     string
	Name       string
	Kind       domain.Kind
	TemplateID string
	Category   domain.Category
	Fields     map[string]any
}

// Engine runs template matching, field extraction, and line-item
// reconciliation against a fixed Template Registry and Line-Item
// Reconciler.
type Engine struct {
	templates *templates.Registry
	items     *lineitems.Registry
}

// NewEngine builds an Engine over a loaded Template Registry.
func NewEngine(reg *templates.Registry) *Engine {
	return &Engine{templates: reg, items: lineitems.NewRegistry()}
}

// Extract selects the template matching text for issuer and extracts
// its declared fields (spec.md §4.2).
func (e *Engine) Extract(issuer, text string) (*Document, error) {
	matches := e.templates.Match(issuer, text)
	switch len(matches) {
	case 0:
		return nil, ErrNoTemplateMatch
	case 1:
		// fall through
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.TemplateID
		}
		sort.Strings(ids)
		return nil, pkgerrors.Wrap(pkgerrors.KindDataShape, "extraction.Extract",
			fmt.Errorf("%w: %s", ErrAmbiguousTemplateMatch, strings.Join(ids, ", ")))
	}

	tmpl := matches[0]
	normalized := templates.Normalize(text, tmpl.Options)
	return e.extractWithTemplate(tmpl, normalized)
}

func (e *Engine) extractWithTemplate(tmpl *domain.Template, text string) (*Document, error) {
	out := &Document{
		Issuer:     tmpl.Issuer,
		Name:       tmpl.Name,
		Kind:       tmpl.Kind,
		TemplateID: tmpl.TemplateID,
		Fields:     make(map[string]any),
	}
	if len(tmpl.Categories) > 0 {
		out.Category = tmpl.Categories[0]
	}

	var missing []string

	for _, field := range tmpl.FieldOrder {
		pattern := tmpl.Fields[field]
		allowDuplicates := field == "items"
		groups := matchPatternGroups(text, pattern.Patterns, allowDuplicates)

		if len(groups) == 0 {
			if !tmpl.OptionalFields[field] {
				missing = append(missing, field)
			}
			continue
		}

		if field == "items" {
			rows := make([]lineitems.Row, len(groups))
			for i, g := range groups {
				rows[i] = lineitems.Row(g)
			}
			out.Fields[field] = rows
			continue
		}

		matches := firstGroupValues(groups)
		if len(matches) > 1 && domain.UniqueValueFields[field] {
			return nil, pkgerrors.New(pkgerrors.KindDataShape, "extraction.extractWithTemplate",
				fmt.Sprintf("field %q: expected a unique match, found %d", field, len(matches)))
		}

		val, err := coerceField(field, matches)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.KindDataShape, "extraction.extractWithTemplate", err)
		}
		out.Fields[field] = val
	}

	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.KindDataShape, "extraction.extractWithTemplate",
			fmt.Sprintf("required fields unmatched: %s", strings.Join(missing, ", ")))
	}

	if err := e.reconcileItems(tmpl, out); err != nil {
		if err == lineitems.ErrItemsNotReconciled {
			delete(out.Fields, "items")
		} else {
			return nil, err
		}
	}

	return out, nil
}

func (e *Engine) reconcileItems(tmpl *domain.Template, doc *Document) error {
	raw, ok := doc.Fields["items"].([]lineitems.Row)
	if !ok {
		return nil
	}
	amount, ok := doc.Fields["amount"].(decimal.Decimal)
	if !ok {
		return nil
	}
	reconciled, err := e.items.Reconcile(tmpl.TemplateID, raw, amount)
	if err != nil {
		return err
	}
	if reconciled != nil {
		doc.Fields["items"] = reconciled
	}
	return nil
}

// matchPatternGroups runs each candidate pattern in turn, returning the
// groups captured by the first pattern with ≥1 match (spec.md §3
// Template "fields" ordered-candidates rule), deduplicating rows unless
// duplicates is true (original_source Template._match_patterns). Each
// returned row is the pattern's captured groups in order, or the whole
// match when the pattern has no capture groups.
func matchPatternGroups(text string, patterns []string, duplicates bool) [][]string {
	var found [][]string
	for _, pat := range patterns {
		re := regexp.MustCompile(pat)
		raw := re.FindAllStringSubmatch(text, -1)
		if len(raw) == 0 {
			continue
		}
		for _, m := range raw {
			if len(m) > 1 {
				found = append(found, m[1:])
			} else {
				found = append(found, m)
			}
		}
		break
	}
	if !duplicates {
		found = dedupeRows(found)
	}
	return found
}

// firstGroupValues extracts each row's first captured value, the shape
// every non-"items" field uses.
func firstGroupValues(groups [][]string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		out = append(out, g[0])
	}
	return out
}

func dedupeRows(in [][]string) [][]string {
	seen := make(map[string]bool, len(in))
	out := make([][]string, 0, len(in))
	for _, row := range in {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
