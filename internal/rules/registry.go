// Package rules implements the Processing Rule registry (spec.md §6
// "Processing-rule file (YAML)"): loading per-issuer/template_id rules
// that drive the Claim Compiler's claim_create/case_add/case_update
// sections, grounded on internal/templates/registry.go's walk-and-load
// shape.
package rules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// LoadError reports a rule file that failed schema validation.
type LoadError struct {
	File   string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules: %s: %s", e.File, e.Reason)
}

// Registry is an in-memory, read-only-after-Load collection of
// Processing Rules, keyed by (issuer, template_id, category).
type Registry struct {
	byKey map[key]*domain.ProcessingRule
}

type key struct {
	issuer     string
	templateID string
	category   domain.Category
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[key]*domain.ProcessingRule)}
}

// Load walks dir for *.yml/*.yaml files, one issuer per subdirectory,
// mirroring the Template Registry's layout convention.
func (r *Registry) Load(dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yml" || ext == ".yaml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rules: walk %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		rule, err := r.loadFile(path)
		if err != nil {
			return err
		}
		k := key{issuer: rule.Issuer, templateID: rule.TemplateID, category: rule.Category}
		if _, dup := r.byKey[k]; dup {
			return &LoadError{File: path, Reason: fmt.Sprintf("duplicate rule for issuer=%s template_id=%s category=%s", rule.Issuer, rule.TemplateID, rule.Category)}
		}
		r.byKey[k] = rule
	}
	return nil
}

func (r *Registry) loadFile(path string) (*domain.ProcessingRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("invalid yaml: %v", err)}
	}

	if len(schema.TemplateID) != 11 {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("template_id must be 11 characters, got %q", schema.TemplateID)}
	}
	kind := domain.Kind(strings.ToLower(schema.Kind))
	if kind != domain.KindDebit && kind != domain.KindCredit {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("kind must be debit or credit, got %q", schema.Kind)}
	}
	if !domain.ValidCompanyCodes[schema.CompanyCode] {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("company_code %q is outside the closed set", schema.CompanyCode)}
	}

	var category domain.Category
	if schema.Category != "" {
		if kind == domain.KindCredit {
			return nil, &LoadError{File: path, Reason: "category is forbidden for kind=credit"}
		}
		category = domain.Category(schema.Category)
	}

	threshold, err := decimal.NewFromString(fmt.Sprint(schema.Threshold))
	if err != nil {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("invalid threshold: %v", err)}
	}
	tolerance, err := decimal.NewFromString(fmt.Sprint(schema.Tolerance))
	if err != nil {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("invalid tolerance: %v", err)}
	}

	if schema.CaseAdd != nil && (category == domain.CategoryBonus || category == domain.CategoryPromo || category == domain.CategoryQuality) {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("case_add is forbidden for category %q", category)}
	}

	return &domain.ProcessingRule{
		Issuer:      strings.ToUpper(schema.Issuer),
		TemplateID:  strings.ToUpper(schema.TemplateID),
		Category:    category,
		CompanyCode: schema.CompanyCode,
		Threshold:   threshold,
		Tolerance:   tolerance,
		Kind:        kind,
		CaseSearch:  schema.CaseSearch.toDomain(),
		ClaimCreate: schema.ClaimCreate.toDomain(),
		CaseAdd:     schema.CaseAdd.toDomain(),
		CaseUpdate:  schema.CaseUpdate.toDomain(),
	}, nil
}

// Get returns the rule matching (issuer, templateID, category), falling
// back to the category-agnostic rule (empty Category) if no exact match
// exists.
func (r *Registry) Get(issuer, templateID string, category domain.Category) (*domain.ProcessingRule, bool) {
	issuer = strings.ToUpper(issuer)
	templateID = strings.ToUpper(templateID)
	if rule, ok := r.byKey[key{issuer, templateID, category}]; ok {
		return rule, true
	}
	rule, ok := r.byKey[key{issuer, templateID, ""}]
	return rule, ok
}
