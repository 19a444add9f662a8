// Package templates implements the Template Registry (spec.md §4.1):
// loading extraction templates from YAML, validating their header
// contract, and matching a normalized document text against the
// registry to find the one template that should extract it.
package templates

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadError reports a template file that failed the header/category
// validation contract (spec.md §4.1 "Validation contract").
type LoadError struct {
	File   string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("templates: %s: %s", e.File, e.Reason)
}

// validCategory reports whether c is in the closed set of category values
// a debit template may declare (domain.AllCategories, spec.md §3 "Category").
func validCategory(c string) bool {
	_, ok := domain.AllCategories[domain.Category(c)]
	return ok
}

// Registry is an in-memory, read-only-after-Load collection of
// templates, grouped by issuer and ordered by declaration order within
// each issuer's directory (spec.md §4.1).
type Registry struct {
	byID       map[string]*domain.Template
	byIssuer   map[string][]*domain.Template
}

// NewRegistry returns an empty registry. Call Load to populate it.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]*domain.Template),
		byIssuer: make(map[string][]*domain.Template),
	}
}

// Load walks dir for *.yml/*.yaml files, one issuer per subdirectory,
// and populates the registry. It fails fast on the first LoadError
// encountered (spec.md §4.1).
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
		return fmt.Errorf("templates: walk %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		tmpl, err := r.loadFile(path)
		if err != nil {
			return err
		}
		if _, dup := r.byID[tmpl.TemplateID]; dup {
			return &LoadError{File: path, Reason: fmt.Sprintf("duplicate template_id %q", tmpl.TemplateID)}
		}
		r.byID[tmpl.TemplateID] = tmpl
		r.byIssuer[tmpl.Issuer] = append(r.byIssuer[tmpl.Issuer], tmpl)
	}
	return nil
}

func (r *Registry) loadFile(path string) (*domain.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", path, err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("invalid yaml: %v", err)}
	}

	if schema.Issuer == "" || schema.Kind == "" || schema.Name == "" || schema.TemplateID == "" {
		return nil, &LoadError{File: path, Reason: "missing one of header fields: issuer, kind, name, template_id"}
	}

	issuer := strings.ToUpper(strings.TrimSpace(schema.Issuer))
	kind := domain.Kind(strings.ToLower(strings.TrimSpace(schema.Kind)))
	templateID := strings.ToUpper(strings.TrimSpace(schema.TemplateID))

	if kind != domain.KindDebit && kind != domain.KindCredit {
		return nil, &LoadError{File: path, Reason: fmt.Sprintf("kind must be debit or credit, got %q", schema.Kind)}
	}

	categories, err := parseCategories(schema.Category, kind)
	if err != nil {
		return nil, &LoadError{File: path, Reason: err.Error()}
	}

	if len(schema.InclusiveKeywords) == 0 {
		return nil, &LoadError{File: path, Reason: "inclusive_keywords is required and must be non-empty"}
	}
	for _, pat := range schema.InclusiveKeywords {
		if _, err := regexp.Compile(pat); err != nil {
			return nil, &LoadError{File: path, Reason: fmt.Sprintf("invalid inclusive_keywords pattern %q: %v", pat, err)}
		}
	}
	for _, pat := range schema.ExclusiveKeywords {
		if _, err := regexp.Compile(pat); err != nil {
			return nil, &LoadError{File: path, Reason: fmt.Sprintf("invalid exclusive_keywords pattern %q: %v", pat, err)}
		}
	}

	optional := make(map[string]bool, len(schema.OptionalFields))
	for _, f := range schema.OptionalFields {
		if _, declared := schema.Fields.Patterns[f]; !declared {
			return nil, &LoadError{File: path, Reason: fmt.Sprintf("optional_fields entry %q is not a declared field", f)}
		}
		optional[f] = true
	}

	fields := make(map[string]domain.FieldPattern, len(schema.Fields.Names))
	for _, name := range schema.Fields.Names {
		fp, err := parseFieldPattern(name, schema.Fields.Patterns[name])
		if err != nil {
			return nil, &LoadError{File: path, Reason: err.Error()}
		}
		fields[name] = fp
	}

	opts := domain.Options{}
	if schema.Options != nil {
		opts = domain.Options{
			RemoveWhitespace: schema.Options.RemoveWhitespace,
			Lowercase:        schema.Options.Lowercase,
			Replace:          schema.Options.Replace,
			DateFormats:      schema.Options.DateFormats,
		}
	}

	return &domain.Template{
		TemplateID:        templateID,
		Issuer:            issuer,
		Kind:              kind,
		Name:              schema.Name,
		Categories:        categories,
		InclusiveKeywords: schema.InclusiveKeywords,
		ExclusiveKeywords: schema.ExclusiveKeywords,
		Fields:            fields,
		FieldOrder:        schema.Fields.Names,
		OptionalFields:    optional,
		Options:           opts,
	}, nil
}

// parseCategories validates the category header field. Debit templates
// must declare at least one category drawn from the closed set; credit
// templates must not declare one (spec.md §4.1).
func parseCategories(raw interface{}, kind domain.Kind) ([]domain.Category, error) {
	if kind == domain.KindCredit {
		if raw != nil {
			return nil, fmt.Errorf("category must be absent for kind=credit")
		}
		return nil, nil
	}

	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("category is required for kind=debit")
	case string:
		if !validCategory(v) {
			return nil, fmt.Errorf("category %q is outside the closed set", v)
		}
		return []domain.Category{domain.Category(v)}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("category is required for kind=debit")
		}
		out := make([]domain.Category, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok || !validCategory(s) {
				return nil, fmt.Errorf("category %v is outside the closed set", item)
			}
			out = append(out, domain.Category(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("category has an unsupported shape: %v", raw)
	}
}

// parseFieldPattern accepts either a single regex string or an ordered
// list of candidate regexes (spec.md §3 Template "fields").
func parseFieldPattern(name string, raw interface{}) (domain.FieldPattern, error) {
	switch v := raw.(type) {
	case string:
		if _, err := regexp.Compile(v); err != nil {
			return domain.FieldPattern{}, fmt.Errorf("fields.%s: invalid pattern: %v", name, err)
		}
		return domain.FieldPattern{Patterns: []string{v}}, nil
	case []interface{}:
		pats := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return domain.FieldPattern{}, fmt.Errorf("fields.%s: candidate patterns must be strings", name)
			}
			if _, err := regexp.Compile(s); err != nil {
				return domain.FieldPattern{}, fmt.Errorf("fields.%s: invalid pattern %q: %v", name, s, err)
			}
			pats = append(pats, s)
		}
		return domain.FieldPattern{Patterns: pats}, nil
	default:
		return domain.FieldPattern{}, fmt.Errorf("fields.%s: unsupported pattern shape", name)
	}
}

// Get looks up a template by its (upper-cased) template_id.
func (r *Registry) Get(templateID string) (*domain.Template, bool) {
	t, ok := r.byID[strings.ToUpper(templateID)]
	return t, ok
}

// Match returns, in declaration order, every template belonging to
// issuer whose inclusive_keywords all find at least one match in text
// and whose exclusive_keywords find none (spec.md §4.1 "Matching").
// The caller is responsible for treating len(result) > 1 as ambiguous
// (spec.md §8 boundary behavior).
func (r *Registry) Match(issuer, text string) []*domain.Template {
	issuer = strings.ToUpper(strings.TrimSpace(issuer))
	var out []*domain.Template
	for _, tmpl := range r.byIssuer[issuer] {
		normalized := Normalize(text, tmpl.Options)
		if matchesKeywords(normalized, tmpl) {
			out = append(out, tmpl)
		}
	}
	return out
}

// Normalize applies a template's text-normalization options before
// keyword matching and field extraction (spec.md §4.1, §4.2 step 2).
func Normalize(text string, opts domain.Options) string {
	for _, pair := range opts.Replace {
		re, err := regexp.Compile(pair[0])
		if err != nil {
			continue
		}
		text = re.ReplaceAllString(text, pair[1])
	}
	if opts.RemoveWhitespace {
		text = strings.Join(strings.Fields(text), "")
	}
	if opts.Lowercase {
		text = strings.ToLower(text)
	}
	return text
}

func matchesKeywords(text string, tmpl *domain.Template) bool {
	for _, pat := range tmpl.InclusiveKeywords {
		re := regexp.MustCompile(pat)
		if !re.MatchString(text) {
			return false
		}
	}
	for _, pat := range tmpl.ExclusiveKeywords {
		re := regexp.MustCompile(pat)
		if re.MatchString(text) {
			return false
		}
	}
	return true
}
