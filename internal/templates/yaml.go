package templates

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fileSchema mirrors the extraction-template YAML file format
// (spec.md §6 "Extraction-template file (YAML)").
type fileSchema struct {
	Issuer            string         `yaml:"issuer"`
	Kind              string         `yaml:"kind"`
	Name              string         `yaml:"name"`
	TemplateID        string         `yaml:"template_id"`
	Category          interface{}    `yaml:"category"`
	InclusiveKeywords []string       `yaml:"inclusive_keywords"`
	ExclusiveKeywords []string       `yaml:"exclusive_keywords"`
	Options           *optionsSchema `yaml:"options"`
	Fields            orderedFields  `yaml:"fields"`
	OptionalFields    []string       `yaml:"optional_fields"`
}

type optionsSchema struct {
	RemoveWhitespace bool        `yaml:"remove_whitespace"`
	Lowercase        bool        `yaml:"lowercase"`
	Replace          [][2]string `yaml:"replace"`
	DateFormats      []string    `yaml:"date_formats"`
}

// orderedFields preserves the YAML mapping's declaration order, which
// matters because "items" must be evaluated after "amount" (spec.md §4.2
// step 5 note, grounded on original_source/app/svc_extractor/parsers.py).
type orderedFields struct {
	Names    []string
	Patterns map[string]interface{}
}

func (f *orderedFields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields: expected a mapping, got kind %d", node.Kind)
	}

	f.Patterns = make(map[string]interface{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("fields: invalid key: %w", err)
		}

		var val interface{}
		if err := valNode.Decode(&val); err != nil {
			return fmt.Errorf("fields.%s: %w", key, err)
		}

		f.Names = append(f.Names, key)
		f.Patterns[key] = val
	}

	return nil
}
