package extraction

import "github.com/DusanPaal/claim-management/internal/domain"

// ToStructured flattens a Document into the map[string]any shape the
// dedup store persists as Document Record.StructuredData, so the
// extractor and creator stages can round-trip a document across the
// stage boundary without re-running OCR/template matching.
func (d *Document) ToStructured() map[string]any {
	return map[string]any{
		"issuer":      d.Issuer,
		"name":        d.Name,
		"kind":        string(d.Kind),
		"template_id": d.TemplateID,
		"category":    string(d.Category),
		"fields":      d.Fields,
	}
}

// FromStructured rebuilds a Document from the shape ToStructured produces.
func FromStructured(data map[string]any) *Document {
	doc := &Document{
		Issuer:     stringOf(data["issuer"]),
		Name:       stringOf(data["name"]),
		Kind:       domain.Kind(stringOf(data["kind"])),
		TemplateID: stringOf(data["template_id"]),
		Category:   domain.Category(stringOf(data["category"])),
	}
	if fields, ok := data["fields"].(map[string]any); ok {
		doc.Fields = fields
	} else {
		doc.Fields = map[string]any{}
	}
	return doc
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
