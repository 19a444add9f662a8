package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DusanPaal/claim-management/internal/templates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRegistry(t *testing.T, dir string, files map[string]string) *templates.Registry {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	reg := templates.NewRegistry()
	require.NoError(t, reg.Load(dir))
	return reg
}

func TestExtractSimpleFields(t *testing.T) {
	dir := t.TempDir()
	reg := loadRegistry(t, dir, map[string]string{
		"markant/delivery.yml": `
issuer: markant
kind: debit
name: Delivery shortage
template_id: mk-del-0001
category: delivery
inclusive_keywords:
  - "(?i)delivery shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
  document_number: "Doc(?:ument)? no\\.?:\\s*(\\d+)"
`,
	})

	eng := NewEngine(reg)
	doc, err := eng.Extract("markant", "Delivery Shortage notice. Amount: 125,30 Doc no.: 123456789")
	require.NoError(t, err)
	assert.Equal(t, "MK-DEL-0001", doc.TemplateID)

	amount, ok := doc.Fields["amount"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromFloat(125.30)))
}

func TestExtractNoTemplateMatch(t *testing.T) {
	dir := t.TempDir()
	reg := loadRegistry(t, dir, map[string]string{
		"markant/delivery.yml": `
issuer: markant
kind: debit
name: Delivery shortage
template_id: mk-del-0001
category: delivery
inclusive_keywords:
  - "(?i)delivery shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
`,
	})

	eng := NewEngine(reg)
	_, err := eng.Extract("markant", "A completely unrelated letter.")
	assert.ErrorIs(t, err, ErrNoTemplateMatch)
}

func TestExtractAmbiguousTemplateMatch(t *testing.T) {
	dir := t.TempDir()
	reg := loadRegistry(t, dir, map[string]string{
		"markant/a.yml": `
issuer: markant
kind: debit
name: Template A
template_id: mk-aaa-0001
category: delivery
inclusive_keywords:
  - "shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
`,
		"markant/b.yml": `
issuer: markant
kind: debit
name: Template B
template_id: mk-bbb-0001
category: delivery
inclusive_keywords:
  - "shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
`,
	})

	eng := NewEngine(reg)
	_, err := eng.Extract("markant", "shortage notice. Amount: 10,00")
	require.Error(t, err)
}

func TestExtractMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	reg := loadRegistry(t, dir, map[string]string{
		"markant/delivery.yml": `
issuer: markant
kind: debit
name: Delivery shortage
template_id: mk-del-0001
category: delivery
inclusive_keywords:
  - "(?i)delivery shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
  document_number: "Doc no\\.:\\s*(\\d+)"
`,
	})

	eng := NewEngine(reg)
	_, err := eng.Extract("markant", "Delivery Shortage notice. Amount: 125,30")
	require.Error(t, err)
}
