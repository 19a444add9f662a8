package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRegistryLoadAndMatch(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, filepath.Join(root, "markant"), "delivery_shortage.yml", `
issuer: markant
kind: debit
name: Delivery shortage
template_id: mk-del-0001
category: delivery
inclusive_keywords:
  - "(?i)delivery shortage"
exclusive_keywords:
  - "(?i)credit note"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
  branch: "Branch:\\s*(\\d+)"
optional_fields:
  - branch
`)

	reg := NewRegistry()
	require.NoError(t, reg.Load(root))

	tmpl, ok := reg.Get("MK-DEL-0001")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryDelivery, tmpl.Categories[0])
	assert.True(t, tmpl.OptionalFields["branch"])
	assert.Equal(t, []string{"amount", "branch"}, tmpl.FieldOrder)

	matches := reg.Match("markant", "This is a Delivery Shortage notice.")
	require.Len(t, matches, 1)
	assert.Equal(t, "MK-DEL-0001", matches[0].TemplateID)

	noMatches := reg.Match("markant", "This is a Delivery Shortage notice but also a Credit Note.")
	assert.Empty(t, noMatches)
}

func TestRegistryLoadRejectsDuplicateTemplateID(t *testing.T) {
	root := t.TempDir()
	body := `
issuer: markant
kind: debit
name: Delivery shortage
template_id: mk-del-0001
category: delivery
inclusive_keywords:
  - "shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
`
	writeTemplate(t, filepath.Join(root, "markant"), "a.yml", body)
	writeTemplate(t, filepath.Join(root, "markant"), "b.yml", body)

	reg := NewRegistry()
	err := reg.Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template_id")
}

func TestRegistryLoadRejectsMissingCategoryForDebit(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, filepath.Join(root, "markant"), "a.yml", `
issuer: markant
kind: debit
name: Delivery shortage
template_id: mk-del-0002
inclusive_keywords:
  - "shortage"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
`)

	reg := NewRegistry()
	err := reg.Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")
}

func TestRegistryLoadRejectsOptionalFieldNotDeclared(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, filepath.Join(root, "markant"), "a.yml", `
issuer: markant
kind: credit
name: Return credit
template_id: mk-ret-0001
inclusive_keywords:
  - "return"
fields:
  amount: "Amount:\\s*([0-9.,-]+)"
optional_fields:
  - zip
`)

	reg := NewRegistry()
	err := reg.Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a declared field")
}
