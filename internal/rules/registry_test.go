package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRule(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRegistryLoadAndGet(t *testing.T) {
	dir := t.TempDir()
	issuerDir := filepath.Join(dir, "MARKANT")
	require.NoError(t, os.MkdirAll(issuerDir, 0o755))

	writeRule(t, issuerDir, "invoice.yaml", `
issuer: markant
template_id: MARKANT0001
kind: debit
company_code: "1001"
threshold: 50.0
tolerance: 0.01
category: invoice
case_search:
  title: "<case_id>"
claim_create:
  reference_by: [delivery, invoice]
  description: "claim for <amount>"
  processor: jdoe
  coordinator: asmith
  attachment_name: "<case_id>.pdf"
  status_ac: "N"
`)

	reg := NewRegistry()
	require.NoError(t, reg.Load(dir))

	rule, ok := reg.Get("MARKANT", "markant0001", domain.CategoryInvoice)
	require.True(t, ok)
	assert.Equal(t, "1001", rule.CompanyCode)
	assert.Equal(t, domain.KindDebit, rule.Kind)
	assert.Equal(t, []string{"delivery", "invoice"}, rule.ClaimCreate.ReferenceBy)
}

func TestRegistryLoadRejectsCaseAddForBonusCategory(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "bad.yaml", `
issuer: markant
template_id: MARKANT0002
kind: debit
company_code: "1001"
threshold: 50.0
tolerance: 0.01
category: bonus
case_add:
  description: "x"
`)

	reg := NewRegistry()
	err := reg.Load(dir)
	assert.Error(t, err)
}

func TestRegistryLoadRejectsCategoryForCredit(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "bad.yaml", `
issuer: markant
template_id: MARKANT0003
kind: credit
company_code: "1001"
threshold: 50.0
tolerance: 0.01
category: invoice
case_update:
  status_sales: "done"
`)

	reg := NewRegistry()
	err := reg.Load(dir)
	assert.Error(t, err)
}

func TestRegistryGetFallsBackToCategoryAgnosticRule(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "credit.yaml", `
issuer: obi
template_id: OBI_0000001
kind: credit
company_code: "1072"
threshold: 10.0
tolerance: 0.01
case_update:
  status_sales: "processed"
`)

	reg := NewRegistry()
	require.NoError(t, reg.Load(dir))

	rule, ok := reg.Get("OBI", "OBI_0000001", "")
	require.True(t, ok)
	assert.Equal(t, domain.KindCredit, rule.Kind)
}
