package compiler

import (
	"testing"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/extraction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markantQMRule() *domain.ProcessingRule {
	return &domain.ProcessingRule{
		Issuer:      "MARKANT_DE",
		TemplateID:  "141001DE011",
		CompanyCode: "1001",
		Threshold:   decimal.NewFromInt(500),
		Tolerance:   decimal.NewFromFloat(0.01),
		Kind:        domain.KindDebit,
		CaseSearch:  domain.CaseSearchRule{Title: "Claim <invoice_number>"},
		ClaimCreate: domain.ActionRule{
			ReferenceBy:    []string{"invoice_number", "delivery_number", "account_number", "head_office_number"},
			Description:    "Claim <invoice_number>",
			Processor:      "proc1",
			Coordinator:    "coord1",
			AttachmentName: "case_<case_id>.pdf",
		},
		CaseAdd: domain.ActionRule{
			Description:    "Extend claim <invoice_number>",
			Processor:      "proc1",
			Coordinator:    "coord1",
			AttachmentName: "case_<case_id>.pdf",
		},
	}
}

func TestCompileQMDebitNote(t *testing.T) {
	doc := &extraction.Document{
		Issuer:     "MARKANT_DE",
		Kind:       domain.KindDebit,
		TemplateID: "141001DE011",
		Fields: map[string]any{
			"invoice_number": decimal.NewFromInt(123456789),
			"amount":         decimal.NewFromFloat(100.00),
			"supplier":       "4711",
		},
	}

	ctx, err := Compile(Input{
		Document:     doc,
		UserCategory: domain.CategoryDelivery,
		Rule:         markantQMRule(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionQM, ctx.Header.Transaction)
	assert.Equal(t, "Claim 123456789", ctx.Search.Title)
	require.NotNil(t, ctx.Create)
	assert.Equal(t, domain.ReferenceInvoice, ctx.Create.Reference.Kind)
	assert.Equal(t, "Claim 123456789", ctx.Create.Description)
	require.NotNil(t, ctx.Extend)
	assert.Equal(t, "Extend claim 123456789", ctx.Extend.Description)
	assert.Nil(t, ctx.CaseUpdate)
}

func TestCompileDMSCreditNote(t *testing.T) {
	doc := &extraction.Document{
		Issuer:     "HORNBACH_DE",
		Kind:       domain.KindCredit,
		TemplateID: "211001DE001",
		Fields: map[string]any{
			"amount":     decimal.NewFromFloat(250.75),
			"identifier": "INV-2020",
		},
	}
	rule := &domain.ProcessingRule{
		Issuer:      "HORNBACH_DE",
		TemplateID:  "211001DE001",
		CompanyCode: "1072",
		Threshold:   decimal.NewFromInt(500),
		Tolerance:   decimal.NewFromFloat(0.01),
		Kind:        domain.KindCredit,
		CaseSearch:  domain.CaseSearchRule{Title: "Credit note <identifier>"},
		CaseUpdate: domain.ActionRule{
			StatusSales: "Status <amount>",
			StatusAC:    "tax_code",
			AmountField: "amount",
		},
	}

	ctx, err := Compile(Input{Document: doc, Rule: rule})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionDMS, ctx.Header.Transaction)
	assert.Equal(t, "Credit note INV-2020", ctx.Search.Title)
	require.NotNil(t, ctx.CaseUpdate)
	assert.True(t, decimal.NewFromFloat(250.75).Equal(ctx.CaseUpdate.CreditAmount))
	assert.Nil(t, ctx.Create)
}

func TestCompileRejectsUnrecognizedCompanyCode(t *testing.T) {
	doc := &extraction.Document{Issuer: "MARKANT_DE", Kind: domain.KindDebit, TemplateID: "141001DE011", Fields: map[string]any{}}
	rule := markantQMRule()
	rule.CompanyCode = "9999"

	_, err := Compile(Input{Document: doc, UserCategory: domain.CategoryDelivery, Rule: rule})
	assert.Error(t, err)
}
