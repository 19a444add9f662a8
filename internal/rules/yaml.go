package rules

import "github.com/DusanPaal/claim-management/internal/domain"

// fileSchema mirrors spec.md §6's "Processing-rule file (YAML)" schema
// verbatim.
type fileSchema struct {
	TemplateID  string      `yaml:"template_id"`
	Kind        string      `yaml:"kind"`
	CompanyCode string      `yaml:"company_code"`
	Threshold   float64     `yaml:"threshold"`
	Tolerance   float64     `yaml:"tolerance"`
	Category    string      `yaml:"category"`
	Issuer      string      `yaml:"issuer"`
	CaseSearch  caseSearch  `yaml:"case_search"`
	ClaimCreate *actionRule `yaml:"claim_create"`
	CaseAdd     *actionRule `yaml:"case_add"`
	CaseUpdate  *actionRule `yaml:"case_update"`
}

type caseSearch struct {
	Title               string `yaml:"title"`
	AccountSource       string `yaml:"account_source"`
	DisputedAmountField string `yaml:"disputed_amount_field"`
}

func (c caseSearch) toDomain() domain.CaseSearchRule {
	return domain.CaseSearchRule{
		Title:               c.Title,
		AccountSource:       c.AccountSource,
		DisputedAmountField: c.DisputedAmountField,
	}
}

type actionRule struct {
	ReferenceBy    []string `yaml:"reference_by"`
	ReferenceNo    string   `yaml:"reference_no"`
	Description    string   `yaml:"description"`
	Processor      string   `yaml:"processor"`
	Coordinator    string   `yaml:"coordinator"`
	Responsible    string   `yaml:"responsible"`
	AttachmentName string   `yaml:"attachment_name"`
	StatusAC       string   `yaml:"status_ac"`
	StatusSales    string   `yaml:"status_sales"`
	User           string   `yaml:"user"`
	AmountField    string   `yaml:"amount"`
}

func (a *actionRule) toDomain() domain.ActionRule {
	if a == nil {
		return domain.ActionRule{}
	}
	return domain.ActionRule{
		ReferenceBy:    a.ReferenceBy,
		ReferenceNo:    a.ReferenceNo,
		Description:    a.Description,
		Processor:      a.Processor,
		Coordinator:    a.Coordinator,
		Responsible:    a.Responsible,
		AttachmentName: a.AttachmentName,
		StatusAC:       a.StatusAC,
		StatusSales:    a.StatusSales,
		User:           a.User,
		AmountField:    a.AmountField,
	}
}
