// Package accountmap implements the Account Map loader (spec.md §4.4):
// reading a customer's source sheet (CSV, one row per supplier/business
// unit/account mapping), validating its column and value shape, and
// producing an immutable domain.AccountMap for lookup.
//
// Grounded on original_source/app/svc_creator/accmaps.py: AccountMap.__init__
// validates the same three things the Python original did against an
// Excel sheet (read via pandas) — only numeric "account" values, no
// columns beyond the mandatory set, and "business_unit" values that are
// either numeric or the literal "head_office" — against a CSV sheet
// instead, since the example corpus carries no spreadsheet library.
package accountmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/DusanPaal/claim-management/internal/domain"
)

var mandatoryColumns = map[string]bool{"supplier": true, "business_unit": true, "account": true}

// LoadCSV reads a customer's account-map sheet. The customer name is
// derived from path's base filename (e.g. "OBI_DE.csv" → "OBI_DE"),
// matching the original's `{customer}.xlsx` convention.
func LoadCSV(path string) (*domain.AccountMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("accountmap: open %s: %w", path, err)
	}
	defer f.Close()

	customer := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return load(customer, f)
}

// LoadDir reads every *.csv sheet in dir, keyed by the upper-cased
// customer name derived from each file's name (e.g. "obi_de.csv" →
// "OBI_DE"), matching the issuer key internal/pipeline's Creator looks
// account maps up by.
func LoadDir(dir string) (map[string]*domain.AccountMap, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("accountmap: read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(map[string]*domain.AccountMap, len(names))
	for _, name := range names {
		m, err := LoadCSV(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out[strings.ToUpper(m.Customer)] = m
	}
	return out, nil
}

func load(customer string, r io.Reader) (*domain.AccountMap, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("accountmap: %s: reading header: %w", customer, err)
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		colIdx[col] = i
		if !mandatoryColumns[col] {
			return nil, fmt.Errorf("accountmap: %s: unrecognized column %q", customer, col)
		}
	}
	if _, ok := colIdx["account"]; !ok {
		return nil, fmt.Errorf("accountmap: %s: column %q missing from the data", customer, "account")
	}

	rows := make(map[domain.AccountMapKey]int64)

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("accountmap: %s: reading row: %w", customer, err)
		}

		accountStr := strings.TrimSpace(rec[colIdx["account"]])
		account, err := strconv.ParseInt(accountStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("accountmap: %s: column %q contains a non-numeric entry %q", customer, "account", accountStr)
		}

		var supplier, businessUnit string
		if idx, ok := colIdx["supplier"]; ok {
			supplier = strings.TrimSpace(rec[idx])
		}
		if idx, ok := colIdx["business_unit"]; ok {
			businessUnit = strings.TrimSpace(rec[idx])
			if businessUnit != "" && businessUnit != domain.HeadOffice {
				if _, err := strconv.ParseInt(businessUnit, 10, 64); err != nil {
					return nil, fmt.Errorf("accountmap: %s: column %q contains a non-numeric entry %q", customer, "business_unit", businessUnit)
				}
			}
		}

		rows[domain.AccountMapKey{Supplier: supplier, BusinessUnit: businessUnit}] = account
	}

	return &domain.AccountMap{Customer: customer, Rows: rows}, nil
}
