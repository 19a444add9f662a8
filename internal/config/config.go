// Package config is the YAML application configuration (SPEC_FULL.md §3:
// "a single config.App struct is decoded once at each stage's cmd/
// entrypoint and threaded down — no globals"), grounded on
// msto63-mDW/foundation/core/config's struct-tag-driven decode (that
// package supports multiple formats; this one fixes on YAML per
// SPEC_FULL.md §3, since the spec's own template/rule files are YAML).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App is the root configuration for every stage binary. Each stage only
// reads the sections it needs, but all stages decode the same file so
// operators maintain one config per environment.
type App struct {
	Mailbox     Mailbox     `yaml:"mailbox"`
	Blobstore   Blobstore   `yaml:"blobstore"`
	OCR         OCR         `yaml:"ocr"`
	ERP         ERP         `yaml:"erp"`
	Dedup       Dedup       `yaml:"dedup"`
	Archive     Archive     `yaml:"archive"`
	Logging     Logging     `yaml:"logging"`
	Templates   Templates   `yaml:"templates"`
	Rules       Rules       `yaml:"rules"`
	AccountMaps AccountMaps `yaml:"account_maps"`
	Control     Control     `yaml:"control"`
}

// Templates points at the directory of extraction-template YAML files
// (spec.md §6 "Extraction-template file (YAML)") loaded once at stage
// startup.
type Templates struct {
	Dir string `yaml:"dir"`
}

// Rules points at the directory of processing-rule YAML files (spec.md
// §6 "Processing-rule file (YAML)") loaded once at stage startup.
type Rules struct {
	Dir string `yaml:"dir"`
}

// AccountMaps points at the directory of per-customer account-map CSV
// sheets (spec.md §4.4), one file per issuer.
type AccountMaps struct {
	Dir string `yaml:"dir"`
}

// Control points at the directory holding each stage's per-process
// cancel file (spec.md §3 Pipeline Lock, §4.8 Soft cancellation).
type Control struct {
	Dir string `yaml:"dir"`
}

// Mailbox is the EWS/OAuth2 connection the downloader and dispatcher
// stages use (spec.md §6: "mailbox client (EWS over OAuth2)").
type Mailbox struct {
	Identity     string `yaml:"identity"`
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	InboxFolder  string `yaml:"inbox_folder"`
}

// Blobstore configures the artifact backing store (spec.md §6: "blob
// store"). Root is a virtual-path prefix for the filesystem-backed
// implementation used in local development.
type Blobstore struct {
	Root string `yaml:"root"`
}

// OCR configures the PDF-to-text HTTP boundary (spec.md §6: "OCR service
// (HTTP)").
type OCR struct {
	BaseURL     string `yaml:"base_url"`
	AccessToken string `yaml:"access_token"`
}

// ERP configures the RFC/BAPI connection (spec.md §6: "ERP client
// (RFC/BAPI over a connection pool)").
type ERP struct {
	CompanyCode string `yaml:"company_code"`
	SystemID    string `yaml:"system_id"`
	Client      string `yaml:"client"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
}

// Dedup configures the Document Record store (spec.md §4.7).
type Dedup struct {
	DSN string `yaml:"dsn"`
}

// Archive configures the retention policy the archiver stage applies
// (spec.md §4.8: "completed credit notes older than retention move to
// archived").
type Archive struct {
	Retention time.Duration `yaml:"retention"`
}

// Logging configures the stage's structured logger.
type Logging struct {
	Verbose bool `yaml:"verbose"`
}

// Load reads and decodes path into an App. Missing optional sections
// decode to their zero values; required fields are validated by the
// caller once the stage's dependent clients are constructed, not here.
func Load(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var app App
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &app, nil
}
