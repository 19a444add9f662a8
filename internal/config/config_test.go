package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDecodesAllSections(t *testing.T) {
	yamlDoc := `
mailbox:
  identity: claims@example.com
  tenant_id: tenant-1
  client_id: client-1
  client_secret: secret
  inbox_folder: Inbox
blobstore:
  root: /var/claims/blobs
ocr:
  base_url: https://ocr.internal
  access_token: tok
erp:
  company_code: "1000"
  system_id: PRD
  client: "100"
  user: svc_claims
  password: pw
dedup:
  dsn: /var/claims/dedup.db
archive:
  retention: 2160h
logging:
  verbose: true
templates:
  dir: /etc/claims/templates
rules:
  dir: /etc/claims/rules
account_maps:
  dir: /etc/claims/account_maps
control:
  dir: /var/claims/control
`
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	app, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claims@example.com", app.Mailbox.Identity)
	assert.Equal(t, "/var/claims/blobs", app.Blobstore.Root)
	assert.Equal(t, "https://ocr.internal", app.OCR.BaseURL)
	assert.Equal(t, "1000", app.ERP.CompanyCode)
	assert.Equal(t, "/var/claims/dedup.db", app.Dedup.DSN)
	assert.Equal(t, 2160*time.Hour, app.Archive.Retention)
	assert.True(t, app.Logging.Verbose)
	assert.Equal(t, "/etc/claims/templates", app.Templates.Dir)
	assert.Equal(t, "/etc/claims/rules", app.Rules.Dir)
	assert.Equal(t, "/etc/claims/account_maps", app.AccountMaps.Dir)
	assert.Equal(t, "/var/claims/control", app.Control.Dir)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mailbox: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
