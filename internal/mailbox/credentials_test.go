package mailbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentialsParsesKnownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nClient ID: abc\nClient Secret: shh\nTenant ID: t-1\n"), 0o644))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, Credentials{ClientID: "abc", ClientSecret: "shh", TenantID: "t-1"}, creds)
}

func TestLoadCredentialsRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.txt")
	require.NoError(t, os.WriteFile(path, []byte("Client ID: abc\nBogus Key: x\n"), 0o644))

	_, err := LoadCredentials(path)
	assert.Error(t, err)
}

func TestLoadCredentialsRejectsMissingField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.txt")
	require.NoError(t, os.WriteFile(path, []byte("Client ID: abc\n"), 0o644))

	_, err := LoadCredentials(path)
	assert.Error(t, err)
}
