package accountmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadResolvesSupplierAndBusinessUnit(t *testing.T) {
	csv := "supplier,business_unit,account\n100,200,12345\n,head_office,99999\n"
	m, err := load("OBI_DE", strings.NewReader(csv))
	require.NoError(t, err)

	acc, ok := m.Lookup("100", "200")
	require.True(t, ok)
	assert.Equal(t, int64(12345), acc)

	hoAcc, ok := m.HeadOfficeAccount()
	require.True(t, ok)
	assert.Equal(t, int64(99999), hoAcc)
}

func TestLoadRejectsUnrecognizedColumn(t *testing.T) {
	csv := "supplier,business_unit,account,extra\n100,200,12345,oops\n"
	_, err := load("OBI_DE", strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLoadRejectsNonNumericAccount(t *testing.T) {
	csv := "supplier,business_unit,account\n100,200,ABC\n"
	_, err := load("OBI_DE", strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidBusinessUnit(t *testing.T) {
	csv := "supplier,business_unit,account\n100,not_numeric,12345\n"
	_, err := load("OBI_DE", strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLoadMarkantSupplierOnly(t *testing.T) {
	csv := "supplier,account\n555,42\n"
	m, err := load("MARKANT_DE", strings.NewReader(csv))
	require.NoError(t, err)
	acc, ok := m.Lookup("555", "")
	require.True(t, ok)
	assert.Equal(t, int64(42), acc)
}

func TestLoadDirKeysByUppercasedFileName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obi_de.csv"), []byte("supplier,account\n1,10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markant_de.csv"), []byte("supplier,account\n2,20\n"), 0o644))

	maps, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, maps, 2)

	_, ok := maps["OBI_DE"]
	assert.True(t, ok)
	_, ok = maps["MARKANT_DE"]
	assert.True(t, ok)
}
