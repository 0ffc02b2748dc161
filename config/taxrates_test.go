package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTaxFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxrates.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTaxTable(t *testing.T) {
	path := writeTaxFile(t, `
[regions.ON]
HST = 0.13

[regions.BC]
GST = 0.05
PST = 0.07
`)

	table, err := LoadTaxTable(path)
	require.NoError(t, err)

	rates, ok := table.RatesFor("ON")
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"HST": 0.13}, rates)

	rates, ok = table.RatesFor("BC")
	require.True(t, ok)
	assert.Equal(t, 0.05, rates["GST"])
	assert.Equal(t, 0.07, rates["PST"])

	_, ok = table.RatesFor("YT")
	assert.False(t, ok)
}

func TestLoadTaxTableFromEnv(t *testing.T) {
	path := writeTaxFile(t, "[regions.AB]\nGST = 0.05\n")
	t.Setenv("TAX_RATES_FILE", path)

	table, err := LoadTaxTable("")
	require.NoError(t, err)
	rates, ok := table.RatesFor("AB")
	require.True(t, ok)
	assert.Equal(t, 0.05, rates["GST"])
}

func TestLoadTaxTableErrors(t *testing.T) {
	_, err := LoadTaxTable(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	empty := writeTaxFile(t, "# no regions here\n")
	_, err = LoadTaxTable(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defines no regions")
}

func TestBundledTaxRatesFile(t *testing.T) {
	table, err := LoadTaxTable("taxrates.toml")
	require.NoError(t, err)

	rates, ok := table.RatesFor("ON")
	require.True(t, ok)
	assert.Equal(t, 0.13, rates["HST"])
}
