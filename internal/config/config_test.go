package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "TallyData.xml", cfg.OutputFileName)
	assert.Equal(t, voucher.DefaultCompanyName, cfg.CompanyName)
	assert.Equal(t, ",", cfg.CSVSettings.Delimiter)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, "  ", *cfg.XML.Indent)
	assert.True(t, *cfg.XML.IncludeDeclaration)
	assert.True(t, cfg.Archive())
	assert.False(t, cfg.StrictAmounts)
	assert.Equal(t, voucher.DefaultColumns(), cfg.VoucherColumns())
	assert.NotNil(t, cfg.Location())
}

func TestParse(t *testing.T) {
	data := []byte(`
company_name: Ganesh Traders
timezone: UTC
strict_amounts: true
archive_on_success: false
max_concurrency: 2
columns:
  ledger_name: Party
xml:
  indent: ""
  include_declaration: false
csv_settings:
  delimiter: ";"
  encoding: Windows-1252
transformation_rules:
  - field: Party
    actions:
      - type: trim
      - type: lookup
        lookup_table:
          AMZN: Amazon
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "Ganesh Traders", cfg.CompanyName)
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.True(t, cfg.StrictAmounts)
	assert.False(t, cfg.Archive())
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "", *cfg.XML.Indent)
	assert.False(t, *cfg.XML.IncludeDeclaration)
	assert.Equal(t, ";", cfg.CSVSettings.Delimiter)

	cols := cfg.VoucherColumns()
	assert.Equal(t, "Party", cols.LedgerName)
	assert.Equal(t, statement.ColumnDate, cols.Date)

	opts := cfg.VoucherOptions()
	assert.Equal(t, "Ganesh Traders", opts.CompanyName)
	assert.Equal(t, "UTC", opts.Location.String())

	require.Len(t, cfg.TransformationRules, 1)
	require.Len(t, cfg.TransformationRules[0].Actions, 2)
	assert.Equal(t, "Amazon", cfg.TransformationRules[0].Actions[1].LookupTable["AMZN"])
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "company_name: [unterminated"},
		{"unknown timezone", "timezone: Mars/Olympus"},
		{"long delimiter", "csv_settings:\n  delimiter: \"||\""},
		{"unknown encoding", "csv_settings:\n  encoding: EBCDIC"},
		{"rule without field", "transformation_rules:\n  - actions:\n      - type: trim"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadMainConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("company_name: Acme\n"), 0644))

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.CompanyName)
}

func TestLoadMainConfigMissingFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.InputDir = filepath.Join(root, "in")
	cfg.OutputDir = filepath.Join(root, "out")
	cfg.InputArchiveDir = filepath.Join(root, "in_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "out_archive")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir} {
		assert.DirExists(t, dir)
	}
}
