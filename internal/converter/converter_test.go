package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/config"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/datenorm"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/logging"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/validation"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/verify"
	"github.com/ginjaninja78/bank-statement-to-tally/pkg/utils"
)

var headers = []interface{}{"Date", "Ledger Name", "Bank Name", "Particulars", "Withdrawals", "Deposits"}

func testConfig(t *testing.T, extra string) *config.MainConfig {
	t.Helper()
	cfg, err := config.Parse([]byte("timezone: UTC\ncompany_name: Ganesh Traders\n" + extra))
	require.NoError(t, err)
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	return cfg
}

func writeStatement(t *testing.T, dir string, rows ...[]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	all := append([][]interface{}{headers}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(dir, "hdfc_march.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRunXLSXEndToEnd(t *testing.T) {
	cfg := testConfig(t, "")
	input := writeStatement(t, t.TempDir(),
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
		[]interface{}{45000, "Acme Traders", "HDFC Bank", "NEFT", nil, 1200.5},
	)

	result := New(input, cfg, nil, Options{}).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.False(t, result.Skipped)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "hdfc_march_TallyData.xml"), result.OutputFile)

	assert.Equal(t, 2, result.Stats.RowsProcessed)
	assert.Equal(t, 2, result.Stats.Vouchers)
	assert.Equal(t, 1, result.Stats.Payments)
	assert.Equal(t, 1, result.Stats.Receipts)
	assert.Equal(t, "25000", result.Stats.PaymentTotal.String())
	assert.Equal(t, "1200.5", result.Stats.ReceiptTotal.String())
	assert.Zero(t, result.Stats.Unbalanced)

	report, err := verify.File(result.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "Ganesh Traders", report.Company)
	assert.True(t, report.Balanced())
	require.Len(t, report.Vouchers, 2)
	assert.Equal(t, "20231225", report.Vouchers[0].Date)
	assert.Equal(t, "Payment", report.Vouchers[0].Type)
	assert.Equal(t, "20230315", report.Vouchers[1].Date)
	assert.Equal(t, "Receipt", report.Vouchers[1].Type)
	assert.Equal(t, []string{"1200.5", "-1200.5"}, report.Vouchers[1].Amounts)
}

func TestRunCSVWithTransformations(t *testing.T) {
	cfg := testConfig(t, `
transformation_rules:
  - field: Ledger Name
    actions:
      - type: trim
      - type: lookup
        lookup_table:
          AMZN: Amazon
`)
	cfg.OutputNameFormat = "{original}.xml"

	input := filepath.Join(t.TempDir(), "march.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"Date,Ledger Name,Bank Name,Particulars,Withdrawals,Deposits\n"+
			"01-03-2024, AMZN ,HDFC Bank,Card purchase,499.00,\n"), 0644))

	result := New(input, cfg, nil, Options{}).Run()
	require.NoError(t, result.Error)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "march.xml"), result.OutputFile)

	report, err := verify.File(result.OutputFile)
	require.NoError(t, err)
	require.Len(t, report.Vouchers, 1)
	assert.Equal(t, "Amazon", report.Vouchers[0].Party)
	assert.Equal(t, []string{"-499.00", "499.00"}, report.Vouchers[0].Amounts)
}

func TestRunEmptyStatementWritesNothing(t *testing.T) {
	cfg := testConfig(t, "")
	input := writeStatement(t, t.TempDir())

	result := New(input, cfg, nil, Options{}).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.OutputFile)
	assert.NoDirExists(t, cfg.OutputDir)
	assert.Contains(t, string(result.XML), "<REQUESTDATA></REQUESTDATA>")
}

func TestRunUnsupportedDateAbortsBatch(t *testing.T) {
	cfg := testConfig(t, "")
	input := writeStatement(t, t.TempDir(),
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
		[]interface{}{true, "Acme Traders", "HDFC Bank", "NEFT", nil, 1200.5},
	)

	result := New(input, cfg, nil, Options{}).Run()
	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, datenorm.ErrUnsupportedDateFormat))
	assert.Contains(t, result.Error.Error(), "row 2")
	assert.Empty(t, result.XML)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunStrictAmounts(t *testing.T) {
	rows := [][]interface{}{
		{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, 100},
	}

	t.Run("lenient", func(t *testing.T) {
		var logs bytes.Buffer
		logger := logging.NewWithWriter(&logs, "info", "json")

		cfg := testConfig(t, "")
		input := writeStatement(t, t.TempDir(), rows...)

		result := New(input, cfg, logger, Options{RunID: "run-1"}).Run()
		require.NoError(t, result.Error)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, validation.RuleBothAmounts, result.Issues[0].Rule)
		assert.Equal(t, 1, result.Stats.Payments)

		assert.Contains(t, logs.String(), `"rule":"both_amounts"`)
		assert.Contains(t, logs.String(), `"run_id":"run-1"`)
	})

	t.Run("strict", func(t *testing.T) {
		cfg := testConfig(t, "strict_amounts: true\n")
		input := writeStatement(t, t.TempDir(), rows...)

		result := New(input, cfg, nil, Options{}).Run()
		require.Error(t, result.Error)
		assert.Contains(t, result.Error.Error(), "validation failed")
		assert.NoDirExists(t, cfg.OutputDir)
	})
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t, "")
	input := writeStatement(t, t.TempDir(),
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
	)

	result := New(input, cfg, nil, Options{DryRun: true}).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.Contains(t, string(result.XML), "<VOUCHERNUMBER>1</VOUCHERNUMBER>")
	assert.NoDirExists(t, cfg.OutputDir)
	assert.FileExists(t, input)
}

func TestRunExplicitOutputAndArchive(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, "")
	fm := utils.NewFileManager(
		filepath.Join(root, "input"),
		cfg.OutputDir,
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, os.MkdirAll(fm.InputDir, 0755))

	input := writeStatement(t, fm.InputDir,
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
	)
	output := filepath.Join(root, "out", "TallyData.xml")

	result := New(input, cfg, nil, Options{OutputPath: output, Files: fm}).Run()
	require.NoError(t, result.Error)
	assert.Equal(t, output, result.OutputFile)
	assert.FileExists(t, output)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "hdfc_march.xlsx"), result.ArchivePath)
	assert.NoFileExists(t, input)
	assert.FileExists(t, filepath.Join(fm.OutputArchiveDir, "TallyData.xml"))
}

func TestRunWritesErrorLog(t *testing.T) {
	cfg := testConfig(t, "")
	logDir := t.TempDir()
	input := writeStatement(t, t.TempDir(),
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", nil, nil},
	)

	result := New(input, cfg, nil, Options{ErrorLogDir: logDir}).Run()
	require.NoError(t, result.Error)

	data, err := os.ReadFile(filepath.Join(logDir, "hdfc_march_errors.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), validation.RuleNoAmount)
}

func TestRunUnsupportedFileType(t *testing.T) {
	input := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF"), 0644))

	result := New(input, nil, logrus.New(), Options{}).Run()
	assert.True(t, errors.Is(result.Error, ErrUnsupportedFileType))
}

func TestRunCompactXML(t *testing.T) {
	cfg := testConfig(t, "xml:\n  indent: \"\"\n  include_declaration: false\n")
	input := writeStatement(t, t.TempDir(),
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
	)

	result := New(input, cfg, nil, Options{DryRun: true}).Run()
	require.NoError(t, result.Error)
	assert.True(t, bytes.HasPrefix(result.XML, []byte("<ENVELOPE><HEADER>")))
}

func TestRunSameStemDoesNotOverwrite(t *testing.T) {
	cfg := testConfig(t, "")
	dir := t.TempDir()

	xlsxInput := writeStatement(t, dir,
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
	)
	csvInput := filepath.Join(dir, "hdfc_march.csv")
	require.NoError(t, os.WriteFile(csvInput, []byte(
		"Date,Ledger Name,Bank Name,Particulars,Withdrawals,Deposits\n"+
			"01-03-2024,Acme Traders,HDFC Bank,NEFT,,1200.50\n"), 0644))

	first := New(xlsxInput, cfg, nil, Options{}).Run()
	require.NoError(t, first.Error)
	second := New(csvInput, cfg, nil, Options{}).Run()
	require.NoError(t, second.Error)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "hdfc_march_TallyData.xml"), first.OutputFile)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "hdfc_march_TallyData_1.xml"), second.OutputFile)

	report, err := verify.File(first.OutputFile)
	require.NoError(t, err)
	require.Len(t, report.Vouchers, 1)
	assert.Equal(t, "Office Rent", report.Vouchers[0].Party)

	report, err = verify.File(second.OutputFile)
	require.NoError(t, err)
	require.Len(t, report.Vouchers, 1)
	assert.Equal(t, "Acme Traders", report.Vouchers[0].Party)
}

func TestRunKeepsArchivePathWhenOutputCopyFails(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, "")

	// A regular file where the output archive directory should be.
	blocked := filepath.Join(root, "output_archive")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	fm := utils.NewFileManager(
		filepath.Join(root, "input"),
		cfg.OutputDir,
		filepath.Join(root, "input_archive"),
		blocked,
	)
	require.NoError(t, os.MkdirAll(fm.InputDir, 0755))

	input := writeStatement(t, fm.InputDir,
		[]interface{}{"25-12-2023", "Office Rent", "HDFC Bank", "Rent", 25000, nil},
	)

	result := New(input, cfg, nil, Options{Files: fm}).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "hdfc_march.xlsx"), result.ArchivePath)
	assert.FileExists(t, result.ArchivePath)
	assert.NoFileExists(t, input)
}
