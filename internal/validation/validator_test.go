package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
)

func row(withdrawals, deposits statement.Cell) statement.Row {
	r := statement.Row{
		statement.ColumnDate:        statement.Text("25-12-2023"),
		statement.ColumnLedgerName:  statement.Text("Office Rent"),
		statement.ColumnBankName:    statement.Text("HDFC Bank"),
		statement.ColumnParticulars: statement.Text("Rent"),
	}
	if withdrawals.Kind() != statement.KindEmpty {
		r[statement.ColumnWithdrawals] = withdrawals
	}
	if deposits.Kind() != statement.KindEmpty {
		r[statement.ColumnDeposits] = deposits
	}
	return r
}

func rules(result *ValidationResult) []string {
	var out []string
	for _, err := range result.Errors {
		out = append(out, err.Rule)
	}
	return out
}

func TestValidateCleanRows(t *testing.T) {
	rows := []statement.Row{
		row(statement.Numeric(25000), statement.Empty()),
		row(statement.Empty(), statement.Text("1200.50")),
	}

	result := Validate(rows, voucher.DefaultColumns())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.RowsValidated)
}

func TestValidateAmountRules(t *testing.T) {
	rows := []statement.Row{
		row(statement.Numeric(100), statement.Numeric(50)),
		row(statement.Empty(), statement.Numeric(0)),
		row(statement.Text("1,200.00"), statement.Empty()),
	}

	result := Validate(rows, voucher.DefaultColumns())
	assert.True(t, result.IsValid)
	assert.Equal(t, []string{RuleBothAmounts, RuleNoAmount, RuleAmountFormat}, rules(result))
	assert.Equal(t, 3, result.WarningCount)
	assert.Nil(t, result.Fatal())

	assert.Equal(t, 1, result.Errors[0].Row)
	assert.Equal(t, 2, result.Errors[1].Row)
	assert.Equal(t, "1,200.00", result.Errors[2].Value)
}

func TestValidateStrict(t *testing.T) {
	rows := []statement.Row{
		row(statement.Text("1,200.00"), statement.Empty()),
		row(statement.Numeric(100), statement.Numeric(50)),
	}

	v := NewValidatorWithOptions(voucher.DefaultColumns(), ValidationOptions{Strict: true})
	result := v.ValidateAll(rows)

	assert.False(t, result.IsValid)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount)

	fatal := result.Fatal()
	require.NotNil(t, fatal)
	assert.Equal(t, RuleBothAmounts, fatal.Rule)
	assert.Equal(t, 2, fatal.Row)
	assert.Contains(t, fatal.Error(), "[ERROR] Row 2")
}

func TestValidateStopOnFirstError(t *testing.T) {
	rows := []statement.Row{
		row(statement.Empty(), statement.Empty()),
		row(statement.Empty(), statement.Empty()),
	}

	v := NewValidatorWithOptions(voucher.DefaultColumns(), ValidationOptions{Strict: true, StopOnFirstError: true})
	result := v.ValidateAll(rows)
	assert.Len(t, result.Errors, 1)
}

func TestValidateMissingColumn(t *testing.T) {
	rows := []statement.Row{
		{statement.ColumnDate: statement.Text("25-12-2023"), statement.ColumnWithdrawals: statement.Numeric(1)},
	}

	result := Validate(rows, voucher.DefaultColumns())
	assert.Equal(t, []string{RuleMissingColumn, RuleMissingColumn, RuleMissingColumn}, rules(result))
	assert.Equal(t, statement.ColumnLedgerName, result.Errors[0].Field)
	assert.Equal(t, 0, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error(), "Field 'Ledger Name'")
}

func TestValidateRemappedColumns(t *testing.T) {
	cols := voucher.DefaultColumns()
	cols.Withdrawals = "Debit"
	cols.Deposits = "Credit"

	r := row(statement.Empty(), statement.Empty())
	r["Debit"] = statement.Numeric(10)

	result := Validate([]statement.Row{r}, cols)
	assert.Empty(t, result.Errors)
}

func TestValidateEmpty(t *testing.T) {
	result := Validate(nil, voucher.DefaultColumns())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestFormatErrorsAndWriteErrorLog(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	result := Validate([]statement.Row{row(statement.Empty(), statement.Empty())}, voucher.DefaultColumns())
	formatted := FormatErrors(result.Errors)
	assert.Contains(t, formatted, "1 error(s)")
	assert.Contains(t, formatted, "[WARNING] Row 1")

	path := filepath.Join(t.TempDir(), "errors.log")
	require.NoError(t, WriteErrorLog(result.Errors, "statement.xlsx", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Statement: statement.xlsx")
	assert.Contains(t, string(data), RuleNoAmount)
}
