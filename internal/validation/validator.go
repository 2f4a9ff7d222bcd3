// =============================================================================
// Bank Statement to Tally - Validation Engine
// =============================================================================
//
// This module checks statement rows before vouchers are built. Voucher
// building itself is permissive: a missing name becomes empty text and a row
// with two amounts is still a Payment. The validator reports those rows so an
// operator can see them, and in strict mode refuses the statement.
//
// RULES:
//   - missing_column : a required column is absent from every row
//   - both_amounts   : Withdrawals and Deposits are both populated
//   - no_amount      : neither Withdrawals nor Deposits is populated
//   - amount_format  : a text amount is not a plain decimal number
//
// ERROR HANDLING:
//   - Errors are collected, not returned one by one
//   - Each error includes the row, field, value and rule
//   - In strict mode every error except amount_format is fatal; otherwise all
//     of them are warnings
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
)

// =============================================================================
// RULE NAMES
// =============================================================================

const (
	RuleMissingColumn = "missing_column"
	RuleBothAmounts   = "both_amounts"
	RuleNoAmount      = "no_amount"
	RuleAmountFormat  = "amount_format"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation error.
type ValidationError struct {
	// Severity indicates the severity of the error.
	// "error" = fatal, the statement is not converted
	// "warning" = non-fatal, conversion continues
	Severity string

	// Row is the 1-based row number among the data rows. It is 0 for
	// statement-wide errors such as missing_column.
	Row int

	// Field is the statement header that failed validation.
	Field string

	// Value is the cell text that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("[%s] Field '%s': %s", strings.ToUpper(e.Severity), e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Row,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the total number of rows validated.
	RowsValidated int
}

// Fatal returns the first fatal error, or nil.
func (r *ValidationResult) Fatal() *ValidationError {
	for _, err := range r.Errors {
		if err.Severity == SeverityError {
			return err
		}
	}
	return nil
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// Strict turns missing_column, both_amounts and no_amount into fatal
	// errors.
	// Default: false
	Strict bool

	// StopOnFirstError stops validation after the first fatal error.
	// Default: false
	StopOnFirstError bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// Validator checks statement rows against the voucher columns.
type Validator struct {
	columns voucher.Columns
	options ValidationOptions
}

// NewValidator creates a new Validator instance.
func NewValidator(columns voucher.Columns) *Validator {
	return NewValidatorWithOptions(columns, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(columns voucher.Columns, options ValidationOptions) *Validator {
	return &Validator{
		columns: columns,
		options: options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate validates rows with the default options and returns the result.
func Validate(rows []statement.Row, columns voucher.Columns) *ValidationResult {
	return NewValidator(columns).ValidateAll(rows)
}

// ValidateAll validates all rows and returns a detailed result.
func (v *Validator) ValidateAll(rows []statement.Row) *ValidationResult {
	result := &ValidationResult{
		IsValid:       true,
		Errors:        make([]*ValidationError, 0),
		RowsValidated: len(rows),
	}

	add := func(err *ValidationError) bool {
		result.Errors = append(result.Errors, err)
		if err.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
			return v.options.StopOnFirstError
		}
		result.WarningCount++
		return false
	}

	for _, err := range v.validateColumns(rows) {
		if add(err) {
			return result
		}
	}

	for i, row := range rows {
		for _, err := range v.ValidateRow(row, i+1) {
			if add(err) {
				return result
			}
		}
	}

	return result
}

// validateColumns reports required columns that no row carries.
func (v *Validator) validateColumns(rows []statement.Row) []*ValidationError {
	if len(rows) == 0 {
		return nil
	}

	var errs []*ValidationError
	for _, column := range v.columns.Required() {
		found := false
		for _, row := range rows {
			if row.Has(column) {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, &ValidationError{
				Severity: v.severity(),
				Field:    column,
				Rule:     RuleMissingColumn,
				Message:  "required column is missing from the statement",
			})
		}
	}
	return errs
}

// ValidateRow validates a single row. rowNumber is 1-based.
func (v *Validator) ValidateRow(row statement.Row, rowNumber int) []*ValidationError {
	var errs []*ValidationError

	withdrawals := row.Get(v.withdrawals())
	deposits := row.Get(v.deposits())

	switch {
	case withdrawals.Truthy() && deposits.Truthy():
		errs = append(errs, &ValidationError{
			Severity: v.severity(),
			Row:      rowNumber,
			Field:    v.deposits(),
			Value:    deposits.String(),
			Rule:     RuleBothAmounts,
			Message:  fmt.Sprintf("both amounts are set, treated as a payment of %s", withdrawals.String()),
		})
	case !withdrawals.Truthy() && !deposits.Truthy():
		errs = append(errs, &ValidationError{
			Severity: v.severity(),
			Row:      rowNumber,
			Field:    v.withdrawals(),
			Rule:     RuleNoAmount,
			Message:  "neither amount is set, the voucher will have empty amounts",
		})
	}

	for _, field := range []string{v.withdrawals(), v.deposits()} {
		text, ok := row.Get(field).TextValue()
		if !ok || text == "" {
			continue
		}
		if _, err := decimal.NewFromString(text); err != nil {
			errs = append(errs, &ValidationError{
				Severity: SeverityWarning,
				Row:      rowNumber,
				Field:    field,
				Value:    text,
				Rule:     RuleAmountFormat,
				Message:  "amount is not a plain decimal number and is copied as written",
			})
		}
	}

	return errs
}

func (v *Validator) severity() string {
	if v.options.Strict {
		return SeverityError
	}
	return SeverityWarning
}

func (v *Validator) withdrawals() string {
	if v.columns.Withdrawals == "" {
		return statement.ColumnWithdrawals
	}
	return v.columns.Withdrawals
}

func (v *Validator) deposits() string {
	if v.columns.Deposits == "" {
		return statement.ColumnDeposits
	}
	return v.columns.Deposits
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - source: The statement file the errors belong to.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, source, filePath string) error {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Statement: %s\n", source))
	builder.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC3339)))
	builder.WriteString(FormatErrors(errors))

	if err := os.WriteFile(filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
