// =============================================================================
// Bank Statement to Tally - Shared Statement Types
// =============================================================================
//
// This package contains the row model shared by the readers (xlsxparser,
// csvparser), the transformer, the validator and the voucher builder.
//
// A bank statement is an ordered list of rows. Each row maps a column header,
// taken verbatim from the spreadsheet, to a typed cell. A cell is a closed
// tagged union: every consumer switches over Kind and handles all of them.
//
// =============================================================================

package statement

import (
	"math"
	"strconv"
	"time"
)

// =============================================================================
// COLUMN HEADERS
// =============================================================================

// Default column headers of a bank statement export. Header matching is
// case- and spacing-sensitive.
const (
	ColumnDate        = "Date"
	ColumnLedgerName  = "Ledger Name"
	ColumnBankName    = "Bank Name"
	ColumnParticulars = "Particulars"
	ColumnWithdrawals = "Withdrawals"
	ColumnDeposits    = "Deposits"
)

// =============================================================================
// CELL
// =============================================================================

// Kind identifies which variant a Cell holds.
type Kind int

const (
	// KindEmpty is an absent or blank cell.
	KindEmpty Kind = iota
	// KindText is a string cell.
	KindText
	// KindCalendar is a date cell.
	KindCalendar
	// KindNumeric is a number cell. Spreadsheet dates stored as serial
	// numbers arrive as KindNumeric.
	KindNumeric
	// KindBool is a boolean cell.
	KindBool
)

// String returns the kind name used in log fields and error messages.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindCalendar:
		return "calendar"
	case KindNumeric:
		return "numeric"
	case KindBool:
		return "bool"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is a single spreadsheet value. The zero value is an empty cell.
type Cell struct {
	kind Kind
	text string
	when time.Time
	num  float64
	flag bool
}

// Empty returns an empty cell.
func Empty() Cell { return Cell{} }

// Text returns a string cell.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Calendar returns a date cell.
func Calendar(t time.Time) Cell { return Cell{kind: KindCalendar, when: t} }

// Numeric returns a number cell.
func Numeric(v float64) Cell { return Cell{kind: KindNumeric, num: v} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, flag: b} }

// Kind reports the variant held by the cell.
func (c Cell) Kind() Kind { return c.kind }

// TextValue returns the string held by a text cell.
func (c Cell) TextValue() (string, bool) { return c.text, c.kind == KindText }

// CalendarValue returns the time held by a date cell.
func (c Cell) CalendarValue() (time.Time, bool) { return c.when, c.kind == KindCalendar }

// NumericValue returns the number held by a numeric cell.
func (c Cell) NumericValue() (float64, bool) { return c.num, c.kind == KindNumeric }

// BoolValue returns the flag held by a boolean cell.
func (c Cell) BoolValue() (bool, bool) { return c.flag, c.kind == KindBool }

// Truthy reports whether the cell counts as populated. Text must be
// non-empty and numbers must be non-zero; "0" as text is populated.
func (c Cell) Truthy() bool {
	switch c.kind {
	case KindText:
		return c.text != ""
	case KindCalendar:
		return true
	case KindNumeric:
		return c.num != 0 && !math.IsNaN(c.num)
	case KindBool:
		return c.flag
	default:
		return false
	}
}

// String renders the cell as XML text content.
//
// RENDERING:
//   - empty    : ""
//   - text     : the string as is
//   - numeric  : shortest decimal form (1500, 1500.5)
//   - bool     : "true" / "false"
//   - calendar : YYYY-MM-DD
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindCalendar:
		return c.when.Format("2006-01-02")
	case KindNumeric:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.flag)
	default:
		return ""
	}
}

// =============================================================================
// ROW
// =============================================================================

// Row maps a verbatim column header to its cell. Missing keys read as empty
// cells.
type Row map[string]Cell

// Get returns the cell for a header, or an empty cell when absent.
func (r Row) Get(header string) Cell {
	return r[header]
}

// Has reports whether the row has a non-empty cell under the header.
func (r Row) Has(header string) bool {
	c, ok := r[header]
	return ok && c.kind != KindEmpty
}

// Clone returns a shallow copy of the row. Cells are values, so the copy
// shares nothing mutable with the original.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
