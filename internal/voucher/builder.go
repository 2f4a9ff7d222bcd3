// =============================================================================
// Bank Statement to Tally - Voucher Builder
// =============================================================================
//
// This module maps bank statement rows to Tally vouchers. Every row becomes
// one voucher with two balanced ledger entries: the party ledger named in the
// row, and the bank ledger.
//
// SIGN CONVENTIONS:
//
//   | Type    | Entry 1 (Ledger Name)       | Entry 2 (Bank Name)         |
//   |---------|-----------------------------|-----------------------------|
//   | Payment | Yes, -<Withdrawals>         | No,  <Withdrawals>          |
//   | Receipt | No,  <Deposits>             | Yes, -<Deposits>            |
//
// A row is a Payment when its Withdrawals cell is populated, otherwise it is
// a Receipt. Deposits is not consulted to pick the type.
//
// The build is all-or-nothing: the first row with an unsupported date aborts
// it and no document is returned.
//
// =============================================================================

package voucher

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/datenorm"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
)

// =============================================================================
// COLUMN CONFIGURATION
// =============================================================================

// Columns names the statement headers read by the builder.
type Columns struct {
	Date        string
	LedgerName  string
	BankName    string
	Particulars string
	Withdrawals string
	Deposits    string
}

// DefaultColumns returns the verbatim headers of a bank statement export.
func DefaultColumns() Columns {
	return Columns{
		Date:        statement.ColumnDate,
		LedgerName:  statement.ColumnLedgerName,
		BankName:    statement.ColumnBankName,
		Particulars: statement.ColumnParticulars,
		Withdrawals: statement.ColumnWithdrawals,
		Deposits:    statement.ColumnDeposits,
	}
}

// withDefaults fills unset headers from DefaultColumns.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Date == "" {
		c.Date = d.Date
	}
	if c.LedgerName == "" {
		c.LedgerName = d.LedgerName
	}
	if c.BankName == "" {
		c.BankName = d.BankName
	}
	if c.Particulars == "" {
		c.Particulars = d.Particulars
	}
	if c.Withdrawals == "" {
		c.Withdrawals = d.Withdrawals
	}
	if c.Deposits == "" {
		c.Deposits = d.Deposits
	}
	return c
}

// Required returns the headers every statement must carry, in report order.
func (c Columns) Required() []string {
	c = c.withDefaults()
	return []string{c.Date, c.LedgerName, c.BankName, c.Particulars}
}

// All returns every header a statement can carry, amounts included, in
// statement order.
func (c Columns) All() []string {
	c = c.withDefaults()
	return append(c.Required(), c.Withdrawals, c.Deposits)
}

// =============================================================================
// BUILD OPTIONS
// =============================================================================

// Options configures a Builder.
type Options struct {
	// CompanyName fills SVCURRENTCOMPANY.
	// Default: "Your Company Name"
	CompanyName string

	// Columns remaps the statement headers.
	Columns Columns

	// Location is used to turn serial dates into calendar dates.
	// Default: time.Local
	Location *time.Location
}

// DefaultOptions returns the default build options.
func DefaultOptions() Options {
	return Options{
		CompanyName: DefaultCompanyName,
		Columns:     DefaultColumns(),
		Location:    time.Local,
	}
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder turns statement rows into a Document. It holds no state between
// calls and is safe for concurrent use.
type Builder struct {
	normalizer *datenorm.Normalizer
	columns    Columns
	company    string
}

// New creates a Builder.
func New(opts Options) *Builder {
	company := opts.CompanyName
	if company == "" {
		company = DefaultCompanyName
	}
	return &Builder{
		normalizer: datenorm.New(opts.Location),
		columns:    opts.Columns.withDefaults(),
		company:    company,
	}
}

// Build creates a document with the default options.
func Build(rows []statement.Row) (*Document, error) {
	return New(DefaultOptions()).Build(rows)
}

// RowError reports the statement row that stopped a build.
type RowError struct {
	// Row is the 1-based position of the row in the input.
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Build converts rows into a document. An empty input yields a document with
// the full header and body scaffold and no vouchers.
func (b *Builder) Build(rows []statement.Row) (*Document, error) {
	messages := make([]TallyMessage, 0, len(rows))
	for i, row := range rows {
		v, err := b.buildVoucher(row, i+1)
		if err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
		messages = append(messages, TallyMessage{Voucher: v})
	}

	return &Document{
		Header: Header{TallyRequest: TallyRequestImport},
		Body: Body{
			ImportData: ImportData{
				RequestDesc: RequestDesc{
					ReportName:      ReportNameVouchers,
					StaticVariables: StaticVariables{CurrentCompany: b.company},
				},
				RequestData: RequestData{Messages: messages},
			},
		},
	}, nil
}

// buildVoucher maps one row. number is the 1-based output position.
func (b *Builder) buildVoucher(row statement.Row, number int) (Voucher, error) {
	vt := TypeOf(row.Get(b.columns.Withdrawals))

	date, err := b.normalizer.Normalize(row.Get(b.columns.Date))
	if err != nil {
		return Voucher{}, err
	}

	ledger := row.Get(b.columns.LedgerName).String()

	return Voucher{
		Type:            vt,
		Action:          ActionCreate,
		ObjView:         ObjViewAccounting,
		Date:            date,
		TypeName:        vt,
		Number:          strconv.Itoa(number),
		PartyLedgerName: ledger,
		Narration:       row.Get(b.columns.Particulars).String(),
		Entries: LedgerEntries(
			vt,
			ledger,
			row.Get(b.columns.BankName).String(),
			row.Get(b.columns.Withdrawals).String(),
			row.Get(b.columns.Deposits).String(),
		),
	}, nil
}

// =============================================================================
// SIGN HELPERS
// =============================================================================

// TypeOf picks the voucher type from the Withdrawals cell.
func TypeOf(withdrawals statement.Cell) VoucherType {
	if withdrawals.Truthy() {
		return Payment
	}
	return Receipt
}

// LedgerEntries returns the party entry followed by the bank entry. One
// amount is always the negation of the other.
func LedgerEntries(vt VoucherType, ledger, bank, withdrawals, deposits string) [2]LedgerEntry {
	if vt == Receipt {
		return [2]LedgerEntry{
			{LedgerName: ledger, IsDeemedPositive: DeemedPositive(false), Amount: deposits},
			{LedgerName: bank, IsDeemedPositive: DeemedPositive(true), Amount: Negate(deposits)},
		}
	}
	return [2]LedgerEntry{
		{LedgerName: ledger, IsDeemedPositive: DeemedPositive(true), Amount: Negate(withdrawals)},
		{LedgerName: bank, IsDeemedPositive: DeemedPositive(false), Amount: withdrawals},
	}
}

// DeemedPositive renders the ISDEEMEDPOSITIVE flag.
func DeemedPositive(positive bool) string {
	if positive {
		return "Yes"
	}
	return "No"
}

// Negate prefixes an amount with a minus sign. The amount text is otherwise
// kept as written; an empty amount stays empty.
func Negate(amount string) string {
	if amount == "" {
		return ""
	}
	return "-" + amount
}
