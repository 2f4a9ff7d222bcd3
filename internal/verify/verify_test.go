package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/voucher"
	"github.com/ginjaninja78/bank-statement-to-tally/internal/xmlwriter"
)

func generated(t *testing.T) []byte {
	t.Helper()

	opts := voucher.DefaultOptions()
	opts.CompanyName = "Ganesh Traders"
	opts.Location = time.UTC

	doc, err := voucher.New(opts).Build([]statement.Row{
		{
			statement.ColumnDate:        statement.Text("25-12-2023"),
			statement.ColumnLedgerName:  statement.Text("Office Rent"),
			statement.ColumnBankName:    statement.Text("HDFC Bank"),
			statement.ColumnParticulars: statement.Text("Rent"),
			statement.ColumnWithdrawals: statement.Numeric(25000),
		},
		{
			statement.ColumnDate:        statement.Numeric(45000),
			statement.ColumnLedgerName:  statement.Text("Acme Traders"),
			statement.ColumnBankName:    statement.Text("HDFC Bank"),
			statement.ColumnParticulars: statement.Text("NEFT"),
			statement.ColumnDeposits:    statement.Text("1200.50"),
		},
	})
	require.NoError(t, err)

	out, err := xmlwriter.Generate(doc)
	require.NoError(t, err)
	return out
}

func TestReaderGeneratedDocument(t *testing.T) {
	report, err := Reader(strings.NewReader(string(generated(t))))
	require.NoError(t, err)

	assert.Equal(t, "Import Data", report.TallyRequest)
	assert.Equal(t, "Ganesh Traders", report.Company)
	require.Len(t, report.Vouchers, 2)
	assert.True(t, report.Balanced())

	first := report.Vouchers[0]
	assert.Equal(t, "1", first.Number)
	assert.Equal(t, "Payment", first.Type)
	assert.Equal(t, "20231225", first.Date)
	assert.Equal(t, "Office Rent", first.Party)
	assert.Equal(t, []string{"Office Rent", "HDFC Bank"}, first.Ledgers)
	assert.Equal(t, []string{"-25000", "25000"}, first.Amounts)

	second := report.Vouchers[1]
	assert.Equal(t, "2", second.Number)
	assert.Equal(t, "Receipt", second.Type)
	assert.Equal(t, "20230315", second.Date)
	assert.Equal(t, []string{"1200.50", "-1200.50"}, second.Amounts)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TallyData.xml")
	require.NoError(t, os.WriteFile(path, generated(t), 0644))

	report, err := File(path)
	require.NoError(t, err)
	assert.Len(t, report.Vouchers, 2)

	_, err = File(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestReaderUnbalanced(t *testing.T) {
	doc := `<ENVELOPE><HEADER><TALLYREQUEST>Import Data</TALLYREQUEST></HEADER><BODY><IMPORTDATA>
<REQUESTDESC><REPORTNAME>Vouchers</REPORTNAME></REQUESTDESC><REQUESTDATA>
<TALLYMESSAGE><VOUCHER VCHTYPE="Payment"><VOUCHERNUMBER>1</VOUCHERNUMBER>
<ALLLEDGERENTRIES.LIST><AMOUNT>-10</AMOUNT></ALLLEDGERENTRIES.LIST>
<ALLLEDGERENTRIES.LIST><AMOUNT>9</AMOUNT></ALLLEDGERENTRIES.LIST></VOUCHER></TALLYMESSAGE>
<TALLYMESSAGE><VOUCHER VCHTYPE="Payment"><VOUCHERNUMBER>2</VOUCHERNUMBER>
<ALLLEDGERENTRIES.LIST><AMOUNT>-1,500.00</AMOUNT></ALLLEDGERENTRIES.LIST>
<ALLLEDGERENTRIES.LIST><AMOUNT>1,500.00</AMOUNT></ALLLEDGERENTRIES.LIST></VOUCHER></TALLYMESSAGE>
<TALLYMESSAGE><VOUCHER VCHTYPE="Receipt"><VOUCHERNUMBER>3</VOUCHERNUMBER>
<ALLLEDGERENTRIES.LIST><AMOUNT></AMOUNT></ALLLEDGERENTRIES.LIST>
<ALLLEDGERENTRIES.LIST><AMOUNT></AMOUNT></ALLLEDGERENTRIES.LIST></VOUCHER></TALLYMESSAGE>
<TALLYMESSAGE><VOUCHER VCHTYPE="Receipt"><VOUCHERNUMBER>4</VOUCHERNUMBER>
<ALLLEDGERENTRIES.LIST><AMOUNT>5</AMOUNT></ALLLEDGERENTRIES.LIST></VOUCHER></TALLYMESSAGE>
</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`

	report, err := Reader(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, report.Vouchers, 4)
	assert.False(t, report.Balanced())
	assert.Len(t, report.Unbalanced(), 4)

	assert.Equal(t, "entries sum to -1", report.Vouchers[0].Problem)
	assert.Contains(t, report.Vouchers[1].Problem, "not a decimal number")
	assert.Equal(t, "empty amount", report.Vouchers[2].Problem)
	assert.Equal(t, "expected 2 ledger entries, found 1", report.Vouchers[3].Problem)
}

func TestReaderRejectsOtherDocuments(t *testing.T) {
	_, err := Reader(strings.NewReader("<root/>"))
	assert.ErrorContains(t, err, "not a Tally import document")

	_, err = Reader(strings.NewReader("<unclosed"))
	assert.Error(t, err)
}
