package voucher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bank-statement-to-tally/internal/statement"
)

func TestSummarize(t *testing.T) {
	text := paymentRow()
	text[statement.ColumnWithdrawals] = statement.Text("1,000.00")

	rows := []statement.Row{paymentRow(), receiptRow(), receiptRow(), text}

	opts := DefaultOptions()
	opts.Location = time.UTC
	doc, err := New(opts).Build(rows)
	require.NoError(t, err)

	s := Summarize(doc)
	assert.Equal(t, 4, s.Vouchers)
	assert.Equal(t, 2, s.Payments)
	assert.Equal(t, 2, s.Receipts)
	assert.Equal(t, 1, s.Unbalanced)
	assert.True(t, decimal.NewFromInt(25000).Equal(s.PaymentTotal))
	assert.True(t, decimal.RequireFromString("2401").Equal(s.ReceiptTotal))
}

func TestBalanceRejectsGroupedThousands(t *testing.T) {
	v := Voucher{
		Number:  "3",
		Entries: LedgerEntries(Payment, "A", "B", "1,000.00", ""),
	}

	_, err := v.Balance()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voucher 3 entry 1")
}

func TestSummarizeEmptyDocument(t *testing.T) {
	doc, err := Build(nil)
	require.NoError(t, err)

	s := Summarize(doc)
	assert.Zero(t, s.Vouchers)
	assert.True(t, s.PaymentTotal.IsZero())
	assert.True(t, s.ReceiptTotal.IsZero())
}
