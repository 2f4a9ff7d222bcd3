// =============================================================================
// Bank Statement to Tally - Voucher Summary
// =============================================================================
//
// This module totals the vouchers of a document for the convert output and
// the processing summary log.
//
// =============================================================================

package voucher

import (
	"github.com/shopspring/decimal"
)

// Summary aggregates the vouchers of a document for run reports.
type Summary struct {
	Vouchers     int
	Payments     int
	Receipts     int
	PaymentTotal decimal.Decimal
	ReceiptTotal decimal.Decimal

	// Unbalanced counts vouchers whose amounts could not be summed to zero,
	// either because an amount is not a plain decimal or because the entries
	// do not cancel out.
	Unbalanced int
}

// Summarize walks the document once and totals payments and receipts.
func Summarize(doc *Document) Summary {
	s := Summary{
		PaymentTotal: decimal.Zero,
		ReceiptTotal: decimal.Zero,
	}
	for _, v := range doc.Vouchers() {
		s.Vouchers++
		switch v.Type {
		case Payment:
			s.Payments++
		case Receipt:
			s.Receipts++
		}

		balance, err := v.Balance()
		if err != nil || !balance.IsZero() {
			s.Unbalanced++
			continue
		}

		value, err := v.Value()
		if err != nil {
			continue
		}
		if v.Type == Payment {
			s.PaymentTotal = s.PaymentTotal.Add(value)
		} else {
			s.ReceiptTotal = s.ReceiptTotal.Add(value)
		}
	}
	return s
}
