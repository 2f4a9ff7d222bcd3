// =============================================================================
// Bank Statement to Tally - Verifier
// =============================================================================
//
// This module reads a Tally import file back and checks every VOUCHER:
//   - It must have exactly two ledger entries
//   - Every AMOUNT must be a plain decimal number
//   - The amounts must sum to zero
//
// =============================================================================

// Package verify reads a Tally voucher import file back and checks that every
// voucher is a balanced double entry. It works on the XML text alone, so it
// can check files produced by other tools as well.
package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"
)

var (
	companyPath = xmlpath.MustCompile("/ENVELOPE/BODY/IMPORTDATA/REQUESTDESC/STATICVARIABLES/SVCURRENTCOMPANY")
	requestPath = xmlpath.MustCompile("/ENVELOPE/HEADER/TALLYREQUEST")
	voucherPath = xmlpath.MustCompile("/ENVELOPE/BODY/IMPORTDATA/REQUESTDATA/TALLYMESSAGE/VOUCHER")
	numberPath  = xmlpath.MustCompile("VOUCHERNUMBER")
	typePath    = xmlpath.MustCompile("@VCHTYPE")
	datePath    = xmlpath.MustCompile("DATE")
	partyPath   = xmlpath.MustCompile("PARTYLEDGERNAME")
	amountPath  = xmlpath.MustCompile("*/AMOUNT")
	ledgerPath  = xmlpath.MustCompile("*/LEDGERNAME")
)

// VoucherReport describes one VOUCHER element.
type VoucherReport struct {
	Number  string
	Type    string
	Date    string
	Party   string
	Ledgers []string
	Amounts []string

	// Total is the sum of Amounts when all of them parse.
	Total decimal.Decimal
	// Balanced is true when there are two entries summing to zero.
	Balanced bool
	// Problem explains why the voucher is not balanced.
	Problem string
}

// Report is the result of verifying one file.
type Report struct {
	TallyRequest string
	Company      string
	Vouchers     []VoucherReport
}

// Balanced reports whether every voucher in the file is balanced.
func (r *Report) Balanced() bool {
	return len(r.Unbalanced()) == 0
}

// Unbalanced returns the vouchers that failed the check.
func (r *Report) Unbalanced() []VoucherReport {
	var out []VoucherReport
	for _, v := range r.Vouchers {
		if !v.Balanced {
			out = append(out, v)
		}
	}
	return out
}

// File verifies the XML file at path.
func File(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader verifies an XML document read from r.
func Reader(r io.Reader) (*Report, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	request, ok := requestPath.String(root)
	if !ok {
		return nil, fmt.Errorf("not a Tally import document: missing ENVELOPE/HEADER/TALLYREQUEST")
	}

	report := &Report{TallyRequest: request}
	report.Company, _ = companyPath.String(root)

	iter := voucherPath.Iter(root)
	for iter.Next() {
		report.Vouchers = append(report.Vouchers, checkVoucher(iter.Node()))
	}

	return report, nil
}

func checkVoucher(node *xmlpath.Node) VoucherReport {
	v := VoucherReport{Total: decimal.Zero}
	v.Number, _ = numberPath.String(node)
	v.Type, _ = typePath.String(node)
	v.Date, _ = datePath.String(node)
	v.Party, _ = partyPath.String(node)
	v.Ledgers = collect(ledgerPath, node)
	v.Amounts = collect(amountPath, node)

	if len(v.Amounts) != 2 {
		v.Problem = fmt.Sprintf("expected 2 ledger entries, found %d", len(v.Amounts))
		return v
	}

	for _, text := range v.Amounts {
		if text == "" {
			v.Problem = "empty amount"
			return v
		}
		amount, err := decimal.NewFromString(text)
		if err != nil {
			v.Problem = fmt.Sprintf("amount %q is not a decimal number", text)
			return v
		}
		v.Total = v.Total.Add(amount)
	}

	if !v.Total.IsZero() {
		v.Problem = fmt.Sprintf("entries sum to %s", v.Total.String())
		return v
	}

	v.Balanced = true
	return v
}

func collect(path *xmlpath.Path, node *xmlpath.Node) []string {
	var out []string
	iter := path.Iter(node)
	for iter.Next() {
		out = append(out, iter.Node().String())
	}
	return out
}
