// =============================================================================
// Bank Statement to Tally - Voucher Document Tree
// =============================================================================
//
// This file defines the Tally import document. The struct field order is the
// element order on the wire and must not be changed: the Tally importer reads
// the elements positionally.
//
// XML STRUCTURE:
//
//   <ENVELOPE>
//     <HEADER>
//       <TALLYREQUEST>Import Data</TALLYREQUEST>
//     </HEADER>
//     <BODY>
//       <IMPORTDATA>
//         <REQUESTDESC>
//           <REPORTNAME>Vouchers</REPORTNAME>
//           <STATICVARIABLES>
//             <SVCURRENTCOMPANY>Your Company Name</SVCURRENTCOMPANY>
//           </STATICVARIABLES>
//         </REQUESTDESC>
//         <REQUESTDATA>
//           <TALLYMESSAGE>
//             <VOUCHER VCHTYPE="Payment" ACTION="Create" OBJVIEW="Accounting Voucher View">
//               <DATE>20231225</DATE>
//               <VOUCHERTYPENAME>Payment</VOUCHERTYPENAME>
//               <VOUCHERNUMBER>1</VOUCHERNUMBER>
//               <PARTYLEDGERNAME>Office Rent</PARTYLEDGERNAME>
//               <NARRATION>Rent for December</NARRATION>
//               <ALLLEDGERENTRIES.LIST>
//                 <LEDGERNAME>Office Rent</LEDGERNAME>
//                 <ISDEEMEDPOSITIVE>Yes</ISDEEMEDPOSITIVE>
//                 <AMOUNT>-25000</AMOUNT>
//               </ALLLEDGERENTRIES.LIST>
//               <ALLLEDGERENTRIES.LIST>
//                 <LEDGERNAME>HDFC Bank</LEDGERNAME>
//                 <ISDEEMEDPOSITIVE>No</ISDEEMEDPOSITIVE>
//                 <AMOUNT>25000</AMOUNT>
//               </ALLLEDGERENTRIES.LIST>
//             </VOUCHER>
//           </TALLYMESSAGE>
//         </REQUESTDATA>
//       </IMPORTDATA>
//     </BODY>
//   </ENVELOPE>
//
// =============================================================================

package voucher

import (
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FIXED WIRE VALUES
// =============================================================================

const (
	// TallyRequestImport is the HEADER request marker.
	TallyRequestImport = "Import Data"

	// ReportNameVouchers is the REQUESTDESC report name.
	ReportNameVouchers = "Vouchers"

	// DefaultCompanyName is the SVCURRENTCOMPANY placeholder.
	DefaultCompanyName = "Your Company Name"

	// ActionCreate is the VOUCHER ACTION attribute.
	ActionCreate = "Create"

	// ObjViewAccounting is the VOUCHER OBJVIEW attribute.
	ObjViewAccounting = "Accounting Voucher View"
)

// VoucherType is the Tally voucher type.
type VoucherType string

const (
	// Payment is money leaving the bank account.
	Payment VoucherType = "Payment"
	// Receipt is money entering the bank account.
	Receipt VoucherType = "Receipt"
)

// =============================================================================
// DOCUMENT TREE
// =============================================================================

// Document is the ENVELOPE root.
type Document struct {
	XMLName xml.Name `xml:"ENVELOPE"`
	Header  Header   `xml:"HEADER"`
	Body    Body     `xml:"BODY"`
}

// Header carries the request marker.
type Header struct {
	TallyRequest string `xml:"TALLYREQUEST"`
}

// Body wraps the import payload.
type Body struct {
	ImportData ImportData `xml:"IMPORTDATA"`
}

// ImportData holds the request description followed by the vouchers.
type ImportData struct {
	RequestDesc RequestDesc `xml:"REQUESTDESC"`
	RequestData RequestData `xml:"REQUESTDATA"`
}

// RequestDesc names the report and the target company.
type RequestDesc struct {
	ReportName      string          `xml:"REPORTNAME"`
	StaticVariables StaticVariables `xml:"STATICVARIABLES"`
}

// StaticVariables holds SVCURRENTCOMPANY.
type StaticVariables struct {
	CurrentCompany string `xml:"SVCURRENTCOMPANY"`
}

// RequestData holds one TALLYMESSAGE per voucher, in output order.
type RequestData struct {
	Messages []TallyMessage `xml:"TALLYMESSAGE"`
}

// TallyMessage wraps a single voucher.
type TallyMessage struct {
	Voucher Voucher `xml:"VOUCHER"`
}

// Voucher is one accounting transaction built from one statement row.
type Voucher struct {
	Type            VoucherType    `xml:"VCHTYPE,attr"`
	Action          string         `xml:"ACTION,attr"`
	ObjView         string         `xml:"OBJVIEW,attr"`
	Date            string         `xml:"DATE"`
	TypeName        VoucherType    `xml:"VOUCHERTYPENAME"`
	Number          string         `xml:"VOUCHERNUMBER"`
	PartyLedgerName string         `xml:"PARTYLEDGERNAME"`
	Narration       string         `xml:"NARRATION"`
	Entries         [2]LedgerEntry `xml:"ALLLEDGERENTRIES.LIST"`
}

// LedgerEntry is one side of the double entry.
type LedgerEntry struct {
	LedgerName       string `xml:"LEDGERNAME"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
	Amount           string `xml:"AMOUNT"`
}

// Vouchers returns the vouchers of the document in output order.
func (d *Document) Vouchers() []Voucher {
	out := make([]Voucher, len(d.Body.ImportData.RequestData.Messages))
	for i, m := range d.Body.ImportData.RequestData.Messages {
		out[i] = m.Voucher
	}
	return out
}

// =============================================================================
// BALANCE CHECKS
// =============================================================================

// Balance sums the two ledger entry amounts. It is zero for every voucher
// built from a numeric amount. Amounts that are not plain decimals, such as
// "1,500.00", return an error.
func (v Voucher) Balance() (decimal.Decimal, error) {
	total := decimal.Zero
	for i, e := range v.Entries {
		amount, err := ParseAmount(e.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("voucher %s entry %d: %w", v.Number, i+1, err)
		}
		total = total.Add(amount)
	}
	return total, nil
}

// Value returns the absolute voucher amount taken from the bank-side entry.
func (v Voucher) Value() (decimal.Decimal, error) {
	amount, err := ParseAmount(v.Entries[1].Amount)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Abs(), nil
}

// ParseAmount parses an AMOUNT text. An empty amount is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
