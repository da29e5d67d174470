package ledger

import "time"

// PaymentModeElectronic is the default mode on new payment requests.
const PaymentModeElectronic = "Electronic"

// ARInvoiceRow is one receivable invoice line on the AR tab.
type ARInvoiceRow struct {
	SerialNumber int        `json:"serialNumber"`
	InvoiceNo    string     `json:"invoiceNo,omitempty"`
	InvoiceDate  *time.Time `json:"invoiceDate,omitempty"`
	BillNo       string     `json:"billNo,omitempty"`
	PartyName    string     `json:"partyName,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	Amount       float64    `json:"amount"`
	Balance      float64    `json:"balance"`
	Remarks      string     `json:"remarks,omitempty"`
}

func (r ARInvoiceRow) Ordinal() int { return r.SerialNumber }
func (r ARInvoiceRow) WithOrdinal(n int) any {
	r.SerialNumber = n
	return r
}

// APInvoiceRow is one payable invoice line on the AP tab.
type APInvoiceRow struct {
	SerialNumber int        `json:"serialNumber"`
	VendorName   string     `json:"vendorName,omitempty"`
	InvoiceNo    string     `json:"invoiceNo,omitempty"`
	InvoiceDate  *time.Time `json:"invoiceDate,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	Amount       float64    `json:"amount"`
	Balance      float64    `json:"balance"`
	Approved     bool       `json:"approved"`
	Remarks      string     `json:"remarks,omitempty"`
}

func (r APInvoiceRow) Ordinal() int { return r.SerialNumber }
func (r APInvoiceRow) WithOrdinal(n int) any {
	r.SerialNumber = n
	return r
}

// PaymentRequest is one outbound payment request. It nests two
// independently editable collections: charge lines and the purchase
// bills the payment settles.
type PaymentRequest struct {
	SerialNumber  int            `json:"serialNumber"`
	ReferenceNo   string         `json:"referenceNo,omitempty"`
	PayTo         string         `json:"payTo,omitempty"`
	PaymentMode   string         `json:"paymentMode,omitempty"`
	RequestDate   *time.Time     `json:"requestDate,omitempty"`
	Currency      string         `json:"currency,omitempty"`
	Amount        float64        `json:"amount"`
	Charges       []Charge       `json:"charges,omitempty"`
	PurchaseBills []PurchaseBill `json:"purchaseBills,omitempty"`
}

func (r PaymentRequest) Ordinal() int { return r.SerialNumber }
func (r PaymentRequest) WithOrdinal(n int) any {
	r.SerialNumber = n
	return r
}

// Charge is one charge line inside a payment request.
type Charge struct {
	SerialNumber int     `json:"serialNumber"`
	Description  string  `json:"description,omitempty"`
	Amount       float64 `json:"amount"`
	Taxable      bool    `json:"taxable"`
}

func (c Charge) Ordinal() int { return c.SerialNumber }
func (c Charge) WithOrdinal(n int) any {
	c.SerialNumber = n
	return c
}

// PurchaseBill is one settled vendor bill inside a payment request.
type PurchaseBill struct {
	SerialNumber int        `json:"serialNumber"`
	BillNo       string     `json:"billNo,omitempty"`
	BillDate     *time.Time `json:"billDate,omitempty"`
	VendorName   string     `json:"vendorName,omitempty"`
	Amount       float64    `json:"amount"`
}

func (b PurchaseBill) Ordinal() int { return b.SerialNumber }
func (b PurchaseBill) WithOrdinal(n int) any {
	b.SerialNumber = n
	return b
}

// Summary holds the operator-entered ledger totals. These are typed
// free entry, not aggregates computed from the rows; the back office
// reconciles them manually against statements.
type Summary struct {
	TotalAmount        float64 `json:"totalAmount"`
	OutstandingBalance float64 `json:"outstandingBalance"`
	DefaultCurrency    string  `json:"defaultCurrency,omitempty"`
	PaymentTermsDays   int     `json:"paymentTermsDays"`
	Notes              string  `json:"notes,omitempty"`
}

// ARLedger is the receivables tab state.
type ARLedger struct {
	Rows    []ARInvoiceRow `json:"rows,omitempty"`
	Summary Summary        `json:"summary"`
}

// APLedger is the payables tab state.
type APLedger struct {
	Rows    []APInvoiceRow `json:"rows,omitempty"`
	Summary Summary        `json:"summary"`
}

// PaymentLedger is the payment-requests tab state.
type PaymentLedger struct {
	Rows    []PaymentRequest `json:"rows,omitempty"`
	Summary Summary          `json:"summary"`
}
