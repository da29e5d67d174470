// Package ledger implements the financial tabs of the job editor: AR
// invoices, AP invoices and payment requests. The tabs reuse the same
// copy-on-write row editing as the compliance side but carry no scheme
// concept; every row type has a fixed field set.
package ledger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/exportdesk/exportdesk/internal/collection"
	"github.com/exportdesk/exportdesk/internal/fieldpath"
)

var (
	arEditor = collection.Editor[ARInvoiceRow]{
		NewRow:   func(ordinal int) ARInvoiceRow { return ARInvoiceRow{SerialNumber: ordinal} },
		Renumber: true,
	}
	apEditor = collection.Editor[APInvoiceRow]{
		NewRow:   func(ordinal int) APInvoiceRow { return APInvoiceRow{SerialNumber: ordinal} },
		Renumber: true,
	}
	paymentEditor = collection.Editor[PaymentRequest]{
		NewRow:   NewPaymentRequest,
		Renumber: true,
	}
	chargeEditor = collection.Editor[Charge]{
		NewRow:   func(ordinal int) Charge { return Charge{SerialNumber: ordinal} },
		Renumber: true,
	}
	billEditor = collection.Editor[PurchaseBill]{
		NewRow:   func(ordinal int) PurchaseBill { return PurchaseBill{SerialNumber: ordinal} },
		Renumber: true,
	}
)

// NewPaymentRequest builds the default payment request: a generated
// reference number, electronic payment mode, and a single seeded EDI
// charge line, matching what the back office raises most often.
func NewPaymentRequest(ordinal int) PaymentRequest {
	ref := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	return PaymentRequest{
		SerialNumber: ordinal,
		ReferenceNo:  fmt.Sprintf("PR-%s", ref),
		PaymentMode:  PaymentModeElectronic,
		Charges:      []Charge{{SerialNumber: 1, Description: "EDI CHARGES"}},
	}
}

// Controller owns the three ledgers for one job. Each ledger is edited
// and persisted independently of the compliance tabs.
type Controller struct {
	logger *slog.Logger
	ar     ARLedger
	ap     APLedger
	pay    PaymentLedger
}

// NewController wraps existing ledger state. Empty row sets are left
// empty; unlike products there is no mandatory first row.
func NewController(logger *slog.Logger, ar ARLedger, ap APLedger, pay PaymentLedger) *Controller {
	return &Controller{logger: logger, ar: ar, ap: ap, pay: pay}
}

func (c *Controller) AR() ARLedger            { return c.ar }
func (c *Controller) AP() APLedger            { return c.ap }
func (c *Controller) Payments() PaymentLedger { return c.pay }

// AppendARRow adds a default receivable row.
func (c *Controller) AppendARRow() {
	c.ar.Rows = arEditor.Append(c.ar.Rows)
}

// UpdateARRow edits one field of one receivable row.
func (c *Controller) UpdateARRow(row int, path string, value any) {
	c.ar.Rows = arEditor.UpdateAt(c.ar.Rows, row, func(r ARInvoiceRow) ARInvoiceRow {
		return patchRow(c.logger, r, path, normaliseCurrencyValue(c.logger, path, value))
	})
}

// RemoveARRow deletes a receivable row and renumbers the remainder.
func (c *Controller) RemoveARRow(row int) {
	c.ar.Rows = arEditor.Remove(c.ar.Rows, row)
}

// UpdateARSummary edits one operator-entered AR summary field.
func (c *Controller) UpdateARSummary(path string, value any) {
	c.ar.Summary = patchRow(c.logger, c.ar.Summary, path, normaliseCurrencyValue(c.logger, path, value))
}

// AppendAPRow adds a default payable row.
func (c *Controller) AppendAPRow() {
	c.ap.Rows = apEditor.Append(c.ap.Rows)
}

// UpdateAPRow edits one field of one payable row.
func (c *Controller) UpdateAPRow(row int, path string, value any) {
	c.ap.Rows = apEditor.UpdateAt(c.ap.Rows, row, func(r APInvoiceRow) APInvoiceRow {
		return patchRow(c.logger, r, path, normaliseCurrencyValue(c.logger, path, value))
	})
}

// RemoveAPRow deletes a payable row and renumbers the remainder.
func (c *Controller) RemoveAPRow(row int) {
	c.ap.Rows = apEditor.Remove(c.ap.Rows, row)
}

// UpdateAPSummary edits one operator-entered AP summary field.
func (c *Controller) UpdateAPSummary(path string, value any) {
	c.ap.Summary = patchRow(c.logger, c.ap.Summary, path, normaliseCurrencyValue(c.logger, path, value))
}

// AppendPaymentRequest adds a default payment request with its seeded
// charge line.
func (c *Controller) AppendPaymentRequest() {
	c.pay.Rows = paymentEditor.Append(c.pay.Rows)
}

// UpdatePaymentRequest edits one field of one payment request,
// including nested paths such as "charges.0.amount".
func (c *Controller) UpdatePaymentRequest(row int, path string, value any) {
	c.pay.Rows = paymentEditor.UpdateAt(c.pay.Rows, row, func(r PaymentRequest) PaymentRequest {
		return patchRow(c.logger, r, path, normaliseCurrencyValue(c.logger, path, value))
	})
}

// RemovePaymentRequest deletes a payment request and renumbers.
func (c *Controller) RemovePaymentRequest(row int) {
	c.pay.Rows = paymentEditor.Remove(c.pay.Rows, row)
}

// UpdatePaymentSummary edits one operator-entered payments summary field.
func (c *Controller) UpdatePaymentSummary(path string, value any) {
	c.pay.Summary = patchRow(c.logger, c.pay.Summary, path, normaliseCurrencyValue(c.logger, path, value))
}

// AppendCharge adds a default charge line to the payment request at row.
func (c *Controller) AppendCharge(row int) {
	c.withPayment(row, func(r PaymentRequest) PaymentRequest {
		r.Charges = chargeEditor.Append(r.Charges)
		return r
	})
}

// RemoveCharge deletes a charge line and renumbers the remainder.
func (c *Controller) RemoveCharge(row, charge int) {
	c.withPayment(row, func(r PaymentRequest) PaymentRequest {
		r.Charges = chargeEditor.Remove(r.Charges, charge)
		return r
	})
}

// AppendPurchaseBill adds a default purchase bill to the payment
// request at row.
func (c *Controller) AppendPurchaseBill(row int) {
	c.withPayment(row, func(r PaymentRequest) PaymentRequest {
		r.PurchaseBills = billEditor.Append(r.PurchaseBills)
		return r
	})
}

// RemovePurchaseBill deletes a purchase bill and renumbers.
func (c *Controller) RemovePurchaseBill(row, bill int) {
	c.withPayment(row, func(r PaymentRequest) PaymentRequest {
		r.PurchaseBills = billEditor.Remove(r.PurchaseBills, bill)
		return r
	})
}

func (c *Controller) withPayment(row int, fn func(PaymentRequest) PaymentRequest) {
	if row < 0 || row >= len(c.pay.Rows) {
		if c.logger != nil {
			c.logger.Warn("edit on stale payment request", slog.Int("row", row))
		}
		return
	}
	c.pay.Rows = paymentEditor.UpdateAt(c.pay.Rows, row, fn)
}

// patchRow applies a dotted-path edit, absorbing failures so a stray
// keystroke never aborts the session.
func patchRow[T any](logger *slog.Logger, row T, path string, value any) T {
	updated, err := fieldpath.Set(row, path, value)
	if err != nil {
		if logger != nil {
			logger.Warn("ledger field update rejected", slog.String("path", path), slog.Any("error", err))
		}
		return row
	}
	return updated
}

// normaliseCurrencyValue upper-cases and checks ISO 4217 codes typed
// into currency fields. Unknown codes are kept as typed (fail-open,
// same policy as scheme classification) but logged.
func normaliseCurrencyValue(logger *slog.Logger, path string, value any) any {
	last := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		last = path[i+1:]
	}
	if last != "currency" && last != "defaultCurrency" {
		return value
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if _, err := currency.ParseISO(s); err != nil {
		if logger != nil {
			logger.Warn("unrecognised currency code", slog.String("code", s))
		}
	}
	return s
}
