package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendARRowDefaults(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})

	c.AppendARRow()
	c.AppendARRow()

	rows := c.AR().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].SerialNumber)
	assert.Equal(t, 2, rows[1].SerialNumber)
	assert.Empty(t, rows[0].BillNo)
	assert.Empty(t, rows[0].Currency)
	assert.Zero(t, rows[0].Amount)
	assert.Zero(t, rows[0].Balance)
}

func TestUpdateARRowAndRemoveRenumbers(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})
	c.AppendARRow()
	c.AppendARRow()
	c.AppendARRow()

	c.UpdateARRow(1, "invoiceNo", "EXP/341")
	c.UpdateARRow(1, "amount", 1500.0)
	require.Equal(t, "EXP/341", c.AR().Rows[1].InvoiceNo)

	c.RemoveARRow(0)
	rows := c.AR().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].SerialNumber)
	assert.Equal(t, "EXP/341", rows[0].InvoiceNo)
	assert.Equal(t, 2, rows[1].SerialNumber)
}

func TestUpdateARRowCurrencyNormalised(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})
	c.AppendARRow()

	c.UpdateARRow(0, "currency", " usd ")
	assert.Equal(t, "USD", c.AR().Rows[0].Currency)

	// Unknown codes are kept as typed, only logged.
	c.UpdateARRow(0, "currency", "zzz")
	assert.Equal(t, "ZZZ", c.AR().Rows[0].Currency)
}

func TestUpdateSummaryFields(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})

	c.UpdateARSummary("totalAmount", 9000.0)
	c.UpdateARSummary("defaultCurrency", "eur")
	c.UpdateARSummary("paymentTermsDays", float64(45))
	c.UpdateARSummary("notes", "net 45 agreed with consignee")

	s := c.AR().Summary
	assert.Equal(t, 9000.0, s.TotalAmount)
	assert.Equal(t, "EUR", s.DefaultCurrency)
	assert.Equal(t, 45, s.PaymentTermsDays)
	assert.Equal(t, "net 45 agreed with consignee", s.Notes)
}

func TestAPRowLifecycle(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})

	c.AppendAPRow()
	c.UpdateAPRow(0, "vendorName", "Seaways Shipping")
	c.UpdateAPRow(0, "approved", true)

	rows := c.AP().Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "Seaways Shipping", rows[0].VendorName)
	assert.True(t, rows[0].Approved)

	c.RemoveAPRow(5)
	assert.Len(t, c.AP().Rows, 1, "stale remove is a no-op")
}

func TestNewPaymentRequestDefaults(t *testing.T) {
	pr := NewPaymentRequest(3)

	assert.Equal(t, 3, pr.SerialNumber)
	assert.True(t, strings.HasPrefix(pr.ReferenceNo, "PR-"))
	assert.Len(t, pr.ReferenceNo, 15)
	assert.Equal(t, PaymentModeElectronic, pr.PaymentMode)
	require.Len(t, pr.Charges, 1)
	assert.Equal(t, "EDI CHARGES", pr.Charges[0].Description)
	assert.Equal(t, 1, pr.Charges[0].SerialNumber)
}

func TestPaymentRequestReferenceNumbersUnique(t *testing.T) {
	a := NewPaymentRequest(1)
	b := NewPaymentRequest(2)
	assert.NotEqual(t, a.ReferenceNo, b.ReferenceNo)
}

func TestThreeLevelNesting(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})

	c.AppendPaymentRequest()
	c.AppendCharge(0)
	c.UpdatePaymentRequest(0, "charges.1.description", "TERMINAL HANDLING")
	c.UpdatePaymentRequest(0, "charges.1.amount", 450.0)

	charges := c.Payments().Rows[0].Charges
	require.Len(t, charges, 2)
	assert.Equal(t, "EDI CHARGES", charges[0].Description)
	assert.Equal(t, "TERMINAL HANDLING", charges[1].Description)
	assert.Equal(t, 450.0, charges[1].Amount)
	assert.Equal(t, 2, charges[1].SerialNumber)

	c.AppendPurchaseBill(0)
	c.UpdatePaymentRequest(0, "purchaseBills.0.billNo", "VB-1009")
	bills := c.Payments().Rows[0].PurchaseBills
	require.Len(t, bills, 1)
	assert.Equal(t, "VB-1009", bills[0].BillNo)

	c.RemoveCharge(0, 0)
	charges = c.Payments().Rows[0].Charges
	require.Len(t, charges, 1)
	assert.Equal(t, "TERMINAL HANDLING", charges[0].Description)
	assert.Equal(t, 1, charges[0].SerialNumber)

	c.RemovePurchaseBill(0, 0)
	assert.Empty(t, c.Payments().Rows[0].PurchaseBills)
}

func TestNestedEditOnStalePaymentRowNoOp(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})
	c.AppendCharge(2)
	c.RemovePurchaseBill(-1, 0)
	assert.Empty(t, c.Payments().Rows)
}

func TestLedgerEditsAreIndependentSnapshots(t *testing.T) {
	c := NewController(nil, ARLedger{}, APLedger{}, PaymentLedger{})
	c.AppendARRow()
	before := c.AR()

	c.UpdateARRow(0, "amount", 100.0)

	assert.Zero(t, before.Rows[0].Amount, "captured snapshot must not move")
	assert.Equal(t, 100.0, c.AR().Rows[0].Amount)
}
