package shipment

import (
	"time"

	"github.com/exportdesk/exportdesk/internal/compliance"
	"github.com/exportdesk/exportdesk/internal/ledger"
)

// Shipment is the root aggregate for one export job's compliance and
// financial data. Saves always carry the whole aggregate; the backend
// performs an idempotent upsert, never a partial patch.
type Shipment struct {
	JobID           string               `json:"jobId" db:"job_id"`
	Products        []compliance.Product `json:"products"`
	ARInvoices      ledger.ARLedger      `json:"arInvoices"`
	APInvoices      ledger.APLedger      `json:"apInvoices"`
	PaymentRequests ledger.PaymentLedger `json:"paymentRequests"`
	UpdatedAt       time.Time            `json:"updatedAt" db:"updated_at"`
}

// NewShipment returns the default aggregate for a job with no stored
// record: one empty product and empty ledgers. Absence of a record is
// not an error; the operator starts typing into the defaults.
func NewShipment(jobID string) *Shipment {
	return &Shipment{
		JobID:    jobID,
		Products: []compliance.Product{compliance.NewProduct(1)},
	}
}
