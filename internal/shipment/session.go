package shipment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exportdesk/exportdesk/internal/autosave"
	"github.com/exportdesk/exportdesk/internal/compliance"
	"github.com/exportdesk/exportdesk/internal/ledger"
	"github.com/exportdesk/exportdesk/internal/observability"
	"github.com/exportdesk/exportdesk/internal/scheme"
	"github.com/exportdesk/exportdesk/internal/shared"
)

// Session is one open job editor: the in-memory aggregate, the two tab
// controllers, and one autosaver per tab group. Browsers fire edits
// concurrently with their own renders, so all entry points serialise
// on the session mutex; within it the controllers behave exactly like
// the single-threaded editor they model.
type Session struct {
	ID    uuid.UUID
	JobID string

	mu        sync.Mutex
	closed    bool
	touched   time.Time
	products  *compliance.Controller
	ledgers   *ledger.Controller
	metrics   *observability.Metrics
	prodSaver *autosave.Saver
	arSaver   *autosave.Saver
	apSaver   *autosave.Saver
	paySaver  *autosave.Saver
}

func newSession(logger *slog.Logger, snap *Shipment, svc *Service, metrics *observability.Metrics, delay time.Duration) *Session {
	s := &Session{
		ID:       uuid.New(),
		JobID:    snap.JobID,
		touched:  time.Now(),
		products: compliance.NewController(logger, snap.Products),
		ledgers:  ledger.NewController(logger, snap.ARInvoices, snap.APInvoices, snap.PaymentRequests),
		metrics:  metrics,
	}
	save := func(ctx context.Context, snapshot any) error {
		return svc.Save(ctx, snapshot.(*Shipment))
	}
	// Each tab owns its debounce window; a burst on the AR tab never
	// delays a pending compliance save. Every save still carries the
	// whole aggregate, so coalescing within one saver is last-write-wins.
	s.prodSaver = autosave.New(logger, delay, s.snapshotAny, save)
	s.arSaver = autosave.New(logger, delay, s.snapshotAny, save)
	s.apSaver = autosave.New(logger, delay, s.snapshotAny, save)
	s.paySaver = autosave.New(logger, delay, s.snapshotAny, save)
	return s
}

// Snapshot assembles the current aggregate. Controllers hand out
// copy-on-write state, so the result is safe to hold across later
// edits.
func (s *Session) Snapshot() *Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *Shipment {
	return &Shipment{
		JobID:           s.JobID,
		Products:        s.products.Products(),
		ARInvoices:      s.ledgers.AR(),
		APInvoices:      s.ledgers.AP(),
		PaymentRequests: s.ledgers.Payments(),
	}
}

func (s *Session) snapshotAny() any {
	return s.Snapshot()
}

// Subforms returns the tab strip for the selected product, empty when
// no product is selected.
func (s *Session) Subforms() []scheme.Subform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.DeriveSubforms()
}

// SelectedIndex exposes the product selection for rendering.
func (s *Session) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.SelectedIndex()
}

// SelectProduct moves the product selection. Selection is data-free:
// nothing is scheduled for save.
func (s *Session) SelectProduct(index int) {
	s.withProducts(false, func(c *compliance.Controller) { c.SelectProduct(index) })
}

// AddProduct appends a default product.
func (s *Session) AddProduct() {
	s.withProducts(true, func(c *compliance.Controller) { c.AddProduct() })
}

// RemoveProduct deletes a product, keeping remaining serials stable.
func (s *Session) RemoveProduct(index int) {
	s.withProducts(true, func(c *compliance.Controller) { c.RemoveProduct(index) })
}

// UpdateProductField applies one dotted-path product edit.
func (s *Session) UpdateProductField(index int, path string, value any) {
	s.withProducts(true, func(c *compliance.Controller) { c.UpdateProductField(index, path, value) })
}

// AppendDeecItem, UpdateDeecItem and RemoveDeecItem edit the DEEC
// item rows of one product.
func (s *Session) AppendDeecItem(index int) {
	s.withProducts(true, func(c *compliance.Controller) { c.AppendDeecItem(index) })
}

func (s *Session) UpdateDeecItem(index, row int, path string, value any) {
	s.withProducts(true, func(c *compliance.Controller) { c.UpdateDeecItem(index, row, path, value) })
}

func (s *Session) RemoveDeecItem(index, row int) {
	s.withProducts(true, func(c *compliance.Controller) { c.RemoveDeecItem(index, row) })
}

// AppendAreRow, UpdateAreRow and RemoveAreRow edit the ARE form rows
// of one product.
func (s *Session) AppendAreRow(index int) {
	s.withProducts(true, func(c *compliance.Controller) { c.AppendAreRow(index) })
}

func (s *Session) UpdateAreRow(index, row int, path string, value any) {
	s.withProducts(true, func(c *compliance.Controller) { c.UpdateAreRow(index, row, path, value) })
}

func (s *Session) RemoveAreRow(index, row int) {
	s.withProducts(true, func(c *compliance.Controller) { c.RemoveAreRow(index, row) })
}

// AR ledger operations.
func (s *Session) AppendARRow() {
	s.withLedger(s.arSaver, func(c *ledger.Controller) { c.AppendARRow() })
}
func (s *Session) RemoveARRow(row int) {
	s.withLedger(s.arSaver, func(c *ledger.Controller) { c.RemoveARRow(row) })
}
func (s *Session) UpdateARRow(row int, path string, value any) {
	s.withLedger(s.arSaver, func(c *ledger.Controller) { c.UpdateARRow(row, path, value) })
}
func (s *Session) UpdateARSummary(path string, value any) {
	s.withLedger(s.arSaver, func(c *ledger.Controller) { c.UpdateARSummary(path, value) })
}

// AP ledger operations.
func (s *Session) AppendAPRow() {
	s.withLedger(s.apSaver, func(c *ledger.Controller) { c.AppendAPRow() })
}
func (s *Session) RemoveAPRow(row int) {
	s.withLedger(s.apSaver, func(c *ledger.Controller) { c.RemoveAPRow(row) })
}
func (s *Session) UpdateAPRow(row int, path string, value any) {
	s.withLedger(s.apSaver, func(c *ledger.Controller) { c.UpdateAPRow(row, path, value) })
}
func (s *Session) UpdateAPSummary(path string, value any) {
	s.withLedger(s.apSaver, func(c *ledger.Controller) { c.UpdateAPSummary(path, value) })
}

// Payment request operations, including the nested charge and
// purchase-bill collections.
func (s *Session) AppendPaymentRequest() {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.AppendPaymentRequest() })
}
func (s *Session) RemovePaymentRequest(row int) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.RemovePaymentRequest(row) })
}
func (s *Session) UpdatePaymentRequest(row int, path string, value any) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.UpdatePaymentRequest(row, path, value) })
}
func (s *Session) UpdatePaymentSummary(path string, value any) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.UpdatePaymentSummary(path, value) })
}
func (s *Session) AppendCharge(row int) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.AppendCharge(row) })
}
func (s *Session) RemoveCharge(row, charge int) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.RemoveCharge(row, charge) })
}
func (s *Session) AppendPurchaseBill(row int) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.AppendPurchaseBill(row) })
}
func (s *Session) RemovePurchaseBill(row, bill int) {
	s.withLedger(s.paySaver, func(c *ledger.Controller) { c.RemovePurchaseBill(row, bill) })
}

// Flush saves immediately, backing the explicit Save button, and
// cancels all pending debounce timers.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrSessionClosed
	}
	s.touched = time.Now()
	s.mu.Unlock()

	// One immediate save of the full aggregate covers all tabs; the
	// remaining savers only need their timers dropped.
	err := s.prodSaver.FlushNow(ctx)
	s.arSaver.Cancel()
	s.apSaver.Cancel()
	s.paySaver.Cancel()
	return err
}

// Close cancels every pending autosave and marks the session dead.
// A pending timer firing into a discarded snapshot is exactly the
// stray-save bug this exists to prevent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.prodSaver.Close()
	s.arSaver.Close()
	s.apSaver.Close()
	s.paySaver.Close()
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
}

// IdleSince reports the last edit time, for manager eviction.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) withProducts(schedule bool, fn func(*compliance.Controller)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(s.products)
	s.touched = time.Now()
	s.mu.Unlock()
	if schedule {
		s.metrics.ObserveEdit()
		s.prodSaver.Schedule()
	}
}

func (s *Session) withLedger(saver *autosave.Saver, fn func(*ledger.Controller)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(s.ledgers)
	s.touched = time.Now()
	s.mu.Unlock()
	s.metrics.ObserveEdit()
	saver.Schedule()
}
