package shipment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/exportdesk/exportdesk/internal/platform/httpx"
)

// Handler exposes the job editor over HTTP. Edits are accepted
// optimistically: stale indexes and unknown paths are absorbed by the
// controllers, so the handler's only rejections are malformed requests.
type Handler struct {
	logger   *slog.Logger
	manager  *Manager
	validate *validator.Validate
}

// NewHandler constructs the editor handler.
func NewHandler(logger *slog.Logger, manager *Manager) *Handler {
	return &Handler{
		logger:   logger,
		manager:  manager,
		validate: validator.New(),
	}
}

// Open loads (or joins) the editing session for a job and returns the
// editor state.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, newEditorView(sess))
}

// Show returns the current editor state without side effects beyond
// session creation.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, newEditorView(sess))
}

// SelectProduct moves the product selection and returns the re-derived
// subform strip.
func (h *Handler) SelectProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	sess.SelectProduct(req.Index)
	httpx.JSON(w, http.StatusOK, newEditorView(sess))
}

// AddProduct appends a default product.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(sess *Session) { sess.AddProduct() })
}

// RemoveProduct deletes the product at {index}.
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemoveProduct(index) })
}

// PatchProduct applies a dotted-path edit to the product at {index}.
func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateProductField(index, req.Path, req.Value) })
}

// DEEC item rows.
func (h *Handler) AddDeecItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.AppendDeecItem(index) })
}

func (h *Handler) PatchDeecItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateDeecItem(index, row, req.Path, req.Value) })
}

func (h *Handler) RemoveDeecItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemoveDeecItem(index, row) })
}

// ARE form rows.
func (h *Handler) AddAreRow(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.AppendAreRow(index) })
}

func (h *Handler) PatchAreRow(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateAreRow(index, row, req.Path, req.Value) })
}

func (h *Handler) RemoveAreRow(w http.ResponseWriter, r *http.Request) {
	index, ok := h.intParam(w, r, "index")
	if !ok {
		return
	}
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemoveAreRow(index, row) })
}

// AR ledger.
func (h *Handler) AddARRow(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(sess *Session) { sess.AppendARRow() })
}

func (h *Handler) PatchARRow(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateARRow(row, req.Path, req.Value) })
}

func (h *Handler) RemoveARRow(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemoveARRow(row) })
}

func (h *Handler) PatchARSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateARSummary(req.Path, req.Value) })
}

// AP ledger.
func (h *Handler) AddAPRow(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(sess *Session) { sess.AppendAPRow() })
}

func (h *Handler) PatchAPRow(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateAPRow(row, req.Path, req.Value) })
}

func (h *Handler) RemoveAPRow(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemoveAPRow(row) })
}

func (h *Handler) PatchAPSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdateAPSummary(req.Path, req.Value) })
}

// Payment requests with nested charges and purchase bills.
func (h *Handler) AddPaymentRequest(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(sess *Session) { sess.AppendPaymentRequest() })
}

func (h *Handler) PatchPaymentRequest(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdatePaymentRequest(row, req.Path, req.Value) })
}

func (h *Handler) RemovePaymentRequest(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemovePaymentRequest(row) })
}

func (h *Handler) PatchPaymentSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.patchBody(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.UpdatePaymentSummary(req.Path, req.Value) })
}

func (h *Handler) AddCharge(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.AppendCharge(row) })
}

func (h *Handler) RemoveCharge(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	charge, ok := h.intParam(w, r, "charge")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemoveCharge(row, charge) })
}

func (h *Handler) AddPurchaseBill(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.AppendPurchaseBill(row) })
}

func (h *Handler) RemovePurchaseBill(w http.ResponseWriter, r *http.Request) {
	row, ok := h.intParam(w, r, "row")
	if !ok {
		return
	}
	bill, ok := h.intParam(w, r, "bill")
	if !ok {
		return
	}
	h.mutate(w, r, func(sess *Session) { sess.RemovePurchaseBill(row, bill) })
}

// Save is the explicit Save button: immediate persistence, pending
// timers cancelled.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Flush(r.Context()); err != nil {
		h.logger.Error("explicit save failed", slog.String("job_id", sess.JobID), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Save Failed", "snapshot could not be persisted; your edits are retained")
		return
	}
	httpx.JSON(w, http.StatusOK, newEditorView(sess))
}

// CloseSession abandons the editor, cancelling any pending autosave.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "job id required")
		return
	}
	h.manager.Close(jobID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "job id required")
		return nil, false
	}
	sess, err := h.manager.Open(r.Context(), jobID)
	if err != nil {
		h.logger.Error("open editing session", slog.String("job_id", jobID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*Session)) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	fn(sess)
	httpx.JSON(w, http.StatusOK, newEditorView(sess))
}

func (h *Handler) patchBody(w http.ResponseWriter, r *http.Request) (PatchFieldRequest, bool) {
	var req PatchFieldRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return 0, false
	}
	return v, true
}
