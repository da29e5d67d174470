package shipment

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the job editor under /jobs/{jobID}/editor.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/jobs/{jobID}/editor", func(r chi.Router) {
		r.Post("/open", h.Open)
		r.Get("/", h.Show)
		r.Post("/save", h.Save)
		r.Delete("/", h.CloseSession)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.AddProduct)
			r.Post("/select", h.SelectProduct)
			r.Patch("/{index}", h.PatchProduct)
			r.Delete("/{index}", h.RemoveProduct)

			r.Route("/{index}/deec-items", func(r chi.Router) {
				r.Post("/", h.AddDeecItem)
				r.Patch("/{row}", h.PatchDeecItem)
				r.Delete("/{row}", h.RemoveDeecItem)
			})
			r.Route("/{index}/are-rows", func(r chi.Router) {
				r.Post("/", h.AddAreRow)
				r.Patch("/{row}", h.PatchAreRow)
				r.Delete("/{row}", h.RemoveAreRow)
			})
		})

		r.Route("/ar", func(r chi.Router) {
			r.Post("/rows", h.AddARRow)
			r.Patch("/rows/{row}", h.PatchARRow)
			r.Delete("/rows/{row}", h.RemoveARRow)
			r.Patch("/summary", h.PatchARSummary)
		})
		r.Route("/ap", func(r chi.Router) {
			r.Post("/rows", h.AddAPRow)
			r.Patch("/rows/{row}", h.PatchAPRow)
			r.Delete("/rows/{row}", h.RemoveAPRow)
			r.Patch("/summary", h.PatchAPSummary)
		})
		r.Route("/payment-requests", func(r chi.Router) {
			r.Post("/", h.AddPaymentRequest)
			r.Patch("/{row}", h.PatchPaymentRequest)
			r.Delete("/{row}", h.RemovePaymentRequest)
			r.Patch("/summary", h.PatchPaymentSummary)

			r.Post("/{row}/charges", h.AddCharge)
			r.Delete("/{row}/charges/{charge}", h.RemoveCharge)
			r.Post("/{row}/purchase-bills", h.AddPurchaseBill)
			r.Delete("/{row}/purchase-bills/{bill}", h.RemovePurchaseBill)
		})
	})
}
