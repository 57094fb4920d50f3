package report

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Handler exposes report endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler creates a new report handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the report routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/inventory.csv", h.inventoryCSV)
		r.Get("/invoices.csv", h.invoicesCSV)
		r.Get("/sales-summary", h.salesSummary)
	})
}

func (h *Handler) inventoryCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := h.svc.ExportInventory(r.Context(), actor, w); err != nil {
		respondErr(w, err)
	}
}

func (h *Handler) invoicesCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	if err := h.svc.ExportInvoices(r.Context(), actor, w); err != nil {
		respondErr(w, err)
	}
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	summary, err := h.svc.SalesSummary(r.Context(), actor)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondErr(w http.ResponseWriter, err error) {
	w.Header().Del("Content-Disposition")
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}
