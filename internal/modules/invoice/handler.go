package invoice

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Handler exposes invoice endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler creates a new invoice handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the invoice routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/invoices", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/next-number", h.nextNumber)
		r.Get("/customers", h.listCustomers)
		r.Get("/{number}", h.get)
		r.Put("/{number}", h.update)
		r.Post("/{number}/cancel", h.cancel)
		r.Post("/{number}/payments", h.addPayment)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	inv, err := h.svc.Create(r.Context(), actor, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	invs, err := h.svc.List(r.Context(), actor)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, invs)
}

func (h *Handler) nextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.svc.NextNumber(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"number": number})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	customers, err := h.svc.ListCustomers(r.Context(), actor)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, customers)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	inv, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	inv, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "number"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	inv, err := h.svc.Cancel(r.Context(), actor, chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	var req PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	inv, err := h.svc.AddPayment(r.Context(), actor, chi.URLParam(r, "number"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, inv)
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}
