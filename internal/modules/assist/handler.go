package assist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
)

// Handler exposes the suggestion endpoints over HTTP.
type Handler struct {
	gw  Gateway
	log *zap.Logger
}

// NewHandler creates a new assist handler.
func NewHandler(gw Gateway, log *zap.Logger) *Handler {
	return &Handler{gw: gw, log: log}
}

// RegisterRoutes mounts the assist routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/assist", func(r chi.Router) {
		r.Post("/suggest-line-item", h.suggestLineItem)
		r.Post("/forecast-sales", h.forecastSales)
	})
}

func (h *Handler) suggestLineItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PartialDescription string `json:"partialDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	if strings.TrimSpace(req.PartialDescription) == "" {
		respondErr(w, apperr.Validationf("partialDescription is required"))
		return
	}
	suggestion, err := h.gw.SuggestLineItem(r.Context(), req.PartialDescription)
	if err != nil {
		h.log.Warn("line item suggestion failed", zap.Error(err))
		respondErr(w, apperr.Store("suggestion service failed", err))
		return
	}
	respond(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}

func (h *Handler) forecastSales(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SalesData []SalesPoint `json:"salesData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	if len(req.SalesData) == 0 {
		respondErr(w, apperr.Validationf("salesData must not be empty"))
		return
	}
	forecast, err := h.gw.ForecastSales(r.Context(), req.SalesData)
	if err != nil {
		h.log.Warn("sales forecast failed", zap.Error(err))
		respondErr(w, apperr.Store("forecast service failed", err))
		return
	}
	respond(w, http.StatusOK, map[string]string{"forecast": forecast})
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
