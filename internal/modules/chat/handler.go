package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Handler exposes chat endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler creates a new chat handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the chat routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/conversations", func(r chi.Router) {
		r.Post("/", h.start)
		r.Get("/", h.list)
		r.Get("/{id}/messages", h.listMessages)
		r.Post("/{id}/messages", h.sendMessage)
	})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	conv, err := h.svc.StartConversation(r.Context(), actor, req.UserID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, conv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	conversations, err := h.svc.ListConversations(r.Context(), actor)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, conversations)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, apperr.Validationf("invalid conversation id"))
		return
	}
	messages, err := h.svc.ListMessages(r.Context(), actor, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, messages)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, apperr.Permissionf("authentication required"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, apperr.Validationf("invalid conversation id"))
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, apperr.Validationf("invalid request body"))
		return
	}
	msg, err := h.svc.SendMessage(r.Context(), actor, id, req.Text)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, msg)
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
