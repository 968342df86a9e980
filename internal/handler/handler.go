// Package handler serves the attempt history over HTTP for local review.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examterm/examterm/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store *store.Store
}

// New creates a new Handler.
func New(s *store.Store) *Handler {
	return &Handler{store: s}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/attempts", h.handleListAttempts)
	r.Get("/attempts/{attemptID}", h.handleGetAttempt)
}

func (h *Handler) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.store.ListAttempts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, attempts)
}

func (h *Handler) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attemptID")

	attempt, err := h.store.GetAttempt(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "attempt not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, attempt)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
