package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/session"
)

// HistoryHandler exposes a session's in-memory conversation window.
type HistoryHandler struct {
	registry *session.Registry
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(registry *session.Registry) *HistoryHandler {
	return &HistoryHandler{registry: registry}
}

// HistoryResponse represents the conversation window of one session.
type HistoryResponse struct {
	SessionID string             `json:"session_id"`
	History   []ExchangeResponse `json:"history"`
	Count     int                `json:"count"`
}

// ExchangeResponse is one retained question/answer pair.
type ExchangeResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Get handles GET /api/v1/history/{session_id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	sessionID := chi.URLParam(r, "session_id")
	s, ok := h.registry.Lookup(sessionID)
	if !ok {
		logger.WarnContext(ctx, "unknown session", "session_id", sessionID)
		writeError(w, http.StatusNotFound, "Unknown session")
		return
	}

	exchanges := s.Engine.History()
	history := make([]ExchangeResponse, len(exchanges))
	for i, e := range exchanges {
		history[i] = ExchangeResponse{Question: e.Question, Answer: e.Answer}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		SessionID: sessionID,
		History:   history,
		Count:     len(history),
	})
}

// Clear handles DELETE /api/v1/history/{session_id}. It empties the window
// only; the durable transcript survives.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	sessionID := chi.URLParam(r, "session_id")
	s, ok := h.registry.Lookup(sessionID)
	if !ok {
		logger.WarnContext(ctx, "unknown session", "session_id", sessionID)
		writeError(w, http.StatusNotFound, "Unknown session")
		return
	}

	s.Engine.ClearHistory()
	logger.InfoContext(ctx, "history cleared", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
