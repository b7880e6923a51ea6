package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"campus-assistant/internal/assistant"
	"campus-assistant/internal/category"
	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/session"
	"campus-assistant/internal/storage"
)

// AskHandler handles question turns. With a session id the turn runs against
// that session's engine and the transcript is persisted; without one the turn
// is stateless.
type AskHandler struct {
	registry      *session.Registry
	conversations storage.ConversationStore
	stateless     assistant.Engine
}

// NewAskHandler creates a new AskHandler. The stateless engine serves turns
// that carry no session id.
func NewAskHandler(registry *session.Registry, conversations storage.ConversationStore, stateless assistant.Engine) *AskHandler {
	return &AskHandler{
		registry:      registry,
		conversations: conversations,
		stateless:     stateless,
	}
}

// AskRequest represents the HTTP request payload for a question turn.
type AskRequest struct {
	Question       string `json:"question"`
	NResults       int    `json:"n_results,omitempty"`
	CategoryFilter string `json:"category_filter,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	UseHistory     bool   `json:"use_history,omitempty"`
}

// AskResponse represents the HTTP response payload for a question turn.
type AskResponse struct {
	QuestionID        string           `json:"question_id"`
	Question          string           `json:"question"`
	Answer            string           `json:"answer"`
	Sources           []SourceResponse `json:"sources"`
	ReformulatedQuery string           `json:"reformulated_query,omitempty"`
	SessionID         string           `json:"session_id,omitempty"`
	Metadata          ResponseMetadata `json:"metadata"`
}

// SourceResponse is one cited source in the HTTP response.
type SourceResponse struct {
	Source   string  `json:"source"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Excerpt  string  `json:"excerpt"`
}

// ResponseMetadata carries turn metadata.
type ResponseMetadata struct {
	Timestamp      string `json:"timestamp"`
	NDocumentsUsed int    `json:"n_documents_used"`
	IsGreeting     bool   `json:"is_greeting"`
}

// ServeHTTP handles POST /api/v1/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.CategoryFilter != "" && !category.Valid(req.CategoryFilter) {
		logger.WarnContext(ctx, "invalid category filter", "category", req.CategoryFilter)
		writeError(w, http.StatusBadRequest, "Invalid category filter")
		return
	}

	engineReq := assistant.AskRequest{
		Question:       req.Question,
		NResults:       req.NResults,
		CategoryFilter: req.CategoryFilter,
		UseHistory:     req.UseHistory,
	}

	var resp assistant.AskResponse
	var err error

	if req.SessionID != "" {
		// The session id must name an existing conversation; unknown ids are
		// rejected rather than silently creating a transcript.
		known, existsErr := h.conversations.Exists(ctx, req.SessionID)
		if existsErr != nil {
			logger.ErrorContext(ctx, "failed to check conversation", "error", existsErr)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !known {
			logger.WarnContext(ctx, "unknown session id", "session_id", req.SessionID)
			writeError(w, http.StatusNotFound, "Unknown session")
			return
		}

		s := h.registry.Get(req.SessionID)
		s.Lock()
		resp, err = s.Engine.Ask(ctx, engineReq)
		s.Unlock()
	} else {
		// Conversational context requires a session to hold it.
		engineReq.UseHistory = false
		resp, err = h.stateless.Ask(ctx, engineReq)
	}

	if err != nil {
		logger.ErrorContext(ctx, "turn failed", "error", err)
		writeEngineError(w, err)
		return
	}

	questionID := "q_" + uuid.NewString()

	if req.SessionID != "" {
		h.persistTurn(r, req.SessionID, questionID, resp)
	}

	sources := make([]SourceResponse, len(resp.Sources))
	for i, p := range resp.Sources {
		sources[i] = SourceResponse{
			Source:   p.Source,
			Category: p.Category,
			Score:    p.RelevanceScore,
			Excerpt:  p.Excerpt,
		}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		QuestionID:        questionID,
		Question:          resp.Question,
		Answer:            resp.Answer,
		Sources:           sources,
		ReformulatedQuery: resp.ReformulatedQuery,
		SessionID:         req.SessionID,
		Metadata: ResponseMetadata{
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			NDocumentsUsed: len(resp.Sources),
			IsGreeting:     resp.IsGreeting,
		},
	})
}

// persistTurn appends the user question and the assistant answer to the
// durable transcript. It runs only after the turn fully completed, so a
// cancelled or failed turn leaves no partial write. Persistence failures are
// logged but do not fail the response the user already earned.
func (h *AskHandler) persistTurn(r *http.Request, sessionID, questionID string, resp assistant.AskResponse) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userMsg := &storage.Message{
		ID:      questionID,
		Role:    "user",
		Content: resp.Question,
	}
	if err := h.conversations.Append(ctx, sessionID, userMsg); err != nil {
		logger.ErrorContext(ctx, "failed to persist user message", "session_id", sessionID, "error", err)
		return
	}

	refs := make([]storage.SourceRef, len(resp.Sources))
	for i, p := range resp.Sources {
		refs[i] = storage.SourceRef{
			Source:   p.Source,
			Category: p.Category,
			Score:    p.RelevanceScore,
			Excerpt:  p.Excerpt,
		}
	}
	assistantMsg := &storage.Message{
		Role:    "assistant",
		Content: resp.Answer,
		Sources: refs,
	}
	if err := h.conversations.Append(ctx, sessionID, assistantMsg); err != nil {
		logger.ErrorContext(ctx, "failed to persist assistant message", "session_id", sessionID, "error", err)
	}
}
