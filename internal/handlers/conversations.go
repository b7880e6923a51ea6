package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/session"
	"campus-assistant/internal/storage"
)

// ConversationsHandler manages the durable conversation transcripts.
type ConversationsHandler struct {
	store    storage.ConversationStore
	registry *session.Registry
}

// NewConversationsHandler creates a new ConversationsHandler.
func NewConversationsHandler(store storage.ConversationStore, registry *session.Registry) *ConversationsHandler {
	return &ConversationsHandler{store: store, registry: registry}
}

// ConversationSummaryResponse is the listing view of one conversation.
type ConversationSummaryResponse struct {
	ConversationID string `json:"conversation_id"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
	MessageCount   int    `json:"message_count"`
	Preview        string `json:"preview"`
}

// ConversationResponse is the full transcript of one conversation.
type ConversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
	MessageCount   int               `json:"message_count"`
	Messages       []MessageResponse `json:"messages"`
}

// MessageResponse is one transcript entry.
type MessageResponse struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Timestamp string           `json:"timestamp"`
	Sources   []SourceResponse `json:"sources,omitempty"`
}

// Create handles POST /api/v1/conversations.
func (h *ConversationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := h.store.Create(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	logger.InfoContext(ctx, "conversation created", "conversation_id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"conversation_id": id})
}

// List handles GET /api/v1/conversations.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	summaries, err := h.store.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	resp := make([]ConversationSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = ConversationSummaryResponse{
			ConversationID: s.ID,
			CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:      s.UpdatedAt.UTC().Format(time.RFC3339),
			MessageCount:   s.MessageCount,
			Preview:        s.Preview,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": resp,
		"count":         len(resp),
	})
}

// Get handles GET /api/v1/conversations/{id}.
func (h *ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	conv, err := h.store.Load(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to load conversation", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	messages := make([]MessageResponse, len(conv.Messages))
	for i, m := range conv.Messages {
		sources := make([]SourceResponse, len(m.Sources))
		for j, ref := range m.Sources {
			sources[j] = SourceResponse{
				Source:   ref.Source,
				Category: ref.Category,
				Score:    ref.Score,
				Excerpt:  ref.Excerpt,
			}
		}
		messages[i] = MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
			Sources:   sources,
		}
	}

	writeJSON(w, http.StatusOK, ConversationResponse{
		ConversationID: conv.ID,
		CreatedAt:      conv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      conv.UpdatedAt.UTC().Format(time.RFC3339),
		MessageCount:   conv.MessageCount,
		Messages:       messages,
	})
}

// Delete handles DELETE /api/v1/conversations/{id}. The live session, if any,
// is dropped with the transcript.
func (h *ConversationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	err := h.store.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete conversation", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}

	h.registry.Remove(id)
	logger.InfoContext(ctx, "conversation deleted", "conversation_id", id)
	w.WriteHeader(http.StatusNoContent)
}
