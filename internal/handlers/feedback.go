package handlers

import (
	"encoding/json"
	"net/http"

	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/storage"
)

// FeedbackHandler stores answer ratings.
type FeedbackHandler struct {
	repo *storage.FeedbackRepo
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(repo *storage.FeedbackRepo) *FeedbackHandler {
	return &FeedbackHandler{repo: repo}
}

// FeedbackRequest represents the HTTP request payload for a rating.
type FeedbackRequest struct {
	QuestionID string `json:"question_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

// ServeHTTP handles POST /api/v1/feedback.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}
	if req.Rating < -1 || req.Rating > 1 {
		writeError(w, http.StatusBadRequest, "rating must be -1, 0 or 1")
		return
	}

	id, err := h.repo.Save(ctx, req.QuestionID, req.Rating, req.Comment)
	if err != nil {
		logger.ErrorContext(ctx, "failed to save feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	logger.InfoContext(ctx, "feedback saved", "feedback_id", id, "rating", req.Rating)
	writeJSON(w, http.StatusCreated, map[string]string{"feedback_id": id})
}
