// Package handlers contains the HTTP handlers for the assistant API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-assistant/internal/assistant"
	"campus-assistant/internal/llm"
	"campus-assistant/internal/storage"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeEngineError maps pipeline errors to HTTP status codes. The error chain
// carries the failure class, so no error-text inspection is needed.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "Question is required")
	case errors.Is(err, assistant.ErrRetrievalUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
	case errors.Is(err, llm.ErrInferenceUnavailable):
		writeError(w, http.StatusBadGateway, "Inference service unavailable")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
