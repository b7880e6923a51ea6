// Package http wires the API routes and request middleware.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"campus-assistant/internal/assistant"
	"campus-assistant/internal/handlers"
	"campus-assistant/internal/session"
	"campus-assistant/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Registry        *session.Registry
	Conversations   storage.ConversationStore
	Feedback        *storage.FeedbackRepo
	StatelessEngine assistant.Engine
	DB              *sql.DB
	VectorStore     handlers.PointCounter
	Collection      string
}

// NewRouter creates the HTTP router with all API routes registered.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Registry, deps.Conversations, deps.StatelessEngine)
	historyHandler := handlers.NewHistoryHandler(deps.Registry)
	conversationsHandler := handlers.NewConversationsHandler(deps.Conversations, deps.Registry)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Feedback)
	categoriesHandler := handlers.NewCategoriesHandler()
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.Collection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)

		r.Get("/history/{session_id}", historyHandler.Get)
		r.Delete("/history/{session_id}", historyHandler.Clear)

		r.Post("/conversations", conversationsHandler.Create)
		r.Get("/conversations", conversationsHandler.List)
		r.Get("/conversations/{id}", conversationsHandler.Get)
		r.Delete("/conversations/{id}", conversationsHandler.Delete)

		r.Method(http.MethodPost, "/feedback", feedbackHandler)
		r.Method(http.MethodGet, "/categories", categoriesHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
