package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"campus-assistant/internal/assistant"
	"campus-assistant/internal/category"
	"campus-assistant/internal/config"
	"campus-assistant/internal/http"
	"campus-assistant/internal/llm"
	"campus-assistant/internal/session"
	"campus-assistant/internal/storage"
	"campus-assistant/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	conversationRepo := storage.NewConversationRepo(db)
	feedbackRepo := storage.NewFeedbackRepo(db)

	// Load the knowledge configuration (categories, greetings, pronouns,
	// contacts); the built-in defaults apply when no file is configured
	knowledge, err := config.LoadKnowledge(cfg.KnowledgeConfigPath)
	if err != nil {
		log.Fatalf("Failed to load knowledge configuration: %v", err)
	}
	classifier := category.NewClassifier(knowledge)

	// Initialize Qdrant vector store
	ctx := context.Background()
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Each session gets its own engine with an empty conversation window; the
	// retriever and clients are shared.
	retriever := assistant.NewRetriever(embedder, vectorStore, cfg.QdrantCollection, classifier)
	engineFactory := func() assistant.Engine {
		return assistant.NewEngine(retriever, llmClient, knowledge)
	}
	registry := session.NewRegistry(cfg.SessionCapacity, engineFactory)
	slog.Info("Session registry initialized", "capacity", cfg.SessionCapacity)

	deps := &http.Deps{
		Registry:        registry,
		Conversations:   conversationRepo,
		Feedback:        feedbackRepo,
		StatelessEngine: engineFactory(),
		DB:              db,
		VectorStore:     vectorStore,
		Collection:      cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
