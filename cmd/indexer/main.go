// Command indexer loads the knowledge base documents into the vector store.
// The documents root must contain one subdirectory per category, each holding
// markdown or plain-text files.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"campus-assistant/internal/config"
	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/ingest"
	"campus-assistant/internal/llm"
	"campus-assistant/internal/storage"
	"campus-assistant/internal/vectorstore"
)

func main() {
	docsRoot := flag.String("docs", "./documents", "root directory of category-organized documents")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

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

	ctx := contextutil.WithLogger(context.Background(), logger)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)

	pipeline := ingest.NewPipeline(
		*docsRoot,
		storage.NewDocumentRepo(db),
		embedder,
		vectorStore,
		cfg.QdrantCollection,
	)

	slog.Info("Starting indexing", "docs_root", *docsRoot, "collection", cfg.QdrantCollection)
	if err := pipeline.IndexAll(ctx); err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}
	slog.Info("Indexing finished")
}
