package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"campus-assistant/internal/category"
	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/llm"
	"campus-assistant/internal/storage"
	"campus-assistant/internal/vectorstore"
)

// Pipeline orchestrates indexing of the knowledge base into SQLite and the
// vector store. The documents root holds one subdirectory per category; a
// file's category is the directory it lives in.
type Pipeline struct {
	docsRoot    string
	docRepo     *storage.DocumentRepo
	embedder    *llm.EmbeddingsClient
	vectorStore vectorstore.VectorStore
	collection  string
	parser      *MarkdownParser
	logger      *slog.Logger
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	docsRoot string,
	docRepo *storage.DocumentRepo,
	embedder *llm.EmbeddingsClient,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		docsRoot:    docsRoot,
		docRepo:     docRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		parser:      NewMarkdownParser(),
		logger:      slog.Default(),
	}
}

// IndexFile indexes a single document file. It skips files whose content hash
// matches the stored record, otherwise it re-chunks the document, replaces its
// points in the vector store and refreshes the document record.
func (p *Pipeline) IndexFile(ctx context.Context, cat, path string) error {
	logger := contextutil.LoggerFromContext(ctx)
	source := filepath.Base(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	hash := sha256.Sum256(content)
	hashHex := fmt.Sprintf("%x", hash)

	storedHash, err := p.docRepo.Hash(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to check existing document: %w", err)
	}
	if storedHash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "source", source, "hash", hashHex)
		return nil
	}

	text := p.extractText(path, content)
	chunks := SplitWords(text)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "source", source)
		return nil
	}

	chunkTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkTexts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, chunkTexts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	// Drop the previous version's points before writing the new ones, so a
	// shrinking document leaves no stale chunks behind.
	if storedHash != "" {
		if err := p.vectorStore.DeleteBySource(ctx, p.collection, source); err != nil {
			logger.WarnContext(ctx, "failed to delete old points", "source", source, "error", err)
		}
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: embeddings[i],
			Meta: map[string]any{
				"source":      source,
				"category":    cat,
				"chunk_index": chunk.Index,
				"text":        chunk.Text,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	rec := &storage.DocumentRecord{
		Source:     source,
		Category:   cat,
		Hash:       hashHex,
		ChunkCount: len(chunks),
	}
	if err := p.docRepo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to upsert document record: %w", err)
	}

	logger.InfoContext(ctx, "indexed document", "source", source, "category", cat, "chunks", len(chunks))
	return nil
}

// IndexAll walks the category directories under the documents root and indexes
// every markdown and text file found. Errors for individual files are logged
// but do not stop the run.
func (p *Pipeline) IndexAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	var successCount, errorCount, totalFiles int

	for _, cat := range category.All() {
		dir := filepath.Join(p.docsRoot, cat)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			logger.DebugContext(ctx, "category directory missing", "category", cat)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read category directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !indexableFile(entry.Name()) {
				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			totalFiles++
			if err := p.IndexFile(ctx, cat, filepath.Join(dir, entry.Name())); err != nil {
				errorCount++
				logger.ErrorContext(ctx, "failed to index file", "source", entry.Name(), "error", err)
				continue
			}
			successCount++
		}
	}

	logger.InfoContext(ctx, "indexing completed", "total_files", totalFiles, "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("indexing completed with %d errors", errorCount)
	}
	return nil
}

// extractText turns raw file content into plain text. Markdown goes through
// the goldmark parser; anything else is taken verbatim.
func (p *Pipeline) extractText(path string, content []byte) string {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return p.parser.ExtractText(content)
	}
	return string(content)
}

// indexableFile reports whether a filename is a supported document type.
func indexableFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".txt"
}
