package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"campus-assistant/internal/category"
	"campus-assistant/internal/llm"
	"campus-assistant/internal/storage"
	"campus-assistant/internal/vectorstore"
	"campus-assistant/internal/vectorstore/mocks"
)

const testVectorSize = 4

// embeddingsServer returns one fixed-size vector per input text.
func embeddingsServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode embeddings request: %v", err)
		}

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, testVectorSize)
			vec[0] = float64(i)
			data[i] = map[string]any{"embedding": vec}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestPipeline(t *testing.T, docsRoot string, store vectorstore.VectorStore) (*Pipeline, *storage.DocumentRepo) {
	t.Helper()

	db, err := storage.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	server := embeddingsServer(t)
	embedder := llm.NewEmbeddingsClient(server.URL, "test-key", "test-model", testVectorSize)
	docRepo := storage.NewDocumentRepo(db)

	return NewPipeline(docsRoot, docRepo, embedder, store, "student_documents"), docRepo
}

func writeDoc(t *testing.T, root, cat, name, content string) string {
	t.Helper()

	dir := filepath.Join(root, cat)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestPipeline_IndexFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	root := t.TempDir()
	path := writeDoc(t, root, category.Regulations, "reglement.md", "# Règlement\n\nLes absences doivent être justifiées.")
	pipeline, docRepo := newTestPipeline(t, root, store)

	var gotPoints []vectorstore.Point
	store.EXPECT().
		Upsert(gomock.Any(), "student_documents", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			gotPoints = points
			return nil
		})

	if err := pipeline.IndexFile(context.Background(), category.Regulations, path); err != nil {
		t.Fatalf("IndexFile() error = %v", err)
	}

	if len(gotPoints) != 1 {
		t.Fatalf("upserted %d points, want 1", len(gotPoints))
	}
	meta := gotPoints[0].Meta
	if meta["source"] != "reglement.md" {
		t.Errorf("source = %v", meta["source"])
	}
	if meta["category"] != category.Regulations {
		t.Errorf("category = %v", meta["category"])
	}
	if meta["chunk_index"] != 0 {
		t.Errorf("chunk_index = %v", meta["chunk_index"])
	}
	if len(gotPoints[0].Vec) != testVectorSize {
		t.Errorf("vector size = %d, want %d", len(gotPoints[0].Vec), testVectorSize)
	}

	hash, err := docRepo.Hash(context.Background(), "reglement.md")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Error("document record was not stored")
	}
}

func TestPipeline_IndexFile_SkipsUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	root := t.TempDir()
	path := writeDoc(t, root, category.FAQs, "faq.md", "Comment obtenir une attestation ?")
	pipeline, _ := newTestPipeline(t, root, store)

	// First pass upserts; the unchanged second pass must not touch the store.
	store.EXPECT().Upsert(gomock.Any(), "student_documents", gomock.Any()).Return(nil).Times(1)

	if err := pipeline.IndexFile(context.Background(), category.FAQs, path); err != nil {
		t.Fatalf("first IndexFile() error = %v", err)
	}
	if err := pipeline.IndexFile(context.Background(), category.FAQs, path); err != nil {
		t.Fatalf("second IndexFile() error = %v", err)
	}
}

func TestPipeline_IndexFile_ReindexesChanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	root := t.TempDir()
	path := writeDoc(t, root, category.Schedule, "calendrier.md", "Le semestre commence en septembre.")
	pipeline, docRepo := newTestPipeline(t, root, store)

	gomock.InOrder(
		store.EXPECT().Upsert(gomock.Any(), "student_documents", gomock.Any()).Return(nil),
		store.EXPECT().DeleteBySource(gomock.Any(), "student_documents", "calendrier.md").Return(nil),
		store.EXPECT().Upsert(gomock.Any(), "student_documents", gomock.Any()).Return(nil),
	)

	if err := pipeline.IndexFile(context.Background(), category.Schedule, path); err != nil {
		t.Fatalf("first IndexFile() error = %v", err)
	}
	firstHash, _ := docRepo.Hash(context.Background(), "calendrier.md")

	if err := os.WriteFile(path, []byte("Le semestre commence en octobre."), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	if err := pipeline.IndexFile(context.Background(), category.Schedule, path); err != nil {
		t.Fatalf("second IndexFile() error = %v", err)
	}

	secondHash, _ := docRepo.Hash(context.Background(), "calendrier.md")
	if firstHash == secondHash {
		t.Error("hash was not refreshed after re-index")
	}
}

func TestPipeline_IndexAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	root := t.TempDir()
	writeDoc(t, root, category.Regulations, "reglement.md", "Les absences doivent être justifiées.")
	writeDoc(t, root, category.Schedule, "calendrier.txt", "Le semestre commence en septembre.")
	writeDoc(t, root, category.Schedule, "notes.pdf", "binary")
	pipeline, docRepo := newTestPipeline(t, root, store)

	// Two indexable files; the .pdf and the missing category dirs are skipped.
	store.EXPECT().Upsert(gomock.Any(), "student_documents", gomock.Any()).Return(nil).Times(2)

	if err := pipeline.IndexAll(context.Background()); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}

	docs, err := docRepo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("indexed %d documents, want 2", len(docs))
	}
}

func TestPipeline_IndexAll_ReportsFileErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	root := t.TempDir()
	writeDoc(t, root, category.Procedures, "inscription.md", "Déposer le dossier au secrétariat.")
	pipeline, _ := newTestPipeline(t, root, store)

	store.EXPECT().
		Upsert(gomock.Any(), "student_documents", gomock.Any()).
		Return(fmt.Errorf("qdrant unreachable"))

	err := pipeline.IndexAll(context.Background())
	if err == nil {
		t.Fatal("IndexAll() should report failed files")
	}
}
