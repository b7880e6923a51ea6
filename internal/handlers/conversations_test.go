package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"campus-assistant/internal/assistant"
	"campus-assistant/internal/session"
	"campus-assistant/internal/storage"
)

type conversationsFixture struct {
	router   http.Handler
	repo     *storage.ConversationRepo
	registry *session.Registry
}

func newConversationsFixture(t *testing.T) *conversationsFixture {
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

	repo := storage.NewConversationRepo(db)
	registry := session.NewRegistry(8, func() assistant.Engine { return &fakeEngine{} })
	h := NewConversationsHandler(repo, registry)

	r := chi.NewRouter()
	r.Post("/conversations", h.Create)
	r.Get("/conversations", h.List)
	r.Get("/conversations/{id}", h.Get)
	r.Delete("/conversations/{id}", h.Delete)

	return &conversationsFixture{router: r, repo: repo, registry: registry}
}

func (f *conversationsFixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestConversationsHandler_Create(t *testing.T) {
	f := newConversationsFixture(t)

	rec := f.do(http.MethodPost, "/conversations")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["conversation_id"] == "" {
		t.Error("response missing conversation_id")
	}
}

func TestConversationsHandler_GetTranscript(t *testing.T) {
	f := newConversationsFixture(t)
	ctx := context.Background()

	id, _ := f.repo.Create(ctx)
	_ = f.repo.Append(ctx, id, &storage.Message{Role: "user", Content: "Quand commence le semestre ?"})
	_ = f.repo.Append(ctx, id, &storage.Message{
		Role:    "assistant",
		Content: "Le 15 septembre (calendrier.md).",
		Sources: []storage.SourceRef{{Source: "calendrier.md", Category: "schedule", Score: 0.9}},
	})

	rec := f.do(http.MethodGet, "/conversations/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ConversationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MessageCount != 2 || len(resp.Messages) != 2 {
		t.Fatalf("MessageCount = %d, Messages = %d, want 2/2", resp.MessageCount, len(resp.Messages))
	}
	if resp.Messages[1].Sources[0].Source != "calendrier.md" {
		t.Errorf("assistant sources = %v", resp.Messages[1].Sources)
	}
}

func TestConversationsHandler_NotFound(t *testing.T) {
	f := newConversationsFixture(t)

	if rec := f.do(http.MethodGet, "/conversations/conv_missing"); rec.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404", rec.Code)
	}
	if rec := f.do(http.MethodDelete, "/conversations/conv_missing"); rec.Code != http.StatusNotFound {
		t.Errorf("DELETE status = %d, want 404", rec.Code)
	}
}

func TestConversationsHandler_List(t *testing.T) {
	f := newConversationsFixture(t)
	ctx := context.Background()

	_, _ = f.repo.Create(ctx)
	_, _ = f.repo.Create(ctx)

	rec := f.do(http.MethodGet, "/conversations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Conversations []ConversationSummaryResponse `json:"conversations"`
		Count         int                           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
}

func TestConversationsHandler_DeleteDropsLiveSession(t *testing.T) {
	f := newConversationsFixture(t)
	ctx := context.Background()

	id, _ := f.repo.Create(ctx)
	f.registry.Get(id)

	rec := f.do(http.MethodDelete, "/conversations/"+id)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if _, ok := f.registry.Lookup(id); ok {
		t.Error("live session should be dropped with the transcript")
	}
	if rec := f.do(http.MethodGet, "/conversations/"+id); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}
