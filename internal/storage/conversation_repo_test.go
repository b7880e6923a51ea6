package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *ConversationRepo {
	t.Helper()
	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewConversationRepo(db)
}

func TestConversationRepo_CreateAndLoad(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	id, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(id, "conv_") {
		t.Errorf("Create() id = %q, want conv_ prefix", id)
	}

	conv, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if conv.MessageCount != 0 || len(conv.Messages) != 0 {
		t.Errorf("new conversation has %d/%d messages, want 0/0", conv.MessageCount, len(conv.Messages))
	}
}

func TestConversationRepo_AppendKeepsCountAndOrder(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	id, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	turns := []struct {
		role    string
		content string
	}{
		{"user", "Quand commence le semestre ?"},
		{"assistant", "Le 15 septembre (calendrier.md)."},
		{"user", "Et les examens ?"},
		{"assistant", "En janvier (calendrier.md)."},
	}
	for _, turn := range turns {
		msg := &Message{Role: turn.role, Content: turn.content}
		if err := repo.Append(ctx, id, msg); err != nil {
			t.Fatalf("Append(%q) error = %v", turn.content, err)
		}
	}

	conv, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if conv.MessageCount != len(turns) {
		t.Errorf("MessageCount = %d, want %d", conv.MessageCount, len(turns))
	}
	if len(conv.Messages) != conv.MessageCount {
		t.Errorf("len(Messages) = %d, MessageCount = %d, want equal", len(conv.Messages), conv.MessageCount)
	}
	for i, msg := range conv.Messages {
		if msg.Content != turns[i].content {
			t.Errorf("Messages[%d].Content = %q, want %q (insertion order)", i, msg.Content, turns[i].content)
		}
		if msg.Role != turns[i].role {
			t.Errorf("Messages[%d].Role = %q, want %q", i, msg.Role, turns[i].role)
		}
	}
}

func TestConversationRepo_SourcesRoundTrip(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx)
	msg := &Message{
		Role:    "assistant",
		Content: "Les absences doivent être justifiées sous 48 heures.",
		Sources: []SourceRef{
			{Source: "reglement.md", Category: "regulations", Score: 0.83, Excerpt: "Les absences..."},
		},
	}
	if err := repo.Append(ctx, id, msg); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	conv, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := conv.Messages[0].Sources
	if len(got) != 1 {
		t.Fatalf("loaded %d sources, want 1", len(got))
	}
	if got[0] != msg.Sources[0] {
		t.Errorf("loaded source = %+v, want %+v", got[0], msg.Sources[0])
	}
}

func TestConversationRepo_UnknownIDs(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	if _, err := repo.Load(ctx, "conv_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(unknown) error = %v, want ErrNotFound", err)
	}

	// Append never creates a conversation for an unknown id.
	err := repo.Append(ctx, "conv_missing", &Message{Role: "user", Content: "hello"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Append(unknown) error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, "conv_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(unknown) error = %v, want ErrNotFound", err)
	}

	ok, err := repo.Exists(ctx, "conv_missing")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("Exists(unknown) = true, want false")
	}
}

func TestConversationRepo_List(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	first, _ := repo.Create(ctx)
	_ = repo.Append(ctx, first, &Message{
		Role:    "user",
		Content: strings.Repeat("a", 80),
	})

	time.Sleep(5 * time.Millisecond)

	second, _ := repo.Create(ctx)
	_ = repo.Append(ctx, second, &Message{Role: "user", Content: "courte question"})

	summaries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List() returned %d summaries, want 2", len(summaries))
	}

	// Most recently updated first.
	if summaries[0].ID != second {
		t.Errorf("List()[0].ID = %q, want the newest conversation %q", summaries[0].ID, second)
	}
	if summaries[0].Preview != "courte question" {
		t.Errorf("Preview = %q, want the opening message", summaries[0].Preview)
	}
	if wantLen := 53; len(summaries[1].Preview) != wantLen {
		t.Errorf("long preview length = %d, want %d (50 runes plus ellipsis)", len(summaries[1].Preview), wantLen)
	}
}

func TestConversationRepo_Delete(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx)
	for i := 0; i < 3; i++ {
		_ = repo.Append(ctx, id, &Message{Role: "user", Content: fmt.Sprintf("m%d", i)})
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Load(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Delete() error = %v, want ErrNotFound", err)
	}
}
