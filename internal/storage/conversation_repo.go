package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks campus-assistant/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ConversationStore defines the durable conversation persistence capability.
// A lookup miss is always ErrNotFound; no method silently creates a
// conversation under an id it was not given by Create.
type ConversationStore interface {
	// Create starts a new empty conversation and returns its id.
	Create(ctx context.Context) (string, error)
	// Append adds a message to an existing conversation.
	Append(ctx context.Context, conversationID string, msg *Message) error
	// Load returns a conversation with its full transcript.
	Load(ctx context.Context, conversationID string) (*Conversation, error)
	// Exists reports whether a conversation id is known.
	Exists(ctx context.Context, conversationID string) (bool, error)
	// List returns summaries of all conversations, most recently updated first.
	List(ctx context.Context) ([]ConversationSummary, error)
	// Delete removes a conversation and its messages. Returns ErrNotFound if
	// the id is unknown.
	Delete(ctx context.Context, conversationID string) error
}

// ConversationRepo provides sqlite-backed conversation persistence.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create starts a new empty conversation and returns its id.
func (r *ConversationRepo) Create(ctx context.Context) (string, error) {
	id := "conv_" + uuid.NewString()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO conversations (id, created_at, updated_at, message_count) VALUES (?, ?, ?, 0)",
		id, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

// Append adds a message to an existing conversation. The insert and the
// counter/timestamp bump run in one transaction so concurrent appends to the
// same id cannot lose updates or break message_count == len(messages).
func (r *ConversationRepo) Append(ctx context.Context, conversationID string, msg *Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT message_count FROM conversations WHERE id = ?", conversationID,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query conversation: %w", err)
	}

	if msg.ID == "" {
		msg.ID = "msg_" + uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	sourcesJSON, err := json.Marshal(msg.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, timestamp, sources_json, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, conversationID, msg.Role, msg.Content, msg.Timestamp, string(sourcesJSON), count,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE conversations SET message_count = message_count + 1, updated_at = ? WHERE id = ?",
		msg.Timestamp, conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

// Load returns a conversation with its full transcript, ordered by insertion.
func (r *ConversationRepo) Load(ctx context.Context, conversationID string) (*Conversation, error) {
	var conv Conversation
	err := r.db.QueryRowContext(ctx,
		"SELECT id, created_at, updated_at, message_count FROM conversations WHERE id = ?",
		conversationID,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt, &conv.MessageCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role, content, timestamp, sources_json
		 FROM messages WHERE conversation_id = ? ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		msg := Message{ConversationID: conversationID}
		var sourcesJSON string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp, &sourcesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if sourcesJSON != "" {
			if err := json.Unmarshal([]byte(sourcesJSON), &msg.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources for message %s: %w", msg.ID, err)
			}
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return &conv, nil
}

// Exists reports whether a conversation id is known.
func (r *ConversationRepo) Exists(ctx context.Context, conversationID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM conversations WHERE id = ?", conversationID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query conversation: %w", err)
	}
	return true, nil
}

// List returns summaries of all conversations, most recently updated first.
// The preview is the opening message's first 50 runes.
func (r *ConversationRepo) List(ctx context.Context) ([]ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.created_at, c.updated_at, c.message_count,
		        COALESCE((SELECT content FROM messages m
		                  WHERE m.conversation_id = c.id ORDER BY m.seq ASC LIMIT 1), '')
		 FROM conversations c
		 ORDER BY c.updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var summaries []ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		var opening string
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount, &opening); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		runes := []rune(opening)
		if len(runes) > 50 {
			opening = string(runes[:50]) + "..."
		}
		s.Preview = opening
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return summaries, nil
}

// Delete removes a conversation and its messages.
func (r *ConversationRepo) Delete(ctx context.Context, conversationID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE id = ?", conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
