package storage

import "time"

// SourceRef is one cited source attached to an assistant message, persisted as
// JSON inside the message row.
type SourceRef struct {
	Source   string  `json:"source"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Excerpt  string  `json:"excerpt,omitempty"`
}

// Message is one persisted transcript entry.
type Message struct {
	ID             string
	ConversationID string
	Role           string // "user" or "assistant"
	Content        string
	Timestamp      time.Time
	Sources        []SourceRef
}

// Conversation is a durable transcript. MessageCount always equals
// len(Messages) when the full transcript is loaded.
type Conversation struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Messages     []Message
}

// ConversationSummary is the listing view of a conversation: metadata plus a
// preview of the opening message.
type ConversationSummary struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Preview      string
}

// DocumentRecord tracks one indexed source document.
type DocumentRecord struct {
	ID         string
	Source     string
	Category   string
	Hash       string // SHA256 hex of the raw file content
	ChunkCount int
	IndexedAt  time.Time
}

// FeedbackRecord is one stored answer rating.
type FeedbackRecord struct {
	ID         string
	QuestionID string
	Rating     int // -1, 0, or 1
	Comment    string
	CreatedAt  time.Time
}
