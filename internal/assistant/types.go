package assistant

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mocks.go -package=mocks campus-assistant/internal/assistant Embedder,VectorIndex,Completer

import (
	"context"

	"campus-assistant/internal/llm"
	"campus-assistant/internal/vectorstore"
)

// Embedder is the embedding capability, defined from the consumer side.
type Embedder interface {
	// EmbedTexts returns one vector per input text.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is the similarity-search capability, defined from the consumer side.
type VectorIndex interface {
	// Query returns up to k matches in the index's native ranking order.
	Query(ctx context.Context, collection string, vector []float32, k int, category string) ([]vectorstore.Match, error)
}

// Completer is the language-model inference capability, defined from the
// consumer side. Failures wrap llm.ErrInferenceUnavailable.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, maxTokens int, temperature float64) (string, error)
}

// Passage is one retrieved unit of source-document text, read-only at query time.
type Passage struct {
	// Text is the full passage text included in the generation prompt.
	Text string `json:"-"`
	// Source is the originating document filename.
	Source string `json:"source"`
	// Category is one of the fixed document categories.
	Category string `json:"category"`
	// RelevanceScore is 1/(1+|distance|), in (0,1]. It is derived for display
	// and never used to re-rank the index's native ordering.
	RelevanceScore float64 `json:"score"`
	// Excerpt is a truncated preview of the passage text.
	Excerpt string `json:"excerpt"`
}

// Exchange is one question/answer pair held in the conversation window.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AskRequest is one turn of the ask pipeline.
type AskRequest struct {
	// Question is the user's question, as typed.
	Question string
	// NResults is the number of passages to retrieve (1..10, default 3).
	NResults int
	// CategoryFilter restricts retrieval to one category. Empty means the
	// category classifier decides.
	CategoryFilter string
	// UseHistory enables conversational context for this turn: reformulation,
	// history in the prompt, and the memory update after generation.
	UseHistory bool
}

// AskResponse is the result of one completed turn.
type AskResponse struct {
	// Question echoes the user-visible question.
	Question string
	// Answer is the generated (or canned greeting) reply.
	Answer string
	// Sources lists the passages supplied to the prompt builder for this turn.
	Sources []Passage
	// ReformulatedQuery is the standalone rewrite of the question, empty when
	// the reformulator was skipped.
	ReformulatedQuery string
	// IsGreeting reports that the turn short-circuited before retrieval.
	IsGreeting bool
}
