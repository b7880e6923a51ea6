package assistant

import (
	"context"
	"log/slog"
	"strings"

	"campus-assistant/internal/config"
	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/llm"
)

const (
	answerMaxTokens   = 500
	answerTemperature = 0.7
)

// Engine runs the full ask pipeline for one session: greeting check,
// reformulation, retrieval, prompt building, generation and the conversation
// window update. One Engine instance per active session; turns within a
// session are serialized by the session registry.
type Engine interface {
	// Ask processes one turn.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// ClearHistory empties the conversation window. The durable transcript is
	// untouched.
	ClearHistory()
	// History returns the retained exchanges, oldest first.
	History() []Exchange
}

// engine implements the Engine interface.
type engine struct {
	retriever *Retriever
	completer Completer
	memory    *Memory
	knowledge *config.Knowledge
	logger    *slog.Logger
}

// NewEngine creates an Engine with its own empty conversation window.
func NewEngine(retriever *Retriever, completer Completer, knowledge *config.Knowledge) Engine {
	return &engine{
		retriever: retriever,
		completer: completer,
		memory:    NewMemory(),
		knowledge: knowledge,
		logger:    slog.Default(),
	}
}

// Ask processes one turn of the pipeline. Greetings short-circuit before any
// model call. Generation failures propagate as typed errors; a turn never
// returns infrastructure error text disguised as an answer.
func (e *engine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, ErrEmptyQuestion
	}

	logger.InfoContext(ctx, "turn started",
		"question", question,
		"n_results", req.NResults,
		"category_filter", req.CategoryFilter,
		"use_history", req.UseHistory,
	)

	if isGreeting(question, e.knowledge.Greetings) {
		logger.InfoContext(ctx, "greeting detected, skipping retrieval")
		return AskResponse{
			Question:   question,
			Answer:     e.knowledge.GreetingReply,
			Sources:    []Passage{},
			IsGreeting: true,
		}, nil
	}

	// A turn without history is stateless: no reformulation, no history in
	// the prompt, no memory update.
	query := question
	reformulated := ""
	if req.UseHistory {
		if last, ok := e.memory.Last(); ok && needsReformulation(question, e.knowledge.Pronouns) {
			var invoked bool
			query, invoked = e.reformulate(ctx, question, last)
			if invoked {
				reformulated = query
			}
		}
	}

	passages, err := e.retriever.Retrieve(ctx, query, req.NResults, req.CategoryFilter)
	if err != nil {
		return AskResponse{}, err
	}

	prompt := buildPrompt(question, passages, e.memory.Recent(historyExchanges), req.UseHistory, e.knowledge.Contacts)
	logger.DebugContext(ctx, "prompt built", "prompt_length", len(prompt), "passages", len(passages))

	answer, err := e.completer.Complete(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		answerMaxTokens, answerTemperature,
	)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return AskResponse{}, err
	}

	if req.UseHistory {
		e.memory.Add(question, answer)
	}

	logger.InfoContext(ctx, "turn completed",
		"answer_length", len(answer),
		"sources", len(passages),
		"reformulated", reformulated != "",
	)

	return AskResponse{
		Question:          question,
		Answer:            answer,
		Sources:           passages,
		ReformulatedQuery: reformulated,
	}, nil
}

// ClearHistory empties the conversation window.
func (e *engine) ClearHistory() {
	e.memory.Clear()
}

// History returns the retained exchanges, oldest first.
func (e *engine) History() []Exchange {
	return e.memory.Recent(e.memory.Len())
}
