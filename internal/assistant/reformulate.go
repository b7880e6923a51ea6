package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"campus-assistant/internal/contextutil"
	"campus-assistant/internal/llm"
)

const (
	// reformulationMaxTokens keeps the rewrite call cheap: the output is a
	// single standalone question, not an answer.
	reformulationMaxTokens = 50
	reformulationTemp      = 0.3

	// reformulationSkipWords: a question longer than this without any pronoun
	// is assumed to be self-contained, so no model call is spent on it.
	reformulationSkipWords = 5

	// prevAnswerLimit truncates the previous answer inside the rewrite prompt.
	prevAnswerLimit = 200
)

// needsReformulation decides whether the question depends on conversational
// context. Pronoun detection tokenizes on non-letter runes so that forms like
// "dure-t-il" still expose the pronoun.
func needsReformulation(question string, pronouns []string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	hasPronoun := false
	for _, tok := range tokens {
		for _, p := range pronouns {
			if tok == p {
				hasPronoun = true
				break
			}
		}
		if hasPronoun {
			break
		}
	}

	wordCount := len(strings.Fields(question))
	if !hasPronoun && wordCount > reformulationSkipWords {
		return false
	}
	return true
}

// reformulate rewrites a context-dependent follow-up into a standalone query
// using the last exchange. Returns the query to retrieve with and whether the
// reformulator was actually invoked. A failed model call falls back to the
// original question: reformulation must never abort the turn.
func (e *engine) reformulate(ctx context.Context, question string, last Exchange) (string, bool) {
	logger := contextutil.LoggerFromContext(ctx)

	prevAnswer := last.Answer
	if len([]rune(prevAnswer)) > prevAnswerLimit {
		prevAnswer = string([]rune(prevAnswer)[:prevAnswerLimit]) + "..."
	}

	prompt := fmt.Sprintf(
		"Reformule la question de suivi en une question autonome et complète, "+
			"en remplaçant les pronoms par ce qu'ils désignent. "+
			"Réponds uniquement avec la question reformulée.\n\n"+
			"Question précédente : %s\n"+
			"Réponse précédente : %s\n"+
			"Question de suivi : %s\n\n"+
			"Question reformulée :",
		last.Question, prevAnswer, question,
	)

	rewritten, err := e.completer.Complete(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		reformulationMaxTokens, reformulationTemp,
	)
	if err != nil {
		logger.WarnContext(ctx, "reformulation failed, using original question", "error", err)
		return question, false
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question, false
	}

	logger.DebugContext(ctx, "question reformulated", "original", question, "reformulated", rewritten)
	return rewritten, true
}
