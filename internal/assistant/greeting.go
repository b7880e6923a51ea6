package assistant

import "strings"

// maxGreetingTokens bounds how short a message must be to count as small talk.
// Anything longer is assumed to carry a real question even if it opens with a
// greeting phrase.
const maxGreetingTokens = 3

// isGreeting reports whether the question is conversational small talk
// (greeting, thanks, farewell, short acknowledgement) that must bypass
// reformulation, retrieval and grounded generation entirely.
func isGreeting(question string, phrases []string) bool {
	tokens := strings.Fields(question)
	if len(tokens) == 0 || len(tokens) > maxGreetingTokens {
		return false
	}

	lowered := strings.ToLower(question)
	for _, phrase := range phrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
