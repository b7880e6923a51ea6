package assistant

import (
	"fmt"
	"strings"
)

const (
	// historyExchanges is how many past exchanges the prompt carries.
	historyExchanges = 3
	// historyAnswerLimit truncates each past answer inside the prompt.
	historyAnswerLimit = 100
)

// buildPrompt assembles the single generation prompt for a turn. It is pure
// string assembly in a fixed order, so identical inputs always produce
// byte-identical prompts. The question passed here is the original one, not
// the reformulated query: citations must track what the user actually asked.
func buildPrompt(question string, passages []Passage, history []Exchange, includeHistory bool, contacts string) string {
	var b strings.Builder

	b.WriteString("Tu es l'assistant virtuel des étudiants de l'Université Mohammed V de Rabat (UM5).\n")
	b.WriteString("Ton rôle : répondre aux questions sur les emplois du temps, règlements, procédures, FAQ et notes.\n\n")

	b.WriteString("Règles strictes :\n")
	b.WriteString("1. Réponds UNIQUEMENT à partir des documents fournis ci-dessous.\n")
	b.WriteString("2. N'invente jamais de liens, de contacts ou de procédures.\n")
	b.WriteString("3. Si l'information est absente, dis \"Je n'ai pas cette information dans ma base de connaissances\" et oriente l'étudiant vers les contacts ci-dessous.\n")
	b.WriteString("4. Cite le nom du document source pour chaque information.\n")
	b.WriteString("5. Sois concis : 2 à 3 phrases.\n")
	b.WriteString("6. Réponds dans la langue de la question (français par défaut).\n\n")

	if includeHistory && len(history) > 0 {
		b.WriteString("Historique récent de la conversation :\n")
		start := 0
		if len(history) > historyExchanges {
			start = len(history) - historyExchanges
		}
		for _, ex := range history[start:] {
			answer := ex.Answer
			if len([]rune(answer)) > historyAnswerLimit {
				answer = string([]rune(answer)[:historyAnswerLimit]) + "..."
			}
			fmt.Fprintf(&b, "Étudiant : %s\nAssistant : %s\n", ex.Question, answer)
		}
		b.WriteString("\n")
	}

	b.WriteString("Documents disponibles :\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "\n[Document %d - %s]\n", i+1, p.Source)
		fmt.Fprintf(&b, "Catégorie : %s\n", p.Category)
		fmt.Fprintf(&b, "Contenu : %s\n", p.Text)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Question de l'étudiant : %s\n\n", question)

	b.WriteString(contacts)
	b.WriteString("\n\nRéponse :")

	return b.String()
}
