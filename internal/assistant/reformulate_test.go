package assistant

import (
	"testing"

	"campus-assistant/internal/config"
)

func TestNeedsReformulation(t *testing.T) {
	pronouns := config.DefaultKnowledge().Pronouns

	tests := []struct {
		name     string
		question string
		want     bool
	}{
		{"short question", "Quelle est la durée ?", true},
		{"pronoun in long question", "Combien de temps est-ce que ça prend au total ?", true},
		{"hyphenated verb form exposes pronoun", "Combien de temps le processus dure-t-il ?", true},
		{"self-contained long question", "Quand commence le semestre d'automne ?", false},
		{"long question without pronoun", "Quelles sont les modalités de réinscription administrative ?", false},
		{"leading pronoun", "Elle se termine quand exactement cette période ?", true},
		{"article is not a pronoun", "Comment obtenir une attestation de scolarité rapidement ?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsReformulation(tt.question, pronouns); got != tt.want {
				t.Errorf("needsReformulation(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}
