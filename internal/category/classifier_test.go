package category

import (
	"testing"

	"campus-assistant/internal/config"
)

func TestAll_Order(t *testing.T) {
	want := []string{Schedule, Regulations, Procedures, FAQs, Notes}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("All() returned %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValid(t *testing.T) {
	for _, name := range All() {
		if !Valid(name) {
			t.Errorf("Valid(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "unknown", "Schedule", "horaires"} {
		if Valid(name) {
			t.Errorf("Valid(%q) = true, want false", name)
		}
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(config.DefaultKnowledge())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"absence rules", "Quelles sont les règles d'absence ?", Regulations},
		{"semester start", "Quand commence le semestre ?", Schedule},
		{"enrollment", "Comment se passe l'inscription administrative ?", Procedures},
		{"faq phrasing", "Puis-je changer de filière ?", FAQs},
		{"exams", "Comment se calcule la moyenne du contrôle continu ?", Notes},
		{"no keyword", "Parlez-moi de la météo à Rabat", ""},
		{"empty query", "", ""},
		{"case insensitive", "RATTRAPAGE des EXAMENS", Notes},
		{"repeated keyword counts twice", "examen après examen, sans emploi du temps", Notes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

// Equal keyword counts resolve to the first category in declaration order.
func TestClassifier_TieBreak(t *testing.T) {
	c := NewClassifier(config.DefaultKnowledge())

	// One schedule keyword ("vacances") and one notes keyword ("examen").
	got := c.Classify("un examen pendant les vacances")
	if got != Schedule {
		t.Errorf("Classify() = %q, want %q on a tie", got, Schedule)
	}
}
