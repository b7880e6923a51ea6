package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryKeywords binds a document category to the keyword list used by the
// category classifier. The slice order of Categories is the classifier's
// tie-break order: the first declared category wins on equal counts.
type CategoryKeywords struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Knowledge holds the wordlists and canned text the assistant pipeline depends on.
// It ships with built-in defaults; a yaml file can override any of the lists.
type Knowledge struct {
	Categories    []CategoryKeywords `yaml:"categories"`
	Greetings     []string           `yaml:"greetings"`
	Pronouns      []string           `yaml:"pronouns"`
	Contacts      string             `yaml:"contacts"`
	GreetingReply string             `yaml:"greeting_reply"`
}

// DefaultKnowledge returns the built-in wordlists for the UM5 document corpus.
func DefaultKnowledge() *Knowledge {
	return &Knowledge{
		Categories: []CategoryKeywords{
			{Name: "schedule", Keywords: []string{
				"emploi du temps", "horaire", "calendrier", "semestre",
				"rentrée", "planning", "séance", "vacances",
			}},
			{Name: "regulations", Keywords: []string{
				"règlement", "règle", "absence", "charte", "discipline",
				"sanction", "assiduité", "interdit",
			}},
			{Name: "procedures", Keywords: []string{
				"inscription", "procédure", "démarche", "attestation",
				"diplôme", "dossier", "transfert", "réinscription",
			}},
			{Name: "faqs", Keywords: []string{
				"puis-je", "est-il possible", "comment faire", "où trouver",
			}},
			{Name: "notes", Keywords: []string{
				"note", "moyenne", "examen", "rattrapage", "contrôle",
				"validation", "compensation", "évaluation",
			}},
		},
		Greetings: []string{
			"bonjour", "bonsoir", "salut", "coucou", "hello", "hi", "hey",
			"merci", "thanks", "au revoir", "bye", "à bientôt", "bonne journée",
			"ok", "d'accord", "parfait", "super", "ça va",
		},
		Pronouns: []string{
			"il", "elle", "ils", "elles", "ça", "cela",
			"celui", "celle", "ceux", "celles",
		},
		Contacts: "Contacts utiles :\n" +
			"- Scolarité : scolarite@um5.ac.ma\n" +
			"- Site officiel : www.um5.ac.ma\n" +
			"- Accueil : +212 5 37 77 27 37",
		GreetingReply: "Bonjour ! Je suis l'assistant virtuel de l'UM5. " +
			"Posez-moi une question sur les emplois du temps, les règlements, " +
			"les procédures administratives ou les examens.",
	}
}

// LoadKnowledge returns the built-in defaults, overridden by the yaml file at
// path when one is given. A missing file at an explicitly configured path is an
// error; an empty path means "defaults only".
func LoadKnowledge(path string) (*Knowledge, error) {
	kn := DefaultKnowledge()
	if path == "" {
		return kn, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("knowledge config %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read knowledge config: %w", err)
	}

	var override Knowledge
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge config: %w", err)
	}

	if len(override.Categories) > 0 {
		kn.Categories = override.Categories
	}
	if len(override.Greetings) > 0 {
		kn.Greetings = override.Greetings
	}
	if len(override.Pronouns) > 0 {
		kn.Pronouns = override.Pronouns
	}
	if override.Contacts != "" {
		kn.Contacts = override.Contacts
	}
	if override.GreetingReply != "" {
		kn.GreetingReply = override.GreetingReply
	}

	return kn, nil
}
