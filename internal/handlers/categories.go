package handlers

import (
	"net/http"

	"campus-assistant/internal/category"
)

// CategoriesHandler exposes the fixed document category vocabulary.
type CategoriesHandler struct{}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler() *CategoriesHandler {
	return &CategoriesHandler{}
}

// CategoryResponse describes one document category.
type CategoryResponse struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var categoryLabels = map[string][2]string{
	category.Schedule:    {"Emplois du temps", "Horaires des cours, calendrier universitaire et planning des séances"},
	category.Regulations: {"Règlements", "Règlement intérieur, assiduité et discipline"},
	category.Procedures:  {"Procédures", "Démarches administratives, inscriptions et attestations"},
	category.FAQs:        {"Questions fréquentes", "Réponses aux questions les plus courantes des étudiants"},
	category.Notes:       {"Notes et examens", "Évaluation, moyennes, rattrapages et validation"},
}

// ServeHTTP handles GET /api/v1/categories. Categories come back in their
// declaration order, the same order the classifier uses to break ties.
func (h *CategoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	categories := make([]CategoryResponse, 0, len(category.All()))
	for _, name := range category.All() {
		labels := categoryLabels[name]
		categories = append(categories, CategoryResponse{
			Name:        name,
			Label:       labels[0],
			Description: labels[1],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}
