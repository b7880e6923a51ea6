package assistant

import (
	"context"
	"fmt"

	"campus-assistant/internal/category"
	"campus-assistant/internal/contextutil"
)

const (
	defaultResults = 3
	maxResults     = 10
	// excerptLimit truncates passage previews returned to callers.
	excerptLimit = 200
)

// Retriever embeds a query and fetches the top-k passages from the vector
// index, with category-aware filtering.
type Retriever struct {
	embedder   Embedder
	index      VectorIndex
	collection string
	classifier *category.Classifier
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder Embedder, index VectorIndex, collection string, classifier *category.Classifier) *Retriever {
	return &Retriever{
		embedder:   embedder,
		index:      index,
		collection: collection,
		classifier: classifier,
	}
}

// Retrieve returns up to k passages for the query, most relevant first.
// When no category override is given the classifier picks the filter. The
// index is over-fetched at 2k with the filter applied; on index failure one
// filterless retry at exactly k is attempted before giving up with
// ErrRetrievalUnavailable. Results keep the index's native ranking order; the
// derived relevance score is for display only.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, categoryOverride string) ([]Passage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		k = defaultResults
	}
	if k > maxResults {
		k = maxResults
	}

	filter := categoryOverride
	if filter == "" {
		filter = r.classifier.Classify(query)
		if filter != "" {
			logger.DebugContext(ctx, "category classified", "query", query, "category", filter)
		}
	}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("%w: embedding failed: %v", ErrRetrievalUnavailable, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for query", ErrRetrievalUnavailable)
	}
	vector := embeddings[0]

	// Over-fetch to tolerate post-filtering on the index side.
	matches, err := r.index.Query(ctx, r.collection, vector, 2*k, filter)
	if err != nil {
		logger.WarnContext(ctx, "filtered query failed, retrying without filter", "category", filter, "error", err)
		matches, err = r.index.Query(ctx, r.collection, vector, k, "")
		if err != nil {
			logger.ErrorContext(ctx, "filterless retry failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
		}
	}

	if len(matches) > k {
		matches = matches[:k]
	}

	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		dist := m.Distance
		if dist < 0 {
			dist = -dist
		}
		passages = append(passages, Passage{
			Text:           m.Text,
			Source:         m.Source,
			Category:       m.Category,
			RelevanceScore: 1 / (1 + dist),
			Excerpt:        excerpt(m.Text),
		})
	}

	logger.InfoContext(ctx, "retrieval completed", "k", k, "category", filter, "results", len(passages))
	return passages, nil
}

// excerpt returns a truncated preview of a passage text.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + "..."
}
