package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks campus-assistant/internal/vectorstore VectorStore

import "context"

// Point represents a passage vector with its payload, as stored in the index.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// Match is one ranked result from a similarity query. Distance grows with
// dissimilarity; the index returns matches in its native ranking order.
type Match struct {
	ID         string
	Text       string
	Source     string
	Category   string
	ChunkIndex int
	Distance   float64
}

// VectorStore defines the vector index capability consumed by retrieval and
// populated by the ingestion pipeline.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query performs a similarity search. A non-empty category restricts the
	// search to passages tagged with that category.
	Query(ctx context.Context, collection string, vector []float32, k int, category string) ([]Match, error)

	// DeleteBySource removes all points belonging to a source document.
	DeleteBySource(ctx context.Context, collection, source string) error
}
