package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"campus-assistant/internal/contextutil"
)

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) is derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// Upsert inserts or updates points in the collection.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoint := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
		}

		if len(point.Meta) > 0 {
			qdrantPoint.Payload = qdrant.NewValueMap(point.Meta)
		}

		qdrantPoints = append(qdrantPoints, qdrantPoint)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Query performs a similarity search, optionally restricted to one category.
// Qdrant cosine queries return similarity scores; Match.Distance is derived as
// 1 - similarity so callers can stay in distance space.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k int, category string) ([]Match, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if category != "" {
		queryReq.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("category", category),
			},
		}
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", collection, "k", k, "category", category, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	matches := make([]Match, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		pointID := ""
		if point.Id != nil {
			pointID = point.Id.GetUuid()
		}

		match := Match{
			ID:       pointID,
			Distance: 1 - float64(point.Score),
		}
		if point.Payload != nil {
			match.Text = payloadString(point.Payload, "text")
			match.Source = payloadString(point.Payload, "source")
			match.Category = payloadString(point.Payload, "category")
			match.ChunkIndex = payloadInt(point.Payload, "chunk_index")
		}

		matches = append(matches, match)
	}

	logger.InfoContext(ctx, "query completed", "collection", collection, "k", k, "category", category, "results", len(matches))
	return matches, nil
}

// DeleteBySource removes all points tagged with the given source document.
func (s *QdrantStore) DeleteBySource(ctx context.Context, collection, source string) error {
	logger := contextutil.LoggerFromContext(ctx)

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source", source),
			},
		}),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "source", source, "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "source", source)
	return nil
}

// EnsureCollection ensures a collection exists with the specified vector size.
// If the collection exists, validates that the vector size matches.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", collection, "vector_size", vectorSize)
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}

	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}

	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}

	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// PointsCount returns the number of points stored in a collection.
func (s *QdrantStore) PointsCount(ctx context.Context, collection string) (int, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}

	if info.PointsCount == nil {
		return 0, nil
	}
	return int(*info.PointsCount), nil
}

// payloadString extracts a string field from a Qdrant payload.
func payloadString(payload map[string]*qdrant.Value, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if sv, ok := v.Kind.(*qdrant.Value_StringValue); ok {
		return sv.StringValue
	}
	return ""
}

// payloadInt extracts an integer field from a Qdrant payload.
func payloadInt(payload map[string]*qdrant.Value, key string) int {
	v, ok := payload[key]
	if !ok || v == nil {
		return 0
	}
	switch kv := v.Kind.(type) {
	case *qdrant.Value_IntegerValue:
		return int(kv.IntegerValue)
	case *qdrant.Value_DoubleValue:
		return int(kv.DoubleValue)
	}
	return 0
}
