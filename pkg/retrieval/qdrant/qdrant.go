// Package qdrant provides a vector store backed by a Qdrant server.
//
// Collections are created lazily on first Add with cosine distance, so
// scores returned by Search are already on the higher-is-better scale the
// store contract requires.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	qd "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

const defaultPort = 6334

// Config holds Qdrant store configuration.
type Config struct {
	// URL is the Qdrant server address, e.g. "http://localhost:6334".
	URL string

	// Collection is the collection name. Defaults to "documents".
	Collection string

	// APIKey is the optional authentication key.
	APIKey string

	// Dimensions is the vector size used when the collection has to be
	// created. Defaults to 1536.
	Dimensions int

	// UseTLS enables transport security. Implied by an https URL.
	UseTLS bool

	// GRPCOptions are appended to the default dial options (client-side
	// keepalive) for the underlying connection.
	GRPCOptions []grpc.DialOption
}

// Store is a Qdrant-backed vector store.
type Store struct {
	client     *qd.Client
	collection string
	dims       uint64
}

// New connects to a Qdrant server.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 1536
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant URL %q: %w", cfg.URL, err)
	}
	port := defaultPort
	if parsed.Port() != "" {
		p, err := strconv.Atoi(parsed.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port %q: %w", parsed.Port(), err)
		}
		port = p
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}, cfg.GRPCOptions...)

	client, err := qd.NewClient(&qd.Config{
		Host:        parsed.Hostname(),
		Port:        port,
		APIKey:      cfg.APIKey,
		UseTLS:      cfg.UseTLS || parsed.Scheme == "https",
		GrpcOptions: dialOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Store{
		client:     client,
		collection: cfg.Collection,
		dims:       uint64(cfg.Dimensions),
	}, nil
}

// Add upserts documents with their vectors, creating the collection on
// first use. Re-adding an existing document ID overwrites the point.
func (s *Store) Add(ctx context.Context, docs []retrieval.Document, vectors []retrieval.EmbeddingVector) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents, %d vectors",
			retrieval.ErrCountMismatch, len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]*qd.PointStruct, 0, len(docs))
	for i, doc := range docs {
		if uint64(len(vectors[i])) != s.dims {
			return fmt.Errorf("%w: document %s has %d, collection holds %d",
				retrieval.ErrDimensionMismatch, doc.ID, len(vectors[i]), s.dims)
		}
		points = append(points, &qd.PointStruct{
			Id:      &qd.PointId{PointIdOptions: &qd.PointId_Uuid{Uuid: doc.ID}},
			Vectors: qd.NewVectors(vectors[i]...),
			Payload: buildPayload(doc),
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points to %s: %w", len(points), s.collection, err)
	}
	return nil
}

// Search queries the collection ranked by cosine similarity. The threshold
// is applied server-side, so the result pool never exceeds query.Limit.
func (s *Store) Search(ctx context.Context, query retrieval.SearchQuery) (*retrieval.SearchResult, error) {
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	req := &qd.QueryPoints{
		CollectionName: s.collection,
		Query:          qd.NewQuery(query.Vector...),
		WithPayload:    qd.NewWithPayload(true),
	}
	if query.Limit > 0 {
		limit := uint64(query.Limit)
		req.Limit = &limit
	}
	if query.Threshold > 0 {
		threshold := float32(query.Threshold)
		req.ScoreThreshold = &threshold
	}
	if len(query.Filter) > 0 {
		req.Filter = buildFilter(query.Filter)
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	docs := make([]retrieval.Document, 0, len(points))
	for _, point := range points {
		docs = append(docs, pointToDocument(point))
	}

	return &retrieval.SearchResult{
		Documents: docs,
		Query:     query.Text,
		Total:     len(docs),
		Threshold: query.Threshold,
	}, nil
}

// Count returns the exact number of points in the collection. A missing
// collection counts as empty.
func (s *Store) Count(ctx context.Context) (int, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if !exists {
		return 0, nil
	}

	exact := true
	n, err := s.client.Count(ctx, &qd.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("count points in %s: %w", s.collection, err)
	}
	return int(n), nil
}

// Clear drops the collection. It is recreated on the next Add.
func (s *Store) Clear(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("delete collection %s: %w", s.collection, err)
	}
	return nil
}

// Type identifies this backend.
func (s *Store) Type() string { return "qdrant" }

// Health checks server availability.
func (s *Store) Health(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     s.dims,
			Distance: qd.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

func buildPayload(doc retrieval.Document) map[string]*qd.Value {
	payload := make(map[string]*qd.Value, len(doc.Metadata)+3)
	payload["content"] = qd.NewValueString(doc.Content)
	if !doc.Created.IsZero() {
		payload["created"] = qd.NewValueString(doc.Created.Format(time.RFC3339))
	}
	if !doc.Updated.IsZero() {
		payload["updated"] = qd.NewValueString(doc.Updated.Format(time.RFC3339))
	}

	for key, value := range doc.Metadata {
		switch v := value.(type) {
		case string:
			payload[key] = qd.NewValueString(v)
		case int:
			payload[key] = qd.NewValueInt(int64(v))
		case int64:
			payload[key] = qd.NewValueInt(v)
		case float64:
			payload[key] = qd.NewValueDouble(v)
		case bool:
			payload[key] = qd.NewValueBool(v)
		default:
			payload[key] = qd.NewValueString(fmt.Sprintf("%v", v))
		}
	}
	return payload
}

func buildFilter(filter map[string]any) *qd.Filter {
	conditions := make([]*qd.Condition, 0, len(filter))
	for key, value := range filter {
		conditions = append(conditions, qd.NewMatch(key, fmt.Sprintf("%v", value)))
	}
	return &qd.Filter{Must: conditions}
}

func pointToDocument(point *qd.ScoredPoint) retrieval.Document {
	doc := retrieval.Document{
		Score:    float64(point.Score),
		Metadata: make(map[string]any),
	}
	if point.Id != nil {
		doc.ID = point.Id.GetUuid()
	}

	for key, value := range point.Payload {
		switch key {
		case "content":
			doc.Content = value.GetStringValue()
		case "created":
			if t, err := time.Parse(time.RFC3339, value.GetStringValue()); err == nil {
				doc.Created = t
			}
		case "updated":
			if t, err := time.Parse(time.RFC3339, value.GetStringValue()); err == nil {
				doc.Updated = t
			}
		default:
			switch kind := value.GetKind().(type) {
			case *qd.Value_StringValue:
				doc.Metadata[key] = kind.StringValue
			case *qd.Value_IntegerValue:
				doc.Metadata[key] = kind.IntegerValue
			case *qd.Value_DoubleValue:
				doc.Metadata[key] = kind.DoubleValue
			case *qd.Value_BoolValue:
				doc.Metadata[key] = kind.BoolValue
			}
		}
	}
	return doc
}
