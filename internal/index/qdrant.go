package index

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore keeps chunk vectors in a qdrant collection over gRPC.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore connects to the gRPC endpoint in rawURL, e.g.
// "http://localhost:6334". A missing port defaults to 6334.
func NewQdrantStore(rawURL string) (*QdrantStore, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid qdrant port %q: %w", p, err)
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &QdrantStore{client: client}, nil
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, size int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(size),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	qpoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qpoints = append(qpoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		})
	}
	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         qpoints,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]ScoredPoint, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	limit := uint64(k)
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	out := make([]ScoredPoint, 0, len(res))
	for _, r := range res {
		sp := ScoredPoint{Score: r.Score, Payload: payloadMap(r.Payload)}
		if r.Id != nil {
			sp.ID = r.Id.GetUuid()
		}
		out = append(out, sp)
	}
	return out, nil
}

// DeleteProgram removes every point whose payload program equals program.
func (s *QdrantStore) DeleteProgram(ctx context.Context, collection, program string) error {
	wait := true
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           &wait,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(FieldProgram, program)},
		}),
	})
	if err != nil {
		return fmt.Errorf("delete points for %s: %w", program, err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func payloadMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		out[k] = valueOf(v)
	}
	return out
}

func valueOf(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = valueOf(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return payloadMap(val.StructValue.Fields)
	default:
		return nil
	}
}
