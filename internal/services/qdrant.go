package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// VectorIndex is the content-addressed embedding store: one entry per
// document id, holding the vector and free-form metadata tags. Upsert by id
// is a full replace; there are no merge semantics. Nearest-neighbor search is
// the natural extension point but is not part of the current surface.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, docID string, vector []float32, metadata map[string]string) error
	Fetch(ctx context.Context, docID string) (*IndexEntry, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type IndexEntry struct {
	DocID    string
	Vector   []float32
	Metadata map[string]string
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(urlStr, apiKey, collectionName string) (VectorIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     EmbeddingDimensions,
	}, nil
}

// EnsureCollection implements VectorIndex. Creates the backing collection
// only if absent. A concurrent creator winning the race surfaces as an
// "already exists" response, which counts as success.
func (q *qdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("%w: failed to check collection: %v", ErrIndexUnavailable, err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to create collection: %v", ErrIndexUnavailable, err)
	}

	return nil
}

// isAlreadyExists reports whether a create-collection failure was a concurrent
// creator winning the race.
func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// Upsert implements VectorIndex. The point id is derived from the document id
// (UUIDv5), so a later upsert with the same id replaces the stored vector and
// metadata instead of accumulating points.
func (q *qdrantIndex) Upsert(ctx context.Context, docID string, vector []float32, metadata map[string]string) error {
	if uint64(len(vector)) != q.vectorSize {
		return fmt.Errorf("%w: got %d values, index dimension is %d",
			ErrDimensionMismatch, len(vector), q.vectorSize)
	}

	payload := map[string]interface{}{"doc_id": docID}
	for key, value := range metadata {
		payload[key] = value
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(docID).String()),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(payload),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upsert point: %v", ErrIndexUnavailable, err)
	}

	return nil
}

// Fetch implements VectorIndex. An absent id is data absence (ErrNotIndexed),
// not an index failure.
func (q *qdrantIndex) Fetch(ctx context.Context, docID string) (*IndexEntry, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(pointID(docID).String())},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch point: %v", ErrIndexUnavailable, err)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, docID)
	}

	return retrievedToEntry(points[0]), nil
}

// listPageSize is the scroll page size for ListIDs.
const listPageSize = 256

// scrollFunc fetches one scroll page starting at offset (nil for the first).
type scrollFunc func(ctx context.Context, offset *qdrant.PointId, limit uint32) ([]*qdrant.RetrievedPoint, error)

// ListIDs implements VectorIndex. Diagnostics only, not on the hot path.
// The scroll is paginated so the listing stays complete past one page.
func (q *qdrantIndex) ListIDs(ctx context.Context) ([]string, error) {
	return collectDocIDs(ctx, listPageSize, func(ctx context.Context, offset *qdrant.PointId, limit uint32) ([]*qdrant.RetrievedPoint, error) {
		points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collectionName,
			Limit:          qdrant.PtrOf(limit),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scroll points: %v", ErrIndexUnavailable, err)
		}
		return points, nil
	})
}

// collectDocIDs walks scroll pages until one comes back short, resuming each
// request from the last point id of the previous page. The resume point may
// reappear at a page boundary, so point ids are deduplicated.
func collectDocIDs(ctx context.Context, pageSize uint32, scroll scrollFunc) ([]string, error) {
	var (
		ids    []string
		seen   = make(map[string]struct{})
		offset *qdrant.PointId
	)

	for {
		points, err := scroll(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			break
		}

		for _, point := range points {
			key := point.GetId().String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if val, ok := point.GetPayload()["doc_id"]; ok {
				if id := val.GetStringValue(); id != "" {
					ids = append(ids, id)
				}
			}
		}

		if uint32(len(points)) < pageSize {
			break
		}
		offset = points[len(points)-1].GetId()
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func retrievedToEntry(point *qdrant.RetrievedPoint) *IndexEntry {
	entry := &IndexEntry{Metadata: make(map[string]string)}

	if vectors := point.GetVectors(); vectors != nil {
		if vec := vectors.GetVector(); vec != nil {
			entry.Vector = vec.GetData()
		}
	}

	for key, value := range point.GetPayload() {
		if s := value.GetStringValue(); s != "" {
			if key == "doc_id" {
				entry.DocID = s
				continue
			}
			entry.Metadata[key] = s
		}
	}

	return entry
}

// pointID maps a document id to a stable Qdrant point id.
func pointID(docID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID))
}
