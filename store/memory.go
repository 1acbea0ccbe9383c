package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"audiobook/types"
)

// MemoryStore is a brute-force in-memory vector store. It backs tests and
// the "memory" store type for running without Postgres.
type MemoryStore struct {
	mu          sync.RWMutex
	dimension   int
	collections map[string]map[string]types.Unit
	active      string
}

func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension:   dimension,
		collections: make(map[string]map[string]types.Unit),
	}
}

func (s *MemoryStore) Init(ctx context.Context) error { return nil }

func (s *MemoryStore) ClearCollection(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, documentID)
	return nil
}

func (s *MemoryStore) UpsertUnits(ctx context.Context, documentID string, units []types.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection := s.collections[documentID]
	if collection == nil {
		collection = make(map[string]types.Unit, len(units))
		s.collections[documentID] = collection
	}
	for _, u := range units {
		if len(u.Embedding) != s.dimension {
			return fmt.Errorf("unit %s: embedding dimension %d, store expects %d",
				u.ID, len(u.Embedding), s.dimension)
		}
		collection[u.ID] = u
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, documentID string, vector []float32, topK int) ([]types.Unit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", types.ErrInvalidConfig, topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	collection := s.collections[documentID]
	if len(collection) == 0 {
		return nil, nil
	}

	scored := make([]types.Unit, 0, len(collection))
	for _, u := range collection {
		u.Score = cosine(u.Embedding, vector)
		scored = append(scored, u)
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	out := make([]types.Unit, topK)
	copy(out, scored[:topK])
	for i := range out {
		out[i].Embedding = nil
	}
	return out, nil
}

func (s *MemoryStore) Activate(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = documentID
	return nil
}

func (s *MemoryStore) ActiveCollection(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, nil
}

func (s *MemoryStore) Close() error { return nil }

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
