package memory

import (
	"errors"
	"sort"
	"sync"

	"scheme-saathi/internal/vectorstore"
)

// Store is an in-memory vector index using brute-force cosine
// similarity. At ~3,700 schemes a linear scan is well under a
// millisecond, so nothing fancier is warranted.
type Store struct {
	mu      sync.RWMutex
	ids     []string
	vectors [][]float32
}

func NewStore() *Store { return &Store{} }

// Rebuild atomically replaces the index contents. Vectors are expected
// to be L2-normalized so the dot product equals cosine similarity.
func (s *Store) Rebuild(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return errors.New("ids and vectors length mismatch")
	}
	if len(vectors) > 1 {
		dim := len(vectors[0])
		for _, v := range vectors[1:] {
			if len(v) != dim {
				return errors.New("vector dimension mismatch")
			}
		}
	}
	nextIDs := make([]string, len(ids))
	copy(nextIDs, ids)
	nextVectors := make([][]float32, len(vectors))
	copy(nextVectors, vectors)

	s.mu.Lock()
	s.ids = nextIDs
	s.vectors = nextVectors
	s.mu.Unlock()
	return nil
}

func (s *Store) Search(vector []float32, topK int) ([]vectorstore.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}
	hits := make([]vectorstore.Hit, 0, len(s.ids))
	for i := range s.vectors {
		hits = append(hits, vectorstore.Hit{
			SchemeID: s.ids[i],
			Score:    dot(s.vectors[i], vector),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
