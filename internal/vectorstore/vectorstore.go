package vectorstore

// Hit is a nearest-neighbor match: a scheme ID with its cosine
// similarity to the query vector.
type Hit struct {
	SchemeID string
	Score    float64
}

// Store is a read-mostly vector index over the scheme corpus. Rebuild
// atomically replaces the whole index, so a corpus refresh can run
// while requests are being served.
type Store interface {
	Rebuild(ids []string, vectors [][]float32) error
	Search(vector []float32, topK int) ([]Hit, error)
	Len() int
}
