package embedding

import "context"

// Embedder converts free text into a vector representation. Prepare
// runs once over the corpus at index-build time; local implementations
// (TF-IDF) derive their vocabulary from it, remote ones treat it as a
// no-op.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}
