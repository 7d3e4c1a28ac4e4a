package embedding

import "context"

// Embedder turns text into vectors. Every vector produced by one Embedder has
// the same length.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	ModelName() string
}
