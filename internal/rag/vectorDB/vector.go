package vectorDB

import (
	"context"

	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
)

// Index is the nearest neighbour store of one ingested document. An index is
// filled once and never updated in place; a new upload builds a new Index.
type Index interface {
	Name() string
	UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	// Search returns at most topK chunks ordered by descending similarity.
	Search(ctx context.Context, vector []float32, topK int) ([]commonModels.ScoredChunk, error)
	Count() int
	// Drop releases the index and everything stored in it.
	Drop(ctx context.Context) error
}

// Builder creates empty indexes. Names are unique per build.
type Builder interface {
	CreateIndex(ctx context.Context, name string) (Index, error)
}
