package chromemDB

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
)

func testChunks() ([]commonModels.DocChunk, [][]float32) {
	doc := commonModels.Document{Id: "doc-1", Name: "atlas.pdf", LastIngestTimestamp: time.Unix(1700000000, 0)}
	chunks := []commonModels.DocChunk{
		{Doc: doc, ChunkId: "c1", Chunk: "about paris", PageNum: 1, ChunkPageOrder: 0},
		{Doc: doc, ChunkId: "c2", Chunk: "about rome", PageNum: 2, ChunkPageOrder: 0},
		{Doc: doc, ChunkId: "c3", Chunk: "about berlin", PageNum: 2, ChunkPageOrder: 1},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return chunks, vectors
}

func TestCollection_SearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	idx, err := store.CreateIndex(ctx, "session-a-1")
	if err != nil {
		t.Fatalf("CreateIndex failed: %v", err)
	}
	chunks, vectors := testChunks()
	if err := idx.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}
	if idx.Count() != 3 {
		t.Fatalf("Count got %d, want 3", idx.Count())
	}

	hits, err := idx.Search(ctx, []float32{0.1, 0.9, 0.2}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ChunkId != "c2" {
		t.Errorf("best hit got %s, want c2", hits[0].ChunkId)
	}
	if hits[0].PageNum != 2 || hits[0].Doc.Name != "atlas.pdf" {
		t.Errorf("metadata lost: %+v", hits[0])
	}
	if hits[0].Similarity < hits[1].Similarity {
		t.Errorf("hits not ordered: %v then %v", hits[0].Similarity, hits[1].Similarity)
	}
}

func TestCollection_TopKIsClampedToCount(t *testing.T) {
	ctx := context.Background()
	idx, _ := NewStore().CreateIndex(ctx, "small")
	chunks, vectors := testChunks()
	_ = idx.UpsertBatch(ctx, chunks[:1], vectors[:1])

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}

func TestCollection_EmptyIndexReturnsNothing(t *testing.T) {
	idx, _ := NewStore().CreateIndex(context.Background(), "empty")
	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 4)
	if err != nil || len(hits) != 0 {
		t.Errorf("got %v, %v", hits, err)
	}
}

func TestCollection_UpsertMismatch(t *testing.T) {
	idx, _ := NewStore().CreateIndex(context.Background(), "mismatch")
	chunks, vectors := testChunks()
	if err := idx.UpsertBatch(context.Background(), chunks, vectors[:2]); err == nil {
		t.Error("expected an error for mismatched lengths")
	}
}

func TestStore_DropRemovesCollection(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	first, _ := store.CreateIndex(ctx, "first")
	_, _ = store.CreateIndex(ctx, "second")
	if store.Collections() != 2 {
		t.Fatalf("Collections got %d, want 2", store.Collections())
	}
	if err := first.Drop(ctx); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if store.Collections() != 1 {
		t.Errorf("Collections got %d after drop, want 1", store.Collections())
	}
}
