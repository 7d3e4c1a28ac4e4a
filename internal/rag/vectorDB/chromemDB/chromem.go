package chromemDB

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/philippgille/chromem-go"
)

// Store keeps every session index as a collection of one in-process chromem DB.
type Store struct {
	db     *chromem.DB
	logger *logger_i.Logger
}

func NewStore() *Store {
	return &Store{
		db:     chromem.NewDB(),
		logger: logger_i.NewLogger("chromem"),
	}
}

func (s *Store) CreateIndex(ctx context.Context, name string) (vectorDB.Index, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}
	// embeddings are always computed by our own embedder, the collection never embeds
	c, err := s.db.CreateCollection(name, map[string]string{"hnsw:space": "cosine"}, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create chromem collection %s: %w", name, err)
	}
	s.logger.FromContext(ctx).Debug("Created collection", "collection", name)
	return &collection{store: s, coll: c, name: name}, nil
}

// Collections is the number of live indexes.
func (s *Store) Collections() int {
	return len(s.db.ListCollections())
}

func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("chromem collection was asked to embed, vectors must be supplied")
}

type collection struct {
	store *Store
	coll  *chromem.Collection
	name  string
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ChunkId,
			Content:   chunk.Chunk,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"page_num":      strconv.Itoa(chunk.PageNum),
				"chunk_order":   strconv.Itoa(chunk.ChunkPageOrder),
				"doc_name":      chunk.Doc.Name,
				"source_doc_id": chunk.Doc.Id,
				"ingested_at":   strconv.FormatInt(chunk.Doc.LastIngestTimestamp.Unix(), 10),
			},
		}
	}
	if err := c.coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem upsert failed: %w", err)
	}
	return nil
}

func (c *collection) Search(ctx context.Context, vector []float32, topK int) ([]commonModels.ScoredChunk, error) {
	n := min(topK, c.coll.Count())
	if n <= 0 {
		return nil, nil
	}
	results, err := c.coll.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	hits := make([]commonModels.ScoredChunk, 0, len(results))
	for _, r := range results {
		hits = append(hits, toScoredChunk(r))
	}
	return hits, nil
}

func (c *collection) Count() int {
	return c.coll.Count()
}

func (c *collection) Drop(ctx context.Context) error {
	if err := c.store.db.DeleteCollection(c.name); err != nil {
		return fmt.Errorf("drop chromem collection %s: %w", c.name, err)
	}
	c.store.logger.FromContext(ctx).Debug("Dropped collection", "collection", c.name)
	return nil
}

func toScoredChunk(r chromem.Result) commonModels.ScoredChunk {
	pageNum, _ := strconv.Atoi(r.Metadata["page_num"])
	order, _ := strconv.Atoi(r.Metadata["chunk_order"])
	ingestedAt, _ := strconv.ParseInt(r.Metadata["ingested_at"], 10, 64)
	return commonModels.ScoredChunk{
		DocChunk: commonModels.DocChunk{
			Doc: commonModels.Document{
				Id:                  r.Metadata["source_doc_id"],
				Name:                r.Metadata["doc_name"],
				LastIngestTimestamp: time.Unix(ingestedAt, 0),
				ContentType:         commonModels.PDF,
			},
			ChunkId:        r.ID,
			Chunk:          r.Content,
			PageNum:        pageNum,
			ChunkPageOrder: order,
		},
		Similarity: r.Similarity,
	}
}
