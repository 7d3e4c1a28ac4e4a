package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQuadrantClient returns nil when qdrant is unreachable.
func GetQuadrantClient(ctx context.Context, settings config.VectorStoreSettings) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, settings)
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient(ctx context.Context, settings config.VectorStoreSettings) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.QdrantHost,
		Port:     settings.QdrantPort,
		APIKey:   settings.QdrantAPIKey,
		UseTLS:   settings.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if _, err := client.HealthCheck(pingCtx); err != nil {
		logger.Error("Qdrant is offline", "host", settings.QdrantHost, "port", settings.QdrantPort, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("Qdrant client created", "host", settings.QdrantHost, "port", settings.QdrantPort)
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// CreateIndex reserves a collection name. The collection itself is created on
// the first upsert because its vector size is only known then.
func (db *ClientHolder) CreateIndex(ctx context.Context, name string) (vectorDB.Index, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}
	return &collection{client: db.QObj, name: config.QdrantCollectionPrefix + "-" + name}, nil
}

type collection struct {
	client  *qdrant.Client
	name    string
	mu      sync.Mutex
	created bool
	count   atomic.Int64
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
	if err := c.ensureCollection(ctx, uint64(len(vectors[0]))); err != nil {
		return err
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			// Converts my UUID string to Qdrant's ID format
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Chunk,
				"page_num":      chunk.PageNum,
				"source_doc_id": chunk.Doc.Id,
				"doc_name":      chunk.Doc.Name,
				"chunk_order":   chunk.ChunkPageOrder,
				"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}

	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.name,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	c.count.Add(int64(len(qdrantPoints)))
	return nil
}

func (c *collection) ensureCollection(ctx context.Context, dimension uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.created {
		return nil
	}
	err := c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create qdrant collection %s: %w", c.name, err)
	}
	c.created = true
	return nil
}

func (c *collection) Search(ctx context.Context, vector []float32, topK int) ([]commonModels.ScoredChunk, error) {
	loggr := logger.FromContext(ctx)
	if c.Count() == 0 || topK <= 0 {
		return nil, nil
	}
	result, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, commonModels.ScoredChunk{
			DocChunk: commonModels.DocChunk{
				Doc: commonModels.Document{
					Id:                  hit.Payload["source_doc_id"].GetStringValue(),
					Name:                hit.Payload["doc_name"].GetStringValue(),
					LastIngestTimestamp: time.Unix(hit.Payload["ingested_at"].GetIntegerValue(), 0),
					ContentType:         commonModels.PDF,
				},
				ChunkId:        hit.GetId().GetUuid(),
				Chunk:          hit.Payload["content"].GetStringValue(),
				PageNum:        int(hit.Payload["page_num"].GetIntegerValue()),
				ChunkPageOrder: int(hit.Payload["chunk_order"].GetIntegerValue()),
			},
			Similarity: hit.GetScore(),
		})
	}
	loggr.Debug("Found matches", "count", len(hits))
	return hits, nil
}

func (c *collection) Count() int {
	return int(c.count.Load())
}

func (c *collection) Drop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.created {
		return nil
	}
	err := c.client.DeleteCollection(ctx, c.name)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("drop qdrant collection %s: %w", c.name, err)
	}
	c.created = false
	c.count.Store(0)
	return nil
}
