package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/customHttpClient"
	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) error {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.NewClient(0),
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return err
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return nil
}

// GetGoogleEmbeddingClient returns nil when the client could not be created.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		if apikey == "" {
			logger.Error("GOOGLE_API_KEY is not set")
			return
		}
		_ = newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.FromContext(ctx)
	res, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	return res[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.FromContext(ctx)
	if len(chunks) == 0 {
		return nil, nil
	}
	res, err := c.doCall(ctx, getContent(chunks), taskDocument)
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err, "chunks", len(chunks))
		return nil, err
	}
	if len(res) != len(chunks) {
		return nil, fmt.Errorf("google embedding returned %d vectors for %d chunks", len(res), len(chunks))
	}
	return res, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) ([][]float32, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             task,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, errors.New("google embedding returned no vectors")
	}
	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
