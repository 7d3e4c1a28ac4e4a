package huggingFaceEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/tmc/langchaingo/embeddings/huggingface"
	hfllm "github.com/tmc/langchaingo/llms/huggingface"
)

// client embeds through the Hugging Face inference API with a sentence-transformers model.
type client struct {
	embedder *huggingface.Huggingface
	model    string
	logger   *logger_i.Logger
}

func NewHuggingFaceEmbedder(modelName string, token string, batchSize int) (embedding.Embedder, error) {
	logger := logger_i.NewLogger("huggingface_embedding")

	llm, err := hfllm.New(hfllm.WithToken(token), hfllm.WithModel(modelName))
	if err != nil {
		logger.Error("Error creating Hugging Face client", "error", err)
		return nil, fmt.Errorf("huggingface client: %w", err)
	}

	e, err := huggingface.NewHuggingface(
		huggingface.WithClient(*llm),
		huggingface.WithModel(modelName),
		huggingface.WithBatchSize(batchSize),
		huggingface.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("huggingface embedder: %w", err)
	}
	logger.Info("Hugging Face embedding client created", "model", modelName)
	return &client{embedder: e, model: modelName, logger: logger}, nil
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	v, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		c.logger.FromContext(ctx).Error("Error embedding query", "error", err)
		return nil, err
	}
	return v, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	vectors, err := c.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		c.logger.FromContext(ctx).Error("Error embedding chunks", "error", err, "chunks", len(chunks))
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("huggingface returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return vectors, nil
}
