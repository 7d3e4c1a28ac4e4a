package groq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/ChatPDF/internal/customHttpClient"
	"github.com/akolanti/ChatPDF/internal/rag/llm"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Groq serves an OpenAI compatible chat completions API, so the official
// openai client is pointed at its base url.
type llmClient struct {
	client      openai.Client
	modelName   string
	temperature float64
	logger      *logger_i.Logger
}

type Options struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	Temperature float32
	Timeout     time.Duration
}

func NewGroqClient(opts Options) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_groq")
	if opts.APIKey == "" {
		logger.Error("GROQ_API_KEY is not set")
		return nil, errors.New("groq: missing api key")
	}

	c := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithHTTPClient(customHttpClient.NewClient(opts.Timeout)),
		option.WithMaxRetries(0),
	)
	logger.Info("Groq client created", "model", opts.ModelName, "baseURL", opts.BaseURL)
	return &llmClient{
		client:      c,
		modelName:   opts.ModelName,
		temperature: float64(opts.Temperature),
		logger:      logger,
	}, nil
}

func (c *llmClient) ModelName() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := c.logger.FromContext(ctx)

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		log.Error("Groq completion failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices for model %s", c.modelName)
	}
	return completion.Choices[0].Message.Content, nil
}
