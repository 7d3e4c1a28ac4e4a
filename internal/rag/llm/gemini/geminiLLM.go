package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/ChatPDF/internal/customHttpClient"
	"github.com/akolanti/ChatPDF/internal/rag/llm"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, apikey string, modelName string, temperature float32) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		if apikey == "" {
			logger.Error("GOOGLE_API_KEY is not set")
			return
		}
		newGeminiClient(ctx, apikey, modelName, temperature)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName, temperature: geminiClient.temperature}
}

func newGeminiClient(ctx context.Context, apikey string, modelName string, temperature float32) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.NewClient(0),
	})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName, temperature: temperature}
	logger.Info("Gemini client created", "model", modelName)
}

func (c *llmClient) ModelName() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	temperature := c.temperature
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: &temperature},
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty answer")
	}
	return text, nil
}
