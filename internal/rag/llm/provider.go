package llm

import "context"

// Provider sends one fully rendered prompt and returns the completion text.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}
