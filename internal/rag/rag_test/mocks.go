package rag_test

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const bagDimensions = 64

// BagOfWordsEmbedder hashes lower cased words into a fixed number of buckets.
// Texts sharing words end up close, which is all retrieval tests need.
type BagOfWordsEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *BagOfWordsEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return bagOfWords(query), nil
}

func (m *BagOfWordsEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = bagOfWords(c)
	}
	return out, nil
}

func (m *BagOfWordsEmbedder) ModelName() string { return "bag-of-words" }

func bagOfWords(text string) []float32 {
	vec := make([]float32, bagDimensions)
	// never a zero vector, cosine similarity needs a norm
	vec[0] = 0.01
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[1+int(h.Sum32()%(bagDimensions-1))]++
	}
	return vec
}

// MockLLM implements llm.Provider and keeps every prompt it was sent.
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
	Prompts    []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) ModelName() string { return "mock-llm" }

// LastContext returns the text between the two context markers of the last prompt.
func (m *MockLLM) LastContext() string {
	if len(m.Prompts) == 0 {
		return ""
	}
	p := m.Prompts[len(m.Prompts)-1]
	start := strings.Index(p, "<context>\n")
	end := strings.LastIndex(p, "\n<context>")
	if start < 0 || end < start {
		return ""
	}
	return p[start+len("<context>\n") : end]
}
