package ingest

import (
	"fmt"
	"strings"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/tmc/langchaingo/textsplitter"
)

var separators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts page text into overlapping chunks. Output only depends on the
// input text, chunk ids aside.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	inner        textsplitter.RecursiveCharacter
}

func NewSplitter(chunkSize int, chunkOverlap int) *Splitter {
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(separators),
		),
	}
}

func (s *Splitter) SplitText(text string) ([]string, error) {
	parts, err := s.inner.SplitText(text)
	if err != nil {
		return nil, err
	}
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// SplitPages chunks every page in order. Chunks keep the page they came from.
func (s *Splitter) SplitPages(pages []commonModels.Page, doc commonModels.Document) ([]commonModels.DocChunk, error) {
	var allChunks []commonModels.DocChunk
	for _, page := range pages {
		texts, err := s.SplitText(page.Content)
		if err != nil {
			return nil, fmt.Errorf("split page %d: %w", page.Number, err)
		}
		for i, text := range texts {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:            doc,
				ChunkId:        utils.GetNewUUID(),
				Chunk:          text,
				PageNum:        page.Number,
				ChunkPageOrder: i,
			})
		}
	}
	return allChunks, nil
}
