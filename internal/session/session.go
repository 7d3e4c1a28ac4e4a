// Package session keeps the per user context between requests: the chosen
// model option and everything produced by the last successful upload.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB"
)

// Session slots are filled lazily. Callers serialise interactions with
// Lock/Unlock, slot access itself is safe from any goroutine.
type Session struct {
	Id string

	work sync.Mutex

	mu             sync.RWMutex
	lastSeen       time.Time
	newEmbedder    func() embedding.Embedder
	splitterConfig [2]int

	embedder embedding.Embedder
	splitter *ingest.Splitter
	model    string
	loader   ingest.Loader
	pages    []commonModels.Page
	chunks   []commonModels.DocChunk
	index    vectorDB.Index
}

// Summary is a read only view for status endpoints.
type Summary struct {
	Id       string    `json:"session_id"`
	Model    string    `json:"model"`
	Document string    `json:"document,omitempty"`
	Pages    int       `json:"pages"`
	Chunks   int       `json:"chunks"`
	Ready    bool      `json:"ready"`
	LastSeen time.Time `json:"last_seen"`
}

func (s *Session) Lock()   { s.work.Lock() }
func (s *Session) Unlock() { s.work.Unlock() }

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) Embedder() embedding.Embedder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embedder == nil && s.newEmbedder != nil {
		s.embedder = s.newEmbedder()
	}
	return s.embedder
}

func (s *Session) Splitter() *ingest.Splitter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.splitter == nil {
		s.splitter = ingest.NewSplitter(s.splitterConfig[0], s.splitterConfig[1])
	}
	return s.splitter
}

func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == "" {
		s.model = prompt.Default()
	}
	return s.model
}

// SetModel changes the template used for the next question.
func (s *Session) SetModel(id string) error {
	if _, err := prompt.Lookup(id); err != nil {
		return err
	}
	s.mu.Lock()
	s.model = id
	s.mu.Unlock()
	return nil
}

func (s *Session) Loader() ingest.Loader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loader
}

func (s *Session) Pages() []commonModels.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

func (s *Session) Chunks() []commonModels.DocChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks
}

func (s *Session) Index() vectorDB.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// ReplaceIndex installs the output of one ingestion and drops the index it replaces.
func (s *Session) ReplaceIndex(ctx context.Context, loader ingest.Loader, pages []commonModels.Page, chunks []commonModels.DocChunk, index vectorDB.Index) error {
	s.mu.Lock()
	old := s.index
	s.loader = loader
	s.pages = pages
	s.chunks = chunks
	s.index = index
	s.mu.Unlock()

	if old == nil || old == index {
		return nil
	}
	return old.Drop(ctx)
}

// reset empties the document slots, the model choice survives.
func (s *Session) reset(ctx context.Context) error {
	s.mu.Lock()
	old := s.index
	s.loader = nil
	s.pages = nil
	s.chunks = nil
	s.index = nil
	s.mu.Unlock()
	if old == nil {
		return nil
	}
	return old.Drop(ctx)
}

func (s *Session) Summary() Summary {
	model := s.Model()
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := Summary{
		Id:       s.Id,
		Model:    model,
		Pages:    len(s.pages),
		Chunks:   len(s.chunks),
		Ready:    s.index != nil,
		LastSeen: s.lastSeen,
	}
	if s.loader != nil {
		sum.Document = s.loader.Source()
	}
	return sum
}
