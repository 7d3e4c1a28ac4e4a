package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var logger = logger_i.NewLogger("Session Registry")

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	embedder      func() embedding.Embedder
	chunkSize     int
	chunkOverlap  int
	idleTimeout   time.Duration
	sweepInterval time.Duration
}

// NewRegistry returns an empty registry. newEmbedder is called once per
// session, on first use of its embedder slot.
func NewRegistry(newEmbedder func() embedding.Embedder, ingestSettings config.IngestSettings, sessionSettings config.SessionSettings) *Registry {
	return &Registry{
		sessions:      make(map[string]*Session),
		embedder:      newEmbedder,
		chunkSize:     ingestSettings.ChunkSize,
		chunkOverlap:  ingestSettings.ChunkOverlap,
		idleTimeout:   sessionSettings.IdleTimeout,
		sweepInterval: sessionSettings.SweepInterval,
	}
}

// GetOrCreate returns the session with the given id, creating it when unknown.
// An empty id gets a fresh random one. The bool reports a new session.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	if id == "" {
		id = utils.GetNewUUID()
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{
			Id:             id,
			newEmbedder:    r.embedder,
			splitterConfig: [2]int{r.chunkSize, r.chunkOverlap},
		}
		r.sessions[id] = s
		metrics.SetActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()

	s.touch()
	return s, !ok
}

// Get never creates.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch()
	}
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep forgets sessions idle since before now-idleTimeout and drops their indexes.
// Sessions busy with an interaction are skipped.
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	if r.idleTimeout <= 0 {
		return 0
	}
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) < r.idleTimeout {
			continue
		}
		if !s.work.TryLock() {
			continue
		}
		delete(r.sessions, id)
		expired = append(expired, s)
	}
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	for _, s := range expired {
		if err := s.reset(ctx); err != nil {
			logger.Error("Failed to drop index of expired session", "sessionId", s.Id, "error", err)
		}
		s.work.Unlock()
	}
	if len(expired) > 0 {
		logger.Info("Expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on every interval tick until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.sweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(ctx, now)
		}
	}
}

// Close drops every session and its index.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	metrics.SetActiveSessions(0)
	r.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := s.reset(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
