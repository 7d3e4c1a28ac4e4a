package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans *Answer) jobModel.Job {
	job.JobPayload.Answer = ans.Text
	job.JobPayload.ResponseTimeSeconds = ans.ResponseTimeSeconds
	job.JobPayload.ModelOption = ans.ModelOption
	job.JobPayload.AnsweredBy = ans.AnsweredBy
	job.JobPayload.Sources = ans.Sources
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

// ErrorCode maps a pipeline error to the code reported on the job.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, ErrNoIndex):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrUnreadableDocument), errors.Is(err, ingest.ErrNoText), errors.Is(err, prompt.ErrUnknownModel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, commonModels.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// jobError keeps the error text as is, that message is what the user sees.
func (s *service) jobError(job jobModel.Job, err error, log *logger_i.Logger) jobModel.Job {
	log.Error("Job failed", "step", job.CurrentStep, "error", err)

	job.Error = jobModel.JobError{
		Code:    ErrorCode(err),
		Message: err.Error(),
		Retry:   false,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, sess *session.Session, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vector, err := sess.Embedder().GetEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %w", commonModels.ErrUpstream, err)
	}
	return vector, nil
}

func (s *service) executeVectorSearchStep(ctx context.Context, index vectorDB.Index, vector []float32) ([]commonModels.ScoredChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := index.Search(ctx, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", commonModels.ErrStorage, index.Name(), err)
	}
	return matches, nil
}

func (s *service) executeLLMStep(ctx context.Context, filledPrompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	text, err := s.llmProvider.Generate(ctx, filledPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", commonModels.ErrUpstream, err)
	}
	return text, nil
}

// buildPrompt joins the retrieved chunks with a blank line and fills the
// template of the selected option.
func buildPrompt(modelOption string, matches []commonModels.ScoredChunk, question string) (string, error) {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Chunk
	}
	return prompt.Fill(modelOption, strings.Join(texts, "\n\n"), question)
}

func pageSources(matches []commonModels.ScoredChunk) []string {
	seen := make(map[int]bool, len(matches))
	var sources []string
	for _, m := range matches {
		if seen[m.PageNum] {
			continue
		}
		seen[m.PageNum] = true
		sources = append(sources, fmt.Sprintf("page %d", m.PageNum))
	}
	return sources
}
