package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/llm"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract.
  - The worker runs jobs through ProcessRequest and IngestDocument,
    the MCP tools call Answer directly.

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the "state" (session registry, ingestion pipeline and the
    LLM client) so callers never reach them directly.

3. Dependency Injection (NewService):
  - Everything comes in through the constructor so tests can hand in an
    in-memory index and a scripted LLM.

Callers of Ingest and Answer must hold the session lock. The job wrappers
take it themselves.
*/

var (
	ErrNoIndex        = errors.New("no document has been loaded for this session")
	ErrEmptyQuestion  = errors.New("question is empty")
	ErrUnknownSession = errors.New("unknown session")
)

type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Ingest(ctx context.Context, sess *session.Session, upload ingest.Upload) (*jobModel.IngestReport, error)
	Answer(ctx context.Context, sess *session.Session, question string) (*Answer, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Text                string   `json:"answer"`
	ResponseTimeSeconds float64  `json:"response_time_seconds"`
	ModelOption         string   `json:"model_option"`
	AnsweredBy          string   `json:"answered_by"`
	Sources             []string `json:"sources"`
}

type service struct {
	sessions    *session.Registry
	pipeline    *ingest.Pipeline
	llmProvider llm.Provider
	topK        int
	logger      *logger_i.Logger
}

func NewService(sessions *session.Registry, pipeline *ingest.Pipeline, llmProvider llm.Provider, topK int) Service {
	if topK <= 0 {
		topK = config.RetrievalTopK
	}
	return &service{
		sessions:    sessions,
		pipeline:    pipeline,
		llmProvider: llmProvider,
		topK:        topK,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Ingest(ctx context.Context, sess *session.Session, upload ingest.Upload) (*jobModel.IngestReport, error) {
	return s.ingest(ctx, sess, upload, func(jobModel.InternalStatus) {})
}

func (s *service) ingest(ctx context.Context, sess *session.Session, upload ingest.Upload, track func(jobModel.InternalStatus)) (*jobModel.IngestReport, error) {
	loggr := s.logger.FromContext(ctx)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	res, err := s.pipeline.Run(ctx, ingest.Input{
		Upload:    upload,
		Splitter:  sess.Splitter(),
		Embedder:  sess.Embedder(),
		IndexName: sess.Id + "-" + utils.GetNewUUID(),
		Track:     track,
	})
	if err != nil {
		return nil, err
	}

	if err := sess.ReplaceIndex(ctx, res.Loader, res.Pages, res.Chunks, res.Index); err != nil {
		// the new index is live, a leaked old one is only logged
		loggr.Error("Failed to drop previous index", "error", err)
	}
	metrics.CaptureIngestMetrics(res.Report.PagesLoaded, res.Report.PagesIndexed, res.Report.Chunks, res.Report.Truncated)
	loggr.Info("Document ingested", "file", res.Report.FileName, "pages", res.Report.PagesIndexed, "chunks", res.Report.Chunks)
	return &res.Report, nil
}

func (s *service) Answer(ctx context.Context, sess *session.Session, question string) (*Answer, error) {
	return s.answer(ctx, sess, question, sess.Model(), func(jobModel.InternalStatus) {})
}

// answer uses modelOption as chosen when the question was asked, the session
// may have moved on since.
func (s *service) answer(ctx context.Context, sess *session.Session, question string, modelOption string, track func(jobModel.InternalStatus)) (*Answer, error) {
	start := time.Now()
	loggr := s.logger.FromContext(ctx)

	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	index := sess.Index()
	if index == nil {
		return nil, ErrNoIndex
	}

	track(jobModel.EmbeddingAPICall)
	vector, err := s.executeEmbeddingStep(ctx, sess, question)
	if err != nil {
		return nil, err
	}

	track(jobModel.VectorDBCall)
	matches, err := s.executeVectorSearchStep(ctx, index, vector)
	if err != nil {
		return nil, err
	}

	track(jobModel.PromptCall)
	filled, err := buildPrompt(modelOption, matches, question)
	if err != nil {
		return nil, err
	}

	track(jobModel.LLMCall)
	text, err := s.executeLLMStep(ctx, filled)
	if err != nil {
		return nil, err
	}

	ans := &Answer{
		Text:                text,
		ResponseTimeSeconds: time.Since(start).Seconds(),
		ModelOption:         modelOption,
		AnsweredBy:          s.llmProvider.ModelName(),
		Sources:             pageSources(matches),
	}
	loggr.Debug("Answered question", "matches", len(matches), "seconds", ans.ResponseTimeSeconds)
	return ans, nil
}

// ProcessRequest runs a query job for the job's session.
func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.FromContext(ctx).With("jobId", jobt.Id)
	jobt.CurrentStep = jobModel.RAGCall

	sess, ok := s.sessions.Get(jobt.SessionId)
	if !ok {
		return s.jobError(jobt, ErrUnknownSession, inMethodLogger)
	}
	sess.Lock()
	defer sess.Unlock()

	modelOption := jobt.JobPayload.ModelOption
	if modelOption == "" {
		modelOption = sess.Model()
	}
	ans, err := s.answer(ctx, sess, jobt.JobPayload.Question, modelOption, func(step jobModel.InternalStatus) {
		jobt = logOutput(jobt, step, inMethodLogger)
	})
	if err != nil {
		return s.jobError(jobt, err, inMethodLogger)
	}
	return returnOutput(jobt, ans)
}

// IngestDocument runs an upload job. The stored upload is gone afterwards
// whether or not ingestion succeeded.
func (s *service) IngestDocument(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.FromContext(ctx).With("jobId", jobt.Id)
	jobt.CurrentStep = jobModel.IngestProcessing
	upload := ingest.Upload{Path: jobt.JobPayload.IngestURL, FileName: jobt.JobPayload.IngestFileName}

	sess, ok := s.sessions.Get(jobt.SessionId)
	if !ok {
		if err := os.Remove(upload.Path); err != nil {
			inMethodLogger.Error("Error removing file", "error", err)
		}
		return s.jobError(jobt, ErrUnknownSession, inMethodLogger)
	}
	sess.Lock()
	defer sess.Unlock()

	report, err := s.ingest(ctx, sess, upload, func(step jobModel.InternalStatus) {
		jobt = logOutput(jobt, step, inMethodLogger)
	})
	if err != nil {
		return s.jobError(jobt, fmt.Errorf("ingest %s: %w", upload.FileName, err), inMethodLogger)
	}
	jobt.JobPayload.IngestReport = report
	jobt.JobPayload.IngestURL = ""
	jobt.CurrentStep = jobModel.Complete
	return jobt
}
