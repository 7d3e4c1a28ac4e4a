package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit    InternalStatus = "Init"
	RAGCall          InternalStatus = "RAG"
	PromptCall       InternalStatus = "Prompt"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"

	IngestInit       InternalStatus = "IngestInit"
	IngestLoading    InternalStatus = "IngestLoading"
	IngestSplitting  InternalStatus = "IngestSplitting"
	IngestIndexing   InternalStatus = "IngestIndexing"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	SessionId   string         `json:"session_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question            string   `json:"question,omitempty"`
	Answer              string   `json:"answer,omitempty"`
	Sources             []string `json:"sources,omitempty"`
	ModelOption         string   `json:"model_option,omitempty"`
	AnsweredBy          string   `json:"answered_by,omitempty"`
	ResponseTimeSeconds float64  `json:"response_time_seconds,omitempty"`

	IngestFileName string        `json:"ingest_file_name,omitempty"`
	IngestURL      string        `json:"ingest_url,omitempty"`
	IngestReport   *IngestReport `json:"ingest_report,omitempty"`
}

// IngestReport is the load confirmation of a finished upload.
type IngestReport struct {
	FileName     string `json:"file_name"`
	PagesLoaded  int    `json:"pages_loaded"`
	PagesIndexed int    `json:"pages_indexed"`
	Chunks       int    `json:"chunks"`
	Truncated    bool   `json:"truncated"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
