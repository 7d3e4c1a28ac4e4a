package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	SessionId string            `json:"session_id" example:"6f1c2a9e-3f0b-4d7e-9a53-4f6b9b8f2c11"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question            string   `json:"question"`
	Answer              string   `json:"answer"`
	Sources             []string `json:"sources"`
	ModelOption         string   `json:"model_option" example:"FPHam/MissLizzy_7b_HF"`
	AnsweredBy          string   `json:"answered_by" example:"mixtral-8x7b-32768"`
	ResponseTimeSeconds float64  `json:"response_time_seconds" example:"1.42"`
}

type IngestResponse struct {
	FileName     string `json:"file_name" example:"report.pdf"`
	PagesLoaded  int    `json:"pages_loaded" example:"72"`
	PagesIndexed int    `json:"pages_indexed" example:"50"`
	Chunks       int    `json:"chunks" example:"311"`
	Truncated    bool   `json:"truncated" example:"true"`
}

type Result struct {
	Status              string          `json:"status"`
	Step                string          `json:"step,omitempty"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestResponse      *IngestResponse `json:"ingest_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	SessionId string `json:"session_id"`
	StatusURL string `json:"status_url"`
}

type ModelOption struct {
	Id          string `json:"id" example:"FPHam/MissLizzy_7b_HF"`
	Description string `json:"description" example:"helpful and knowledgeable assistant"`
	Default     bool   `json:"default"`
}

type ModelsResponse struct {
	Models   []ModelOption `json:"models"`
	Selected string        `json:"selected"`
}

type SessionResponse struct {
	SessionId string `json:"session_id"`
	Model     string `json:"model"`
	Document  string `json:"document,omitempty"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	Ready     bool   `json:"ready"`
}

type PageContent struct {
	Number  int    `json:"page_num"`
	Content string `json:"content"`
}

type PagesResponse struct {
	SessionId string        `json:"session_id"`
	Document  string        `json:"document,omitempty"`
	Pages     []PageContent `json:"pages"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ModelSelectRequest struct {
	Model string `json:"model" validate:"required" example:"recogna-nlp/Phi-Bode"`
}
