package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
	"github.com/akolanti/ChatPDF/internal/session"
)

func ToInitJobResponse(id string, sessionId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		SessionId: sessionId,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		Step:                string(job.CurrentStep),
		RAGExternalResponse: ToRAGExternalStatus(job.JobPayload),
		IngestResponse:      ToIngestResponse(job.JobPayload.IngestReport),
	}

	return api.JobResponse{
		Id:        job.Id,
		SessionId: job.SessionId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question:            ragData.Question,
		Answer:              ragData.Answer,
		Sources:             ragData.Sources,
		ModelOption:         ragData.ModelOption,
		AnsweredBy:          ragData.AnsweredBy,
		ResponseTimeSeconds: ragData.ResponseTimeSeconds,
	}
}

func ToIngestResponse(report *jobModel.IngestReport) *api.IngestResponse {
	if report == nil {
		return nil
	}
	return &api.IngestResponse{
		FileName:     report.FileName,
		PagesLoaded:  report.PagesLoaded,
		PagesIndexed: report.PagesIndexed,
		Chunks:       report.Chunks,
		Truncated:    report.Truncated,
	}
}

func ToModelsResponse(selected string) api.ModelsResponse {
	opts := prompt.Options()
	res := api.ModelsResponse{Models: make([]api.ModelOption, len(opts)), Selected: selected}
	for i, o := range opts {
		res.Models[i] = api.ModelOption{Id: o.Id, Description: o.Description, Default: o.Id == prompt.Default()}
	}
	return res
}

func ToSessionResponse(sum session.Summary) api.SessionResponse {
	return api.SessionResponse{
		SessionId: sum.Id,
		Model:     sum.Model,
		Document:  sum.Document,
		Pages:     sum.Pages,
		Chunks:    sum.Chunks,
		Ready:     sum.Ready,
	}
}

func ToPagesResponse(sess *session.Session) api.PagesResponse {
	pages := sess.Pages()
	res := api.PagesResponse{SessionId: sess.Id, Pages: make([]api.PageContent, len(pages))}
	if l := sess.Loader(); l != nil {
		res.Document = l.Source()
	}
	for i, p := range pages {
		res.Pages[i] = api.PageContent{Number: p.Number, Content: p.Content}
	}
	return res
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
