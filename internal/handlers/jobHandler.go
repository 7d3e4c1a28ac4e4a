package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           = logger_i.NewLogger("JobHandler")
	logRH           = logger_i.NewLogger("RequestHandler")
)

type JobHandler struct {
	service  *job.Service
	sessions *session.Registry
	ingest   config.IngestSettings
}

func InitJobHandler(jobService *job.Service, sessions *session.Registry, ingestSettings config.IngestSettings) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, sessions: sessions, ingest: ingestSettings}
		logJH.Info("Starting job handler")
	})
}

type newJobData struct {
	id             string
	sessionId      string
	message        string
	modelOption    string
	traceId        string
	documentName   string
	documentSource string
}

func (n newJobData) isDocumentIngest() bool {
	return n.documentSource != ""
}

func CreateNewJob(ctx context.Context, newJob newJobData) (jobModel.Job, error) {
	logJH.FromContext(ctx).Info("To create new job", "jobId", newJob.id)

	_job := jobModel.Job{
		Id:          newJob.id,
		SessionId:   newJob.sessionId,
		TraceId:     newJob.traceId,
		CreatedTime: time.Now(),
	}
	if newJob.isDocumentIngest() {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestURL = newJob.documentSource
	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.JobPayload.Question = newJob.message
		_job.JobPayload.ModelOption = newJob.modelOption
		_job.CurrentStep = jobModel.UserQueryInit
	}
	return handlerInstance.service.Submit(ctx, _job)
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.Status(ctx, id)
	}
	return result, false
}

// currentSession returns the session resolved by the middleware.
func currentSession(ctx context.Context) (*session.Session, bool) {
	if handlerInstance == nil {
		return nil, false
	}
	id, _ := ctx.Value(config.SESSION_ID_KEY).(string)
	if id == "" {
		return nil, false
	}
	sess, _ := handlerInstance.sessions.GetOrCreate(id)
	return sess, true
}
