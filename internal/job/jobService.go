package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var logger = logger_i.NewLogger("JobService")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
	}
}

// Submit records the job as QUEUED and hands it to the workers. The send on
// the job channel blocks when the buffer is full, which is the backpressure.
func (s *Service) Submit(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	log := logger.FromContext(ctx).With("jobId", j.Id)
	j.Status = jobModel.JobStatusQueued
	if j.CreatedTime.IsZero() {
		j.CreatedTime = time.Now()
	}
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Failed to store queued job", "error", err)
		return j, err
	}

	metrics.IncrementJobsInQueue()
	select {
	case s.JobChannel <- j:
	case <-ctx.Done():
		metrics.DecrementJobsInQueue()
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), j.Id)
		return j, ctx.Err()
	}
	log.Info("Created new job", "type", j.JobType)

	// a new worker for every ingest job, ingestion is long running
	// and for every N-th question; idle workers retire on their own
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || j.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount()
		log.Debug("Signalling dispatcher", "requestCount", accurateCount)
		select {
		case s.DispatcherChannel <- true:
		default:
			// a signal is already pending
		}
	}
	return j, nil
}

func (s *Service) Status(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
