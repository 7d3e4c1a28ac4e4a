package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	jobmodel "github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
)

func jobTimeout(job jobmodel.Job) time.Duration {
	if job.JobType == jobmodel.JobTypeIngest {
		return config.IngestJobTimeout
	}
	return config.QueryJobTimeout
}

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctxTrace = context.WithValue(ctxTrace, config.SESSION_ID_KEY, job.SessionId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job))
	defer cancel()
	log := logger.FromContext(ctx).With("jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job)

	if job.JobType == jobmodel.JobTypeIngest {
		job = _ragService.IngestDocument(ctx, job)
	} else {
		job = _ragService.ProcessRequest(ctx, job)
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}
	log.Info("Job finished", "status", job.Status, "seconds", job.EndTime.Sub(start).Seconds())
	// the final state must land even when the job ran out of time
	saveJobState(context.WithoutCancel(ctx), job)
}

func removeWorker(reason string) {
	atomic.AddInt64(&currentWorkerCount, -1)
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	workerWaitGroup.Done()
}

func retireIdleWorker() bool {
	for {
		current := atomic.LoadInt64(&currentWorkerCount)
		if current <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, current, current-1) {
			metrics.DecrementActiveWorkerCount()
			logger.Info("Idle worker timeout - Removed worker", "workerCount", current-1)
			workerWaitGroup.Done()
			return true
		}
	}
}

func saveJobState(ctx context.Context, job jobmodel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.FromContext(ctx).Error("Failed to update job state", "jobId", job.Id, "err", err)
	}
}
