package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/rag"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/session"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount   int32
	IngestedCount    int32
	OnProcessRequest func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcessRequest != nil {
		return m.OnProcessRequest(ctx, j)
	}
	j.JobPayload.Answer = "answer"
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.IngestedCount, 1)
	return j
}

func (m *MockRagService) Ingest(ctx context.Context, sess *session.Session, upload ingest.Upload) (*jobModel.IngestReport, error) {
	return nil, nil
}

func (m *MockRagService) Answer(ctx context.Context, sess *session.Session, question string) (*rag.Answer, error) {
	return nil, nil
}

type MockJobStore struct {
	mu        sync.Mutex
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
	saved     []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	m.saved = append(m.saved, j)
	m.mu.Unlock()
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func (m *MockJobStore) statuses(id string) []jobModel.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobModel.JobStatus
	for _, j := range m.saved {
		if j.Id == id {
			out = append(out, j.Status)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerPool_Flow(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store,
	})
	mockRag := &MockRagService{OnProcessRequest: func(ctx context.Context, j jobModel.Job) jobModel.Job {
		if j.Id == "bad" {
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Code: 502, Message: "provider down"}
		}
		return j
	}}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Pool starts with the minimum", func(t *testing.T) {
		if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
			t.Errorf("Expected 1 worker, got %d", count)
		}
	})

	t.Run("Ingest job signals the dispatcher", func(t *testing.T) {
		_, err := jobSvc.Submit(context.Background(), jobModel.Job{Id: "ingest-1", JobType: jobModel.JobTypeIngest})
		if err != nil {
			t.Fatal(err)
		}
		waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) >= 2 })
		waitFor(t, func() bool { return atomic.LoadInt32(&mockRag.IngestedCount) == 1 })
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		if _, err := jobSvc.Submit(context.Background(), jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, func() bool {
			s := store.statuses("test-1")
			return len(s) > 0 && s[len(s)-1] == jobModel.JobStatusComplete
		})
		got := store.statuses("test-1")
		want := []jobModel.JobStatus{jobModel.JobStatusQueued, jobModel.JobStatusRunning, jobModel.JobStatusComplete}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("state %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("Failed job keeps its error", func(t *testing.T) {
		if _, err := jobSvc.Submit(context.Background(), jobModel.Job{Id: "bad", JobType: jobModel.JobTypeQuery}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, func() bool {
			s := store.statuses("bad")
			return len(s) == 3
		})
		final, _ := store.GetJob(context.Background(), "bad")
		if final.Status != jobModel.JobStatusError || final.Error.Code != 502 || final.EndTime.IsZero() {
			t.Errorf("unexpected final job %+v", final)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	previous := idleWorkerTimeout
	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = previous }()

	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	createWorker()
	createWorker()

	waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 1 })

	time.Sleep(150 * time.Millisecond)
	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("pool must not shrink below the minimum, count is %d", count)
	}
	close(stopChan)
	wg.Wait()
}
