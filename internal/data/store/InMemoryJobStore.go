package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

type storedJob struct {
	job     jobModel.Job
	expires time.Time
}

// InMemoryJobStore is the fallback when Redis is unreachable. Records expire
// like the Redis ones, lazily on read and on every save.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]storedJob
	ttl      time.Duration
}

func InitInMemoryJobStore(ttl time.Duration) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]storedJob),
		ttl:      ttl,
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.Job) error {
	now := time.Now()
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	for id, j := range store.jobMap {
		if store.ttl > 0 && now.After(j.expires) {
			delete(store.jobMap, id)
		}
	}
	store.jobMap[jobToStore.Id] = storedJob{job: jobToStore, expires: now.Add(store.ttl)}
	inMemLogger.Debug("Saved job to store", "jobId", jobToStore.Id, "status", jobToStore.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	if found && store.ttl > 0 && time.Now().After(result.expires) {
		found = false
	}
	inMemLogger.Debug("Job lookup", "jobId", jobId, "found", found)
	return result.job, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}
