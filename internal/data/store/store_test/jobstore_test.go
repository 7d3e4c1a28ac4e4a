package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/data/redisStore"
	"github.com/akolanti/ChatPDF/internal/data/store"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client), time.Hour)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:        jobID,
		SessionId: "s1",
		Status:    jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{
			Question:            "What is the capital of France?",
			Answer:              "Paris",
			ResponseTimeSeconds: 1.25,
			Sources:             []string{"page 1"},
		},
	}

	t.Run("Save and Get", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.Answer != "Paris" || retrievedJob.JobPayload.ResponseTimeSeconds != 1.25 {
			t.Errorf("Data mismatch! Got %+v", retrievedJob.JobPayload)
		}
	})

	t.Run("Record expires", func(t *testing.T) {
		ttl := mr.TTL("chatpdf:job:" + jobID)
		if ttl <= 0 || ttl > time.Hour {
			t.Errorf("unexpected TTL %v", ttl)
		}
		mr.FastForward(2 * time.Hour)
		if _, found := jobStore.GetJob(ctx, jobID); found {
			t.Error("expired job should be gone")
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		_ = jobStore.SaveJob(ctx, testJob)
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists("chatpdf:job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})

	t.Run("Corrupt record", func(t *testing.T) {
		_ = mr.Set("chatpdf:job:broken", "{not json")
		if _, found := jobStore.GetJob(ctx, "broken"); found {
			t.Error("corrupt record should read as missing")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client), time.Hour)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()
}

func TestGetRedisJobStore_Offline(t *testing.T) {
	settings := config.RedisSettings{Addr: "127.0.0.1:1"}
	if s := store.GetRedisJobStore(context.Background(), settings); s != nil {
		t.Error("expected nil store when Redis is unreachable")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	ctx := context.Background()
	s := store.InitInMemoryJobStore(50 * time.Millisecond)

	_ = s.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued})
	if j, found := s.GetJob(ctx, "a"); !found || j.Status != jobModel.JobStatusQueued {
		t.Fatalf("expected job a, got %+v %v", j, found)
	}

	time.Sleep(80 * time.Millisecond)
	if _, found := s.GetJob(ctx, "a"); found {
		t.Error("job should have expired")
	}

	_ = s.SaveJob(ctx, jobModel.Job{Id: "b"})
	s.DeleteJob(ctx, "b")
	if _, found := s.GetJob(ctx, "b"); found {
		t.Error("deleted job still found")
	}
}
