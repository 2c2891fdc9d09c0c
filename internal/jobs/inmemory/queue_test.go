package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nmisal/mailspend/internal/jobs"
	"github.com/nmisal/mailspend/internal/mailbox"
	"github.com/nmisal/mailspend/internal/pipeline"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ExtractionBatchJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Job %s never reached status %s", jobID, want)
	return nil
}

func TestQueue_PublishAndProcess(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 2, store)
	defer queue.Close()

	var mu sync.Mutex
	var handled []string
	handler := func(ctx context.Context, job *jobs.ExtractionBatchJob) error {
		mu.Lock()
		handled = append(handled, job.JobID)
		mu.Unlock()
		job.Result = &pipeline.BatchResult{Inserted: 2, Skipped: 1}
		return nil
	}

	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ExtractionBatchJob{
		Filter: mailbox.ListFilter{FromAddress: "alerts@somebank.com", OnlyUnread: true},
	}
	if err := queue.PublishExtractionBatch(context.Background(), job); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("Expected assigned JobID")
	}

	final := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if final.Result == nil || final.Result.Inserted != 2 {
		t.Errorf("Expected result with 2 inserted, got %+v", final.Result)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 {
		t.Errorf("Expected 1 handled job, got %d", len(handled))
	}
}

func TestQueue_RetriesThenFails(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, job *jobs.ExtractionBatchJob) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("mailbox unavailable")
	}

	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ExtractionBatchJob{MaxRetries: 1}
	if err := queue.PublishExtractionBatch(context.Background(), job); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	final := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if final.Error == "" {
		t.Error("Expected error message on failed job")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("Expected 2 attempts (1 + 1 retry), got %d", attempts)
	}
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	queue := NewQueue(1, 1, NewStore())
	if err := queue.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	err := queue.PublishExtractionBatch(context.Background(), &jobs.ExtractionBatchJob{})
	if err == nil {
		t.Fatal("Expected publish on closed queue to fail")
	}
}

func TestStore_SaveAndList(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, j := range []*jobs.ExtractionBatchJob{
		{JobID: "a", Status: jobs.JobStatusCompleted, CreatedAt: time.Now().Add(-2 * time.Hour)},
		{JobID: "b", Status: jobs.JobStatusPending, CreatedAt: time.Now().Add(-1 * time.Hour)},
		{JobID: "c", Status: jobs.JobStatusCompleted, CreatedAt: time.Now()},
	} {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(completed) != 2 || completed[0].JobID != "c" {
		t.Errorf("Expected [c a], got %+v", completed)
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 job with limit, got %d", len(limited))
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.ExtractionBatchJob{}); err == nil {
		t.Fatal("Expected error for missing job ID")
	}
}

func TestStore_GetJobReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.SaveJob(ctx, &jobs.ExtractionBatchJob{JobID: "a", Status: jobs.JobStatusPending}); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := store.GetJob(ctx, "a")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	got.Status = jobs.JobStatusFailed

	again, err := store.GetJob(ctx, "a")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("Expected stored status unchanged, got %s", again.Status)
	}
}
