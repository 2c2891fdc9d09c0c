package jobs

import (
	"context"
	"time"

	"github.com/nmisal/mailspend/internal/mailbox"
	"github.com/nmisal/mailspend/internal/pipeline"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ExtractionBatchJob is one asynchronous batch run over the mailbox.
// Retrying a batch is safe: the pipeline dedups on source message id, so a
// retried run re-skips whatever the failed attempt already committed.
type ExtractionBatchJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Filter selects the mailbox messages the batch considers.
	Filter mailbox.ListFilter `json:"filter"`

	// Result holds the batch counters once the job has completed.
	Result *pipeline.BatchResult `json:"result,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction keeps a Cloud Tasks or Pub/Sub implementation possible
// without touching the API layer.
type Publisher interface {
	// PublishExtractionBatch publishes an extraction batch job.
	PublishExtractionBatch(ctx context.Context, job *ExtractionBatchJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A non-nil error marks the job failed and
// eligible for retry.
type JobHandler func(ctx context.Context, job *ExtractionBatchJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExtractionBatchJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExtractionBatchJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractionBatchJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
