package pipeline

import (
	"context"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/mailbox"
)

// Mailbox is what the coordinator needs from the mail provider.
type Mailbox interface {
	ListCandidateMessages(ctx context.Context, filter mailbox.ListFilter) ([]domain.SourceMessage, error)
	MarkRead(ctx context.Context, messageID string) error
}

// Extractor turns one message's text into a transaction or a typed failure.
type Extractor interface {
	Extract(ctx context.Context, text string, ref domain.SourceMessage) (*domain.ExtractedTransaction, error)
}

// Classifier assigns a category; it never fails.
type Classifier interface {
	Classify(ctx context.Context, tx domain.ExtractedTransaction) domain.CategoryAssignment
}

// Archiver stores raw message text. Optional; failures never block a batch.
type Archiver interface {
	Put(ctx context.Context, messageID, text string) error
}

// BatchResult counts the outcomes of one batch run. Every considered message
// lands in exactly one bucket.
type BatchResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
