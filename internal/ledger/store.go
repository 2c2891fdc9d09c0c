package ledger

import (
	"context"
	"time"

	"github.com/nmisal/mailspend/internal/domain"
)

// QueryFilter narrows a transaction listing. Start is inclusive, End is
// exclusive, both compared against the transaction date. A zero time leaves
// that bound open; an empty Type matches both directions.
type QueryFilter struct {
	Start time.Time
	End   time.Time
	Type  domain.TransactionType
	Limit int
}

// Store is the ledger persistence contract. The pipeline dedups on
// FindBySourceMessageID and commits with Insert; the API reads with Query.
type Store interface {
	// Insert persists one committed transaction.
	Insert(ctx context.Context, tx domain.ExtractedTransaction) error

	// FindBySourceMessageID returns the transaction committed for a source
	// message, or (nil, nil) when no such row exists.
	FindBySourceMessageID(ctx context.Context, messageID string) (*domain.ExtractedTransaction, error)

	// Query lists transactions matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]domain.ExtractedTransaction, error)

	// Close releases the underlying client.
	Close() error
}
