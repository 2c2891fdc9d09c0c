package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/extract"
	"github.com/nmisal/mailspend/internal/ledger"
	"github.com/nmisal/mailspend/internal/mailbox"
)

// Coordinator runs extraction batches: list, normalize, extract, dedup,
// classify, commit, mark read. One message failing never aborts the batch.
//
// The dedup lookup and the insert run under one mutex so that concurrent
// batches over overlapping windows cannot double-commit a message.
type Coordinator struct {
	mailbox    Mailbox
	extractor  Extractor
	classifier Classifier
	store      ledger.Store
	archiver   Archiver // nil disables archival
	useBody    bool

	commitMu sync.Mutex
	log      zerolog.Logger
}

// Options configures optional coordinator behavior.
type Options struct {
	// Archiver, when non-nil, receives every message's normalized text
	// before extraction.
	Archiver Archiver

	// UseBody feeds the decoded body to extraction instead of the snippet.
	UseBody bool
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(mb Mailbox, ex Extractor, cl Classifier, store ledger.Store, opts Options, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		mailbox:    mb,
		extractor:  ex,
		classifier: cl,
		store:      store,
		archiver:   opts.Archiver,
		useBody:    opts.UseBody,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// RunExtractionBatch lists candidate messages for the filter and processes
// them. A listing failure aborts; per-message failures are counted.
func (c *Coordinator) RunExtractionBatch(ctx context.Context, filter mailbox.ListFilter) (BatchResult, error) {
	msgs, err := c.mailbox.ListCandidateMessages(ctx, filter)
	if err != nil {
		return BatchResult{}, fmt.Errorf("RunExtractionBatch: %w", err)
	}
	c.log.Info().Int("candidates", len(msgs)).Str("query", filter.Query()).Msg("starting extraction batch")
	return c.Process(ctx, msgs)
}

// Process runs the per-message loop over an already-listed set of messages.
// It returns early only on context cancellation; every other failure is
// recorded in the result and the loop moves on.
func (c *Coordinator) Process(ctx context.Context, msgs []domain.SourceMessage) (BatchResult, error) {
	var result BatchResult

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("Process: %w", err)
		}

		outcome := c.processOne(ctx, msg)
		switch outcome {
		case outcomeInserted:
			result.Inserted++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}

	c.log.Info().
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("extraction batch finished")
	return result, nil
}

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (c *Coordinator) processOne(ctx context.Context, msg domain.SourceMessage) outcome {
	log := c.log.With().Str("message_id", msg.ID).Logger()

	text := mailbox.NormalizeText(msg, c.useBody)

	if c.archiver != nil {
		if err := c.archiver.Put(ctx, msg.ID, text); err != nil {
			log.Warn().Err(err).Msg("archival failed, continuing")
		}
	}

	tx, err := c.extractor.Extract(ctx, text, msg)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUpstreamUnavailable):
			log.Error().Err(err).Msg("extraction upstream unavailable")
		case errors.Is(err, extract.ErrMalformedResponse):
			log.Warn().Err(err).Msg("extraction response malformed")
		default:
			log.Error().Err(err).Msg("extraction failed")
		}
		return outcomeFailed
	}

	committed, err := c.commit(ctx, tx)
	if err != nil {
		log.Error().Err(err).Msg("commit failed")
		return outcomeFailed
	}
	if !committed {
		log.Debug().Msg("message already committed, skipping")
		return outcomeSkipped
	}

	if err := c.mailbox.MarkRead(ctx, msg.ID); err != nil {
		log.Warn().Err(err).Msg("mark-read failed, message may be reprocessed and skipped later")
	}

	log.Info().
		Str("transaction_id", tx.TransactionID).
		Float64("amount", tx.Amount).
		Str("type", string(tx.Type)).
		Str("category", tx.Category).
		Msg("transaction committed")
	return outcomeInserted
}

// commit dedups and inserts under one lock. Returns false when the source
// message already has a committed row.
func (c *Coordinator) commit(ctx context.Context, tx *domain.ExtractedTransaction) (bool, error) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	existing, err := c.store.FindBySourceMessageID(ctx, tx.SourceMessageID)
	if err != nil {
		return false, fmt.Errorf("commit: dedup lookup: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	assignment := c.classifier.Classify(ctx, *tx)
	tx.Category = assignment.Category
	tx.SubCategory = assignment.SubCategory
	tx.CategoryConfidence = assignment.Confidence

	if err := c.store.Insert(ctx, *tx); err != nil {
		return false, fmt.Errorf("commit: insert: %w", err)
	}
	return true, nil
}
