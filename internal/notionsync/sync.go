package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/nmisal/mailspend/internal/ledger"
	"github.com/nmisal/mailspend/internal/logger"
)

// SyncResult counts the outcomes of one export run.
type SyncResult struct {
	Created int
	Skipped int
	Failed  int
}

// SyncTransactions exports committed transactions in the date window to a
// Notion database. Idempotent on Source Message ID: pages that already carry
// a transaction's source message id are left alone, so re-running a window
// creates nothing twice.
func SyncTransactions(ctx context.Context, store ledger.Store, notion NotionService, databaseID string, start, end time.Time, dryRun bool) (SyncResult, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Time("start", start).
		Time("end", end).
		Bool("dry_run", dryRun).
		Msg("Starting transaction export to Notion")

	txs, err := store.Query(ctx, ledger.QueryFilter{Start: start, End: end})
	if err != nil {
		return SyncResult{}, fmt.Errorf("SyncTransactions: query ledger: %w", err)
	}
	log.Info().Int("transaction_count", len(txs)).Msg("Retrieved transactions from ledger")

	existing, err := queryExistingSourceIDs(ctx, notion, databaseID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("SyncTransactions: %w", err)
	}
	log.Info().Int("notion_page_count", len(existing)).Msg("Retrieved existing Notion pages")

	var result SyncResult
	for _, tx := range txs {
		if existing[tx.SourceMessageID] {
			result.Skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", tx.TransactionID).
				Str("source_message_id", tx.SourceMessageID).
				Msg("[DRY RUN] Would create Notion page")
			result.Created++
			continue
		}

		if _, err := notion.CreatePage(ctx, databaseID, transactionToProperties(tx)); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", tx.TransactionID).
				Msg("Failed to create Notion page")
			result.Failed++
			continue
		}
		result.Created++
	}

	log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Notion export finished")
	return result, nil
}

// queryExistingSourceIDs pages through the whole Notion database and collects
// the source message ids already exported.
func queryExistingSourceIDs(ctx context.Context, notion NotionService, databaseID string) (map[string]bool, error) {
	existing := make(map[string]bool)

	req := &notionapi.DatabaseQueryRequest{PageSize: 100}
	for {
		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryExistingSourceIDs: %w", err)
		}

		for _, page := range resp.Results {
			if id := extractSourceMessageID(page); id != "" {
				existing[id] = true
			}
		}

		if !resp.HasMore {
			return existing, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}
