package main

import (
	"context"
	"flag"
	"os"
	"time"

	ledgerBQ "github.com/nmisal/mailspend/internal/ledger/bigquery"
	"github.com/nmisal/mailspend/internal/logger"
	"github.com/nmisal/mailspend/internal/notionsync"
)

// Exports committed transactions in a date window to a Notion database.
// Safe to re-run: pages are deduped on Source Message ID.
func main() {
	var (
		project  = flag.String("project", os.Getenv("BQ_PROJECT"), "BigQuery project ID (or set BQ_PROJECT env)")
		dataset  = flag.String("dataset", envOr("BQ_DATASET", "mailspend"), "BigQuery dataset ID")
		table    = flag.String("table", envOr("BQ_TABLE", "transactions"), "BigQuery table name")
		notionDB = flag.String("notion-db", os.Getenv("NOTION_DATABASE_ID"), "Notion database ID (or set NOTION_DATABASE_ID env)")
		startStr = flag.String("start", "", "window start date YYYY-MM-DD (default: first of current month)")
		endStr   = flag.String("end", "", "window end date YYYY-MM-DD, exclusive (default: now)")
		dryRun   = flag.Bool("dry-run", false, "log what would be exported without writing to Notion")
		logLevel = flag.String("log-level", envOr("LOG_LEVEL", "info"), "log level")
	)
	flag.Parse()

	log := logger.New(*logLevel)
	ctx := logger.WithContext(context.Background(), log)

	token := os.Getenv("NOTION_TOKEN")
	if token == "" {
		log.Fatal().Msg("NOTION_TOKEN is required")
	}
	if *notionDB == "" {
		log.Fatal().Msg("-notion-db or NOTION_DATABASE_ID is required")
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now
	var err error
	if *startStr != "" {
		start, err = time.Parse("2006-01-02", *startStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -start date")
		}
	}
	if *endStr != "" {
		end, err = time.Parse("2006-01-02", *endStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -end date")
		}
	}

	store, err := ledgerBQ.NewStore(ctx, ledgerBQ.Config{
		ProjectID: *project,
		DatasetID: *dataset,
		Table:     *table,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger store")
	}
	defer store.Close()

	notion := notionsync.NewNotionClient(token)

	result, err := notionsync.SyncTransactions(ctx, store, notion, *notionDB, start, end, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Notion export failed")
	}

	log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Notion export done")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
