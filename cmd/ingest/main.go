package main

import (
	"context"
	"flag"
	"os"

	"github.com/nmisal/mailspend/internal/archive"
	"github.com/nmisal/mailspend/internal/classify"
	"github.com/nmisal/mailspend/internal/extract"
	ledgerBQ "github.com/nmisal/mailspend/internal/ledger/bigquery"
	"github.com/nmisal/mailspend/internal/llm"
	"github.com/nmisal/mailspend/internal/logger"
	"github.com/nmisal/mailspend/internal/mailbox"
	"github.com/nmisal/mailspend/internal/pipeline"
)

// One-shot batch run: list matching alert emails, extract, commit, mark read.
// Intended for cron and for historical imports (-all -max N).
func main() {
	var (
		sender     = flag.String("sender", os.Getenv("ALERT_SENDER"), "bank alert sender address (or set ALERT_SENDER env)")
		all        = flag.Bool("all", false, "include already-read messages (historical import)")
		maxResults = flag.Int64("max", 0, "cap on messages to consider (0 = provider default)")
		useBody    = flag.Bool("use-body", false, "feed decoded message bodies to extraction instead of snippets")
		model      = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name")
		project    = flag.String("project", os.Getenv("BQ_PROJECT"), "BigQuery project ID")
		dataset    = flag.String("dataset", envOr("BQ_DATASET", "mailspend"), "BigQuery dataset ID")
		table      = flag.String("table", envOr("BQ_TABLE", "transactions"), "BigQuery table name")
		bucket     = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for raw message archival")
		logLevel   = flag.String("log-level", envOr("LOG_LEVEL", "info"), "log level")
	)
	flag.Parse()

	log := logger.New(*logLevel)
	ctx := logger.WithContext(context.Background(), log)

	if *sender == "" {
		log.Fatal().Msg("-sender or ALERT_SENDER is required")
	}

	gen, err := llm.NewGeminiClient(ctx, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	creds, err := mailbox.CredentialsFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Gmail credentials missing")
	}
	mb, err := mailbox.NewGmailMailbox(ctx, creds.TokenSource(ctx))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gmail mailbox")
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

	opts := pipeline.Options{UseBody: *useBody}
	if *bucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS archiver")
		}
		defer archiver.Close()
		opts.Archiver = archiver
	}

	coordinator := pipeline.NewCoordinator(
		mb,
		extract.NewExtractor(gen),
		classify.NewClassifier(gen, log),
		store,
		opts,
		log,
	)

	filter := mailbox.ListFilter{
		FromAddress: *sender,
		OnlyUnread:  !*all,
		MaxResults:  *maxResults,
	}

	result, err := coordinator.RunExtractionBatch(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction batch failed")
	}

	log.Info().
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Ingest run finished")

	if result.Failed > 0 {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
