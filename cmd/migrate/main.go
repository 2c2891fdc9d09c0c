package main

import (
	"context"
	"flag"
	"os"

	ledgerBQ "github.com/nmisal/mailspend/internal/ledger/bigquery"
	"github.com/nmisal/mailspend/internal/logger"
)

// Creates the BigQuery dataset and transactions table if they do not exist.
func main() {
	var (
		project = flag.String("project", os.Getenv("BQ_PROJECT"), "BigQuery project ID (or set BQ_PROJECT env)")
		dataset = flag.String("dataset", envOr("BQ_DATASET", "mailspend"), "BigQuery dataset ID")
		table   = flag.String("table", envOr("BQ_TABLE", "transactions"), "BigQuery table name")
	)
	flag.Parse()

	log := logger.New("info")
	ctx := context.Background()

	if *project == "" {
		log.Fatal().Msg("-project or BQ_PROJECT is required")
	}

	cfg := ledgerBQ.Config{ProjectID: *project, DatasetID: *dataset, Table: *table}
	if err := ledgerBQ.EnsureTable(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().
		Str("project", *project).
		Str("dataset", *dataset).
		Str("table", *table).
		Msg("Ledger schema is in place")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
