package main

import (
	"flag"
	"os"
)

type config struct {
	Port        string
	LogLevel    string
	Model       string
	AlertSender string
	UseBody     bool
	Workers     int

	Project string
	Dataset string
	Table   string
	Bucket  string
}

func loadConfig() config {
	var cfg config
	flag.StringVar(&cfg.Port, "port", envOr("PORT", "8080"), "HTTP server port")
	flag.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.Model, "model", os.Getenv("GEMINI_MODEL"), "Gemini model name (default from library)")
	flag.StringVar(&cfg.AlertSender, "alert-sender", os.Getenv("ALERT_SENDER"), "default bank alert sender address (or set ALERT_SENDER env)")
	flag.BoolVar(&cfg.UseBody, "use-body", os.Getenv("USE_BODY") == "true", "feed decoded message bodies to extraction instead of snippets")
	flag.IntVar(&cfg.Workers, "workers", 2, "concurrent batch workers")
	flag.StringVar(&cfg.Project, "project", os.Getenv("BQ_PROJECT"), "BigQuery project ID (or set BQ_PROJECT env)")
	flag.StringVar(&cfg.Dataset, "dataset", envOr("BQ_DATASET", "mailspend"), "BigQuery dataset ID")
	flag.StringVar(&cfg.Table, "table", envOr("BQ_TABLE", "transactions"), "BigQuery table name")
	flag.StringVar(&cfg.Bucket, "bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for raw message archival (or set GCS_BUCKET env)")
	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
