package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nmisal/mailspend/internal/api/handlers"
	"github.com/nmisal/mailspend/internal/api/middleware"
	"github.com/nmisal/mailspend/internal/archive"
	"github.com/nmisal/mailspend/internal/classify"
	"github.com/nmisal/mailspend/internal/extract"
	"github.com/nmisal/mailspend/internal/insight"
	"github.com/nmisal/mailspend/internal/jobs"
	"github.com/nmisal/mailspend/internal/jobs/inmemory"
	ledgerBQ "github.com/nmisal/mailspend/internal/ledger/bigquery"
	"github.com/nmisal/mailspend/internal/llm"
	"github.com/nmisal/mailspend/internal/logger"
	"github.com/nmisal/mailspend/internal/mailbox"
	"github.com/nmisal/mailspend/internal/pipeline"
)

func main() {
	cfg := loadConfig()
	log := logger.New(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	// Gemini generator shared by extraction, classification and insights.
	gen, err := llm.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	// Gmail mailbox from the stored OAuth grant.
	creds, err := mailbox.CredentialsFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Gmail credentials missing")
	}
	mb, err := mailbox.NewGmailMailbox(ctx, creds.TokenSource(ctx))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gmail mailbox")
	}

	// BigQuery-backed ledger.
	store, err := ledgerBQ.NewStore(ctx, ledgerBQ.Config{
		ProjectID: cfg.Project,
		DatasetID: cfg.Dataset,
		Table:     cfg.Table,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger store")
	}
	defer store.Close()

	// Optional raw-message archive.
	opts := pipeline.Options{UseBody: cfg.UseBody}
	if cfg.Bucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, cfg.Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS archiver")
		}
		defer archiver.Close()
		opts.Archiver = archiver
	} else {
		log.Warn().Msg("No GCS bucket configured - raw message archival disabled")
	}

	coordinator := pipeline.NewCoordinator(
		mb,
		extract.NewExtractor(gen),
		classify.NewClassifier(gen, log),
		store,
		opts,
		log,
	)
	synthesizer := insight.NewSynthesizer(gen, log)

	// Job infrastructure: batches run in-process on the queue's workers.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ExtractionBatchJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Str("query", job.Filter.Query()).
			Msg("Processing extraction batch job")

		result, err := coordinator.RunExtractionBatch(ctx, job.Filter)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("Extraction batch failed")
			return err
		}

		job.Result = &result
		log.Info().
			Str("job_id", job.JobID).
			Int("inserted", result.Inserted).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Msg("Extraction batch job completed")
		return nil
	}

	go func() {
		log.Info().Int("workers", cfg.Workers).Msg("Starting batch workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Batch workers stopped with error")
		}
	}()

	batchesHandler := handlers.NewBatchesHandler(jobQueue, cfg.AlertSender, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	transactionsHandler := handlers.NewTransactionsHandler(store, log)
	insightsHandler := handlers.NewInsightsHandler(store, synthesizer, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/batches", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			batchesHandler.EnqueueBatch(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/daily", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.DailyInsight(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/monthly", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.MonthlyInsight(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", handlers.Health)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Wait for in-flight batches before exiting.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
