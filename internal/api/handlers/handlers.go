package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/nmisal/mailspend/internal/api/middleware"
	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/jobs"
	"github.com/nmisal/mailspend/internal/ledger"
	"github.com/nmisal/mailspend/internal/mailbox"
)

// BatchesHandler enqueues extraction batch runs.
type BatchesHandler struct {
	publisher   jobs.Publisher
	defaultFrom string
	log         zerolog.Logger
}

// NewBatchesHandler creates a new batches handler. defaultFrom is the alert
// sender used when a request does not name one.
func NewBatchesHandler(publisher jobs.Publisher, defaultFrom string, log zerolog.Logger) *BatchesHandler {
	return &BatchesHandler{
		publisher:   publisher,
		defaultFrom: defaultFrom,
		log:         log,
	}
}

// EnqueueBatch handles POST /api/batches
func (h *BatchesHandler) EnqueueBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAddress string `json:"from_address"`
		OnlyUnread  *bool  `json:"only_unread"`
		MaxResults  int64  `json:"max_results"`
	}

	// An empty body means "run the default unread batch".
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	filter := mailbox.ListFilter{
		FromAddress: req.FromAddress,
		OnlyUnread:  true,
		MaxResults:  req.MaxResults,
	}
	if filter.FromAddress == "" {
		filter.FromAddress = h.defaultFrom
	}
	if req.OnlyUnread != nil {
		filter.OnlyUnread = *req.OnlyUnread
	}
	if filter.FromAddress == "" {
		middleware.WriteError(w, http.StatusBadRequest, "from_address is required")
		return
	}

	job := &jobs.ExtractionBatchJob{Filter: filter}
	if err := h.publisher.PublishExtractionBatch(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction batch")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction batch")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("query", filter.Query()).Msg("Extraction batch enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler reports batch job status.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// TransactionsHandler lists committed transactions.
type TransactionsHandler struct {
	store ledger.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store ledger.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store: store,
		log:   log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := ledger.QueryFilter{}

	if startStr := query.Get("start_date"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
		filter.Start = start
	}
	if endStr := query.Get("end_date"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
		// end_date is inclusive on the wire; the store bound is exclusive.
		filter.End = end.AddDate(0, 0, 1)
	}
	if typeStr := query.Get("type"); typeStr != "" {
		txType := domain.TransactionType(typeStr)
		if !txType.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, "type must be credit or debit")
			return
		}
		filter.Type = txType
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	transactions, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if transactions == nil {
		transactions = []domain.ExtractedTransaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// InsightSynthesizer is what the insights handler needs from the synthesizer.
type InsightSynthesizer interface {
	SummarizeDaily(ctx context.Context, summary domain.PeriodSummary) string
	SummarizeMonthly(ctx context.Context, summary domain.PeriodSummary) string
}

// InsightsHandler serves daily and monthly spending insights.
type InsightsHandler struct {
	store       ledger.Store
	synthesizer InsightSynthesizer
	log         zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(store ledger.Store, synthesizer InsightSynthesizer, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		store:       store,
		synthesizer: synthesizer,
		log:         log,
	}
}

// DailyInsight handles GET /api/insights/daily?date=YYYY-MM-DD
func (h *InsightsHandler) DailyInsight(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date format")
			return
		}
		date = parsed
	}

	summary, err := ledger.DailySummary(r.Context(), h.store, date)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build daily summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build daily summary")
		return
	}

	insight := h.synthesizer.SummarizeDaily(r.Context(), summary)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":         date.Format("2006-01-02"),
		"insight":      insight,
		"total_debit":  summary.TotalDebit,
		"total_credit": summary.TotalCredit,
		"net":          summary.Net,
		"count":        summary.Count,
	})
}

// MonthlyInsight handles GET /api/insights/monthly?year=YYYY&month=M
func (h *InsightsHandler) MonthlyInsight(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	query := r.URL.Query()
	if yearStr := query.Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if monthStr := query.Get("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil || parsed < 1 || parsed > 12 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = time.Month(parsed)
	}

	summary, err := ledger.MonthlySummary(r.Context(), h.store, year, month)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build monthly summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build monthly summary")
		return
	}

	insight := h.synthesizer.SummarizeMonthly(r.Context(), summary)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"year":            year,
		"month":           int(month),
		"insight":         insight,
		"total_debit":     summary.TotalDebit,
		"total_credit":    summary.TotalCredit,
		"net":             summary.Net,
		"count":           summary.Count,
		"avg_daily_debit": summary.AvgDailyDebit,
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
