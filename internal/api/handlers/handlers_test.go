package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/jobs"
	"github.com/nmisal/mailspend/internal/ledger"
	"github.com/nmisal/mailspend/internal/logger"
)

// MockPublisher implements jobs.Publisher for testing
type MockPublisher struct {
	PublishFunc func(ctx context.Context, job *jobs.ExtractionBatchJob) error
	published   []*jobs.ExtractionBatchJob
}

func (m *MockPublisher) PublishExtractionBatch(ctx context.Context, job *jobs.ExtractionBatchJob) error {
	m.published = append(m.published, job)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, job)
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// MockLedgerStore implements ledger.Store for testing
type MockLedgerStore struct {
	QueryFunc func(ctx context.Context, filter ledger.QueryFilter) ([]domain.ExtractedTransaction, error)
}

func (m *MockLedgerStore) Insert(ctx context.Context, tx domain.ExtractedTransaction) error {
	return nil
}

func (m *MockLedgerStore) FindBySourceMessageID(ctx context.Context, messageID string) (*domain.ExtractedTransaction, error) {
	return nil, nil
}

func (m *MockLedgerStore) Query(ctx context.Context, filter ledger.QueryFilter) ([]domain.ExtractedTransaction, error) {
	return m.QueryFunc(ctx, filter)
}

func (m *MockLedgerStore) Close() error { return nil }

// MockSynthesizer implements InsightSynthesizer for testing
type MockSynthesizer struct{}

func (m *MockSynthesizer) SummarizeDaily(ctx context.Context, summary domain.PeriodSummary) string {
	return "daily insight"
}

func (m *MockSynthesizer) SummarizeMonthly(ctx context.Context, summary domain.PeriodSummary) string {
	return "monthly insight"
}

func TestEnqueueBatch_DefaultsApplied(t *testing.T) {
	pub := &MockPublisher{}
	h := NewBatchesHandler(pub, "alerts@somebank.com", logger.New("disabled"))

	req := httptest.NewRequest(http.MethodPost, "/api/batches", nil)
	w := httptest.NewRecorder()

	h.EnqueueBatch(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Status = %d, want 202", w.Code)
	}
	if len(pub.published) != 1 {
		t.Fatalf("Expected 1 published job, got %d", len(pub.published))
	}
	filter := pub.published[0].Filter
	if filter.FromAddress != "alerts@somebank.com" || !filter.OnlyUnread {
		t.Errorf("Filter = %+v, want default unread filter", filter)
	}
}

func TestEnqueueBatch_HistoricalImport(t *testing.T) {
	pub := &MockPublisher{}
	h := NewBatchesHandler(pub, "alerts@somebank.com", logger.New("disabled"))

	body := `{"only_unread": false, "max_results": 100}`
	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.EnqueueBatch(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Status = %d, want 202", w.Code)
	}
	filter := pub.published[0].Filter
	if filter.OnlyUnread {
		t.Error("Expected OnlyUnread=false for historical import")
	}
	if filter.MaxResults != 100 {
		t.Errorf("MaxResults = %d, want 100", filter.MaxResults)
	}
}

func TestEnqueueBatch_NoSenderAnywhere(t *testing.T) {
	h := NewBatchesHandler(&MockPublisher{}, "", logger.New("disabled"))

	req := httptest.NewRequest(http.MethodPost, "/api/batches", nil)
	w := httptest.NewRecorder()

	h.EnqueueBatch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", w.Code)
	}
}

func TestListTransactions_FilterParsing(t *testing.T) {
	var seenFilter ledger.QueryFilter
	store := &MockLedgerStore{
		QueryFunc: func(ctx context.Context, filter ledger.QueryFilter) ([]domain.ExtractedTransaction, error) {
			seenFilter = filter
			return []domain.ExtractedTransaction{{TransactionID: "tx-1"}}, nil
		},
	}
	h := NewTransactionsHandler(store, logger.New("disabled"))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?start_date=2025-10-01&end_date=2025-10-31&type=debit&limit=10", nil)
	w := httptest.NewRecorder()

	h.ListTransactions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if seenFilter.Start.Format("2006-01-02") != "2025-10-01" {
		t.Errorf("Start = %v, want 2025-10-01", seenFilter.Start)
	}
	if seenFilter.End.Format("2006-01-02") != "2025-11-01" {
		t.Errorf("End = %v, want exclusive 2025-11-01", seenFilter.End)
	}
	if seenFilter.Type != domain.TypeDebit || seenFilter.Limit != 10 {
		t.Errorf("Filter = %+v, want debit limit 10", seenFilter)
	}
}

func TestListTransactions_BadParams(t *testing.T) {
	h := NewTransactionsHandler(&MockLedgerStore{}, logger.New("disabled"))

	for _, target := range []string{
		"/api/transactions?start_date=oct-1",
		"/api/transactions?end_date=31/10/2025",
		"/api/transactions?type=refund",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		h.ListTransactions(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: Status = %d, want 400", target, w.Code)
		}
	}
}

func TestDailyInsight(t *testing.T) {
	store := &MockLedgerStore{
		QueryFunc: func(ctx context.Context, filter ledger.QueryFilter) ([]domain.ExtractedTransaction, error) {
			return []domain.ExtractedTransaction{
				{Amount: 450, Type: domain.TypeDebit},
			}, nil
		},
	}
	h := NewInsightsHandler(store, &MockSynthesizer{}, logger.New("disabled"))

	req := httptest.NewRequest(http.MethodGet, "/api/insights/daily?date=2025-10-30", nil)
	w := httptest.NewRecorder()

	h.DailyInsight(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if resp["insight"] != "daily insight" {
		t.Errorf("insight = %v, want daily insight", resp["insight"])
	}
	if resp["total_debit"] != 450.0 {
		t.Errorf("total_debit = %v, want 450", resp["total_debit"])
	}
	if resp["date"] != "2025-10-30" {
		t.Errorf("date = %v, want 2025-10-30", resp["date"])
	}
}

func TestMonthlyInsight_BadMonth(t *testing.T) {
	h := NewInsightsHandler(&MockLedgerStore{}, &MockSynthesizer{}, logger.New("disabled"))

	req := httptest.NewRequest(http.MethodGet, "/api/insights/monthly?year=2025&month=13", nil)
	w := httptest.NewRecorder()

	h.MonthlyInsight(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("Body = %q, want status ok", w.Body.String())
	}
}
