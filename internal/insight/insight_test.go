package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/logger"
)

// MockGenerator implements llm.Generator for testing
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.GenerateFunc(ctx, prompt, temperature)
}

func debit(amount float64, category string) domain.ExtractedTransaction {
	return domain.ExtractedTransaction{
		Amount:          amount,
		Type:            domain.TypeDebit,
		Category:        category,
		TransactionDate: time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC),
	}
}

func testSummary() domain.PeriodSummary {
	return domain.PeriodSummary{
		ScopeStart: time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC),
		ScopeEnd:   time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
		TotalDebit: 570.50,
		Count:      3,
		Transactions: []domain.ExtractedTransaction{
			debit(450, "Food & Dining"),
			debit(120.50, "Groceries"),
			{Amount: 1000, Type: domain.TypeCredit, Category: "Transfer"},
		},
	}
}

func newTestSynthesizer(gen *MockGenerator) *Synthesizer {
	return NewSynthesizer(gen, logger.New("disabled"))
}

func TestSummarizeDaily_ModelText(t *testing.T) {
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "  You spent most of your money on food today.  ", nil
		},
	}

	got := newTestSynthesizer(gen).SummarizeDaily(context.Background(), testSummary())
	if got != "You spent most of your money on food today." {
		t.Errorf("SummarizeDaily() = %q, want trimmed model text", got)
	}
}

func TestSummarizeDaily_FallbackOnError(t *testing.T) {
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "", errors.New("connection refused")
		},
	}

	got := newTestSynthesizer(gen).SummarizeDaily(context.Background(), testSummary())
	if !strings.Contains(got, "570.50") || !strings.Contains(got, "3 transactions") {
		t.Errorf("Expected template with totals, got %q", got)
	}
}

func TestSummarizeMonthly_FallbackOnBlankResponse(t *testing.T) {
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "   ", nil
		},
	}

	got := newTestSynthesizer(gen).SummarizeMonthly(context.Background(), testSummary())
	if !strings.Contains(got, "570.50") {
		t.Errorf("Expected template with total, got %q", got)
	}
}

func TestPromptCarriesBreakdownAndTotals(t *testing.T) {
	var seenPrompt string
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			seenPrompt = prompt
			return "fine", nil
		},
	}

	newTestSynthesizer(gen).SummarizeMonthly(context.Background(), testSummary())

	for _, want := range []string{"570.50", "Food & Dining", "Groceries"} {
		if !strings.Contains(seenPrompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if strings.Contains(seenPrompt, "Transfer") {
		t.Error("Expected credit categories to be excluded from the breakdown")
	}
}

func TestCategoryBreakdown(t *testing.T) {
	txs := []domain.ExtractedTransaction{
		debit(100, "Groceries"),
		debit(400, "Food & Dining"),
		debit(50, "Groceries"),
		debit(20, ""),
		{Amount: 5000, Type: domain.TypeCredit, Category: "Transfer"},
	}

	got := CategoryBreakdown(txs)

	want := []CategoryEntry{
		{"Food & Dining", 400},
		{"Groceries", 150},
		{"Others", 20},
	}
	if len(got) != len(want) {
		t.Fatalf("Breakdown length = %d, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Breakdown[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTopDebits(t *testing.T) {
	var txs []domain.ExtractedTransaction
	for _, amount := range []float64{10, 90, 30, 70, 50, 80, 20} {
		txs = append(txs, debit(amount, "Shopping"))
	}
	txs = append(txs, domain.ExtractedTransaction{Amount: 9999, Type: domain.TypeCredit})

	got := topDebits(txs, 5)

	if len(got) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(got))
	}
	if got[0].Amount != 90 || got[4].Amount != 30 {
		t.Errorf("Expected descending top-5 starting at 90 and ending at 30, got %+v", got)
	}
}
