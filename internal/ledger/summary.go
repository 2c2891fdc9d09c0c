package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/nmisal/mailspend/internal/domain"
)

// DailySummary aggregates the ledger over one calendar day.
func DailySummary(ctx context.Context, s Store, date time.Time) (domain.PeriodSummary, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	txs, err := s.Query(ctx, QueryFilter{Start: start, End: end})
	if err != nil {
		return domain.PeriodSummary{}, fmt.Errorf("DailySummary: %w", err)
	}
	return buildSummary(start, end, txs, 0), nil
}

// MonthlySummary aggregates the ledger over one calendar month. The average
// daily debit divides by the number of days in the month, not by the number
// of days that saw spending.
func MonthlySummary(ctx context.Context, s Store, year int, month time.Month) (domain.PeriodSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	daysInMonth := end.Sub(start).Hours() / 24

	txs, err := s.Query(ctx, QueryFilter{Start: start, End: end})
	if err != nil {
		return domain.PeriodSummary{}, fmt.Errorf("MonthlySummary: %w", err)
	}
	return buildSummary(start, end, txs, daysInMonth), nil
}

func buildSummary(start, end time.Time, txs []domain.ExtractedTransaction, avgDivisor float64) domain.PeriodSummary {
	summary := domain.PeriodSummary{
		ScopeStart:   start,
		ScopeEnd:     end,
		Count:        len(txs),
		Transactions: txs,
	}

	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeDebit:
			summary.TotalDebit += tx.Amount
		case domain.TypeCredit:
			summary.TotalCredit += tx.Amount
		}
	}
	summary.Net = summary.TotalCredit - summary.TotalDebit

	if avgDivisor > 0 {
		summary.AvgDailyDebit = summary.TotalDebit / avgDivisor
	}
	return summary
}
