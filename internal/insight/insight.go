package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/llm"
)

const insightTemperature = 0.7

// Synthesizer turns a period summary into a short natural-language insight.
// It never fails: any model problem degrades to a deterministic template
// sentence carrying the numeric totals.
type Synthesizer struct {
	gen llm.Generator
	log zerolog.Logger
}

// NewSynthesizer creates a synthesizer backed by the given generator.
func NewSynthesizer(gen llm.Generator, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, log: log.With().Str("component", "insight").Logger()}
}

// SummarizeDaily produces an insight for a single day's summary.
func (s *Synthesizer) SummarizeDaily(ctx context.Context, summary domain.PeriodSummary) string {
	prompt := buildDailyPrompt(summary)
	text, err := s.gen.Generate(ctx, prompt, insightTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn().Err(err).Msg("daily insight generation failed, using template")
		return fmt.Sprintf("Today you spent ₹%.2f across %d transactions.", summary.TotalDebit, summary.Count)
	}
	return strings.TrimSpace(text)
}

// SummarizeMonthly produces an insight for a calendar month's summary.
func (s *Synthesizer) SummarizeMonthly(ctx context.Context, summary domain.PeriodSummary) string {
	prompt := buildMonthlyPrompt(summary)
	text, err := s.gen.Generate(ctx, prompt, insightTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn().Err(err).Msg("monthly insight generation failed, using template")
		return fmt.Sprintf("This month you spent ₹%.2f.", summary.TotalDebit)
	}
	return strings.TrimSpace(text)
}

func buildDailyPrompt(summary domain.PeriodSummary) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Write a short, friendly spending insight ")
	b.WriteString("for the day described below. Two or three sentences, plain text, no Markdown, ")
	b.WriteString("amounts in ₹. Mention anything notable about where the money went.\n\n")
	writeSummaryFacts(&b, summary)
	return b.String()
}

func buildMonthlyPrompt(summary domain.PeriodSummary) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Write a short, friendly spending insight ")
	b.WriteString("for the month described below. Three or four sentences, plain text, no Markdown, ")
	b.WriteString("amounts in ₹. Comment on the biggest spending categories and the daily average.\n\n")
	writeSummaryFacts(&b, summary)
	if summary.AvgDailyDebit > 0 {
		fmt.Fprintf(&b, "Average daily spend: ₹%.2f\n", summary.AvgDailyDebit)
	}
	return b.String()
}

func writeSummaryFacts(b *strings.Builder, summary domain.PeriodSummary) {
	fmt.Fprintf(b, "Period: %s to %s\n", summary.ScopeStart.Format("2006-01-02"), summary.ScopeEnd.AddDate(0, 0, -1).Format("2006-01-02"))
	fmt.Fprintf(b, "Total spent: ₹%.2f\n", summary.TotalDebit)
	fmt.Fprintf(b, "Total received: ₹%.2f\n", summary.TotalCredit)
	fmt.Fprintf(b, "Transactions: %d\n", summary.Count)

	if breakdown := CategoryBreakdown(summary.Transactions); len(breakdown) > 0 {
		b.WriteString("\nSpending by category:\n")
		for _, entry := range breakdown {
			fmt.Fprintf(b, "- %s: ₹%.2f\n", entry.Category, entry.Total)
		}
	}

	if top := topDebits(summary.Transactions, 5); len(top) > 0 {
		b.WriteString("\nLargest transactions:\n")
		for _, tx := range top {
			name := "unknown"
			if tx.Counterparty != nil {
				name = *tx.Counterparty
			}
			fmt.Fprintf(b, "- ₹%.2f to %s on %s\n", tx.Amount, name, tx.TransactionDate.Format("2006-01-02"))
		}
	}
}

// CategoryEntry is one line of a debit-only category breakdown.
type CategoryEntry struct {
	Category string
	Total    float64
}

// CategoryBreakdown sums debit amounts per category, sorted by total
// descending. Credits are excluded; the breakdown describes spending.
func CategoryBreakdown(txs []domain.ExtractedTransaction) []CategoryEntry {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != domain.TypeDebit {
			continue
		}
		category := tx.Category
		if category == "" {
			category = domain.CategoryOthers
		}
		totals[category] += tx.Amount
	}

	entries := make([]CategoryEntry, 0, len(totals))
	for category, total := range totals {
		entries = append(entries, CategoryEntry{Category: category, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Category < entries[j].Category
	})
	return entries
}

func topDebits(txs []domain.ExtractedTransaction, n int) []domain.ExtractedTransaction {
	debits := make([]domain.ExtractedTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == domain.TypeDebit {
			debits = append(debits, tx)
		}
	}
	sort.Slice(debits, func(i, j int) bool { return debits[i].Amount > debits[j].Amount })
	if len(debits) > n {
		debits = debits[:n]
	}
	return debits
}
