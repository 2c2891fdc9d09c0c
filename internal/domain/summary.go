package domain

import (
	"time"
)

// PeriodSummary is an on-demand aggregation over a date window. It is never
// persisted; insights are synthesized from it each time they are requested.
type PeriodSummary struct {
	ScopeStart time.Time
	ScopeEnd   time.Time

	TotalDebit  float64
	TotalCredit float64
	Net         float64 // credit minus debit
	Count       int

	// AvgDailyDebit is populated for monthly windows only:
	// total debit divided by the number of days in the month,
	// whether or not every day saw spending.
	AvgDailyDebit float64

	Transactions []ExtractedTransaction
}
