package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/nmisal/mailspend/internal/domain"
)

// TransactionRow maps one committed transaction onto the ledger table schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC
	Type   string   `bigquery:"type"`   // REQUIRED, credit|debit

	Card        bigquery.NullString `bigquery:"card"`         // NULLABLE
	ToAccount   bigquery.NullString `bigquery:"to_account"`   // NULLABLE
	ReferenceNo bigquery.NullString `bigquery:"reference_no"` // NULLABLE
	Description bigquery.NullString `bigquery:"description"`  // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	ExtractedAt     time.Time  `bigquery:"extracted_at"`     // REQUIRED

	SourceMessageID string              `bigquery:"source_message_id"` // REQUIRED, dedup key
	SourceSubject   bigquery.NullString `bigquery:"source_subject"`    // NULLABLE
	SourceDate      bigquery.NullString `bigquery:"source_date"`       // NULLABLE

	Category           string              `bigquery:"category"`            // REQUIRED
	SubCategory        bigquery.NullString `bigquery:"sub_category"`        // NULLABLE
	CategoryConfidence float64             `bigquery:"category_confidence"` // REQUIRED
}

func rowFromDomain(tx domain.ExtractedTransaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:      tx.TransactionID,
		Amount:             new(big.Rat).SetFloat64(tx.Amount),
		Type:               string(tx.Type),
		Card:               toNullString(tx.Card),
		ToAccount:          toNullString(tx.Counterparty),
		ReferenceNo:        toNullString(tx.ReferenceNo),
		Description:        toNullString(tx.Description),
		TransactionDate:    civil.DateOf(tx.TransactionDate),
		ExtractedAt:        tx.ExtractedAt,
		SourceMessageID:    tx.SourceMessageID,
		SourceSubject:      toNullString(stringPtrOrNil(tx.SourceSubject)),
		SourceDate:         toNullString(stringPtrOrNil(tx.SourceDate)),
		Category:           tx.Category,
		SubCategory:        toNullString(tx.SubCategory),
		CategoryConfidence: tx.CategoryConfidence,
	}
}

func (r *TransactionRow) toDomain() domain.ExtractedTransaction {
	amount := 0.0
	if r.Amount != nil {
		amount, _ = r.Amount.Float64()
	}
	return domain.ExtractedTransaction{
		TransactionID:      r.TransactionID,
		Amount:             amount,
		Type:               domain.TransactionType(r.Type),
		Card:               fromNullString(r.Card),
		Counterparty:       fromNullString(r.ToAccount),
		ReferenceNo:        fromNullString(r.ReferenceNo),
		Description:        fromNullString(r.Description),
		TransactionDate:    r.TransactionDate.In(time.UTC),
		ExtractedAt:        r.ExtractedAt,
		SourceMessageID:    r.SourceMessageID,
		SourceSubject:      stringOrEmpty(fromNullString(r.SourceSubject)),
		SourceDate:         stringOrEmpty(fromNullString(r.SourceDate)),
		Category:           r.Category,
		SubCategory:        fromNullString(r.SubCategory),
		CategoryConfidence: r.CategoryConfidence,
	}
}

func toNullString(s *string) bigquery.NullString {
	if s == nil {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: *s, Valid: true}
}

func fromNullString(s bigquery.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.StringVal
	return &v
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
