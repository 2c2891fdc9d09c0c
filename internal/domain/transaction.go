package domain

import (
	"time"
)

// TransactionType is the direction of money movement.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// Valid reports whether t is one of the two accepted directions.
func (t TransactionType) Valid() bool {
	return t == TypeCredit || t == TypeDebit
}

// ExtractedTransaction is one transaction recovered from an alert email.
// This is a domain struct, not a BigQuery row; the ledger store maps it into
// the transactions table schema. Optional fields are pointers: the model is
// instructed to emit null for anything the alert does not state, and we keep
// that distinction all the way into the store.
type ExtractedTransaction struct {
	TransactionID string          // uuid assigned at extraction time
	Amount        float64         // always >= 0; direction carried by Type
	Type          TransactionType // credit or debit
	Card          *string         // masked card / account reference, or nil
	Counterparty  *string         // merchant or payee, or nil
	ReferenceNo   *string         // bank reference number, or nil
	Description   *string         // free-text remainder, or nil

	TransactionDate time.Time // date the bank reports, normalized to YYYY-MM-DD
	ExtractedAt     time.Time

	SourceMessageID string // mailbox message id this row came from
	SourceSubject   string
	SourceDate      string

	// Populated by the classifier before commit.
	Category           string
	SubCategory        *string
	CategoryConfidence float64
}

// CategoryAssignment is the classifier's verdict for one transaction.
type CategoryAssignment struct {
	Category    string
	SubCategory *string
	Confidence  float64
}
