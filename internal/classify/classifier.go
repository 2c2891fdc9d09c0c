package classify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/llm"
)

const classificationTemperature = 0.1

// Classifier assigns one of the fixed spending categories to a transaction.
// Classification is advisory: it never blocks a commit, so every failure
// path collapses into the Others fallback instead of an error.
type Classifier struct {
	gen llm.Generator
	log zerolog.Logger
}

// NewClassifier creates a classifier backed by the given generator.
func NewClassifier(gen llm.Generator, log zerolog.Logger) *Classifier {
	return &Classifier{gen: gen, log: log.With().Str("component", "classify").Logger()}
}

// FallbackAssignment is what every failure path returns.
func FallbackAssignment() domain.CategoryAssignment {
	return domain.CategoryAssignment{
		Category:    domain.CategoryOthers,
		SubCategory: nil,
		Confidence:  0.5,
	}
}

// Classify returns a category assignment for tx. It always returns a usable
// assignment; the error-shaped outcomes are logged and folded into fallback.
func (c *Classifier) Classify(ctx context.Context, tx domain.ExtractedTransaction) domain.CategoryAssignment {
	raw, err := c.gen.Generate(ctx, buildClassificationPrompt(tx), classificationTemperature)
	if err != nil {
		c.log.Warn().Err(err).Str("transaction_id", tx.TransactionID).Msg("classification call failed, using fallback")
		return FallbackAssignment()
	}

	var decoded struct {
		Category    string   `json:"category"`
		SubCategory *string  `json:"sub_category"`
		Confidence  *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSONObject(raw)), &decoded); err != nil {
		c.log.Warn().Err(err).Str("transaction_id", tx.TransactionID).Msg("classification response undecodable, using fallback")
		return FallbackAssignment()
	}

	if !domain.ValidCategory(decoded.Category) {
		c.log.Warn().Str("category", decoded.Category).Str("transaction_id", tx.TransactionID).Msg("category outside label set, using fallback")
		return FallbackAssignment()
	}
	if decoded.Confidence == nil || *decoded.Confidence < 0 || *decoded.Confidence > 1 {
		c.log.Warn().Str("transaction_id", tx.TransactionID).Msg("confidence missing or out of range, using fallback")
		return FallbackAssignment()
	}

	sub := decoded.SubCategory
	if sub != nil && strings.TrimSpace(*sub) == "" {
		sub = nil
	}

	return domain.CategoryAssignment{
		Category:    decoded.Category,
		SubCategory: sub,
		Confidence:  *decoded.Confidence,
	}
}

func buildClassificationPrompt(tx domain.ExtractedTransaction) string {
	var b strings.Builder
	b.WriteString("You are a spending category classifier for personal bank transactions.\n\n")
	b.WriteString("Classify the transaction below into exactly one of these categories:\n")
	for _, cat := range domain.Categories {
		b.WriteString("- " + cat + "\n")
	}
	b.WriteString("\nOutput STRICT JSON only, one object with these fields:\n")
	b.WriteString("- \"category\": string, one of the categories above, spelled exactly\n")
	b.WriteString("- \"sub_category\": string or null, a short free-form refinement\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n\n")
	b.WriteString("Do NOT wrap the response in code fences.\n\n")
	b.WriteString("Transaction:\n")
	b.WriteString("- type: " + string(tx.Type) + "\n")
	if tx.Counterparty != nil {
		b.WriteString("- counterparty: " + *tx.Counterparty + "\n")
	}
	if tx.Description != nil {
		b.WriteString("- description: " + *tx.Description + "\n")
	}
	b.WriteString("- date: " + tx.TransactionDate.Format("2006-01-02") + "\n")
	return b.String()
}
