package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nmisal/mailspend/internal/domain"
)

// decodeTransaction maps the model's JSON object onto a transaction,
// re-checking every rule the prompt states. Bad rows never reach the ledger.
func decodeTransaction(data map[string]interface{}) (*domain.ExtractedTransaction, error) {
	amount, err := amountField(data, "amount")
	if err != nil {
		return nil, fmt.Errorf("decodeTransaction: %w", err)
	}
	if amount < 0 {
		return nil, fmt.Errorf("decodeTransaction: negative amount %v", amount)
	}

	rawType, err := stringField(data, "transaction_type")
	if err != nil {
		return nil, fmt.Errorf("decodeTransaction: %w", err)
	}
	txType := domain.TransactionType(strings.ToLower(strings.TrimSpace(rawType)))
	if !txType.Valid() {
		return nil, fmt.Errorf("decodeTransaction: invalid transaction_type %q", rawType)
	}

	rawDate, err := stringField(data, "date")
	if err != nil {
		return nil, fmt.Errorf("decodeTransaction: %w", err)
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("decodeTransaction: %w", err)
	}

	return &domain.ExtractedTransaction{
		Amount:          amount,
		Type:            txType,
		Card:            optionalStringField(data, "card"),
		Counterparty:    optionalStringField(data, "to"),
		ReferenceNo:     optionalStringField(data, "transaction_reference_number"),
		Description:     optionalStringField(data, "description"),
		TransactionDate: date,
	}, nil
}

// parseDate accepts the canonical YYYY-MM-DD and, as a repair path, the
// DD-MM-YY form banks put in alert bodies. Go's "06" layout already maps
// two-digit years into 20xx.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("02-01-06", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parseDate: unparseable date %q", raw)
}

func stringField(data map[string]interface{}, key string) (string, error) {
	value, exists := data[key]
	if !exists || value == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}

// optionalStringField returns nil for absent, null, non-string or blank
// values. Absent and null carry the same meaning: the alert did not state it.
func optionalStringField(data map[string]interface{}, key string) *string {
	value, exists := data[key]
	if !exists || value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// amountField accepts a JSON number or, as a repair path, a string amount
// with currency symbols or separators the model failed to strip.
func amountField(data map[string]interface{}, key string) (float64, error) {
	value, exists := data[key]
	if !exists || value == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}

	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		cleaned := stripCurrency(v)
		if cleaned == "" {
			return 0, fmt.Errorf("field %q has no numeric content: %q", key, v)
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not numeric: %q", key, v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("field %q is not a number", key)
	}
}

// stripCurrency keeps digits, one decimal point and a leading minus sign.
func stripCurrency(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
