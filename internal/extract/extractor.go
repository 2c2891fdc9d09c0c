package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/llm"
)

// Extractor turns one alert email's text into a structured transaction with
// a single model call. There is exactly one decode attempt per message; a
// response that cannot be repaired by fence-stripping fails the message.
type Extractor struct {
	gen llm.Generator
	now func() time.Time
}

// NewExtractor creates an extractor backed by the given generator.
func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen, now: time.Now}
}

// Extract runs the extraction prompt over text and validates the response.
// ref supplies provenance and the receipt timestamp that anchors relative
// dates. Errors wrap ErrMalformedResponse or ErrUpstreamUnavailable so
// callers can count failures by kind.
func (e *Extractor) Extract(ctx context.Context, text string, ref domain.SourceMessage) (*domain.ExtractedTransaction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("Extract: empty message text: %w", ErrMalformedResponse)
	}

	receivedAt := e.now()
	if ref.InternalDate > 0 {
		receivedAt = time.UnixMilli(ref.InternalDate)
	}

	raw, err := e.gen.Generate(ctx, buildExtractionPrompt(text, receivedAt), extractionTemperature)
	if err != nil {
		return nil, fmt.Errorf("Extract: %w: %v", ErrUpstreamUnavailable, err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(llm.ExtractJSONObject(raw)), &data); err != nil {
		return nil, fmt.Errorf("Extract: %w: %v", ErrMalformedResponse, err)
	}

	tx, err := decodeTransaction(data)
	if err != nil {
		return nil, fmt.Errorf("Extract: %w: %v", ErrMalformedResponse, err)
	}

	tx.TransactionID = uuid.New().String()
	tx.ExtractedAt = e.now()
	tx.SourceMessageID = ref.ID
	tx.SourceSubject = ref.Subject
	tx.SourceDate = ref.Date
	return tx, nil
}
