package bigquery

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// transactionsSchema is the authoritative ledger table layout. cmd/migrate
// applies it; the row struct tags must stay in step with it.
var transactionsSchema = bigquery.Schema{
	{Name: "transaction_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "amount", Type: bigquery.NumericFieldType, Required: true},
	{Name: "type", Type: bigquery.StringFieldType, Required: true},
	{Name: "card", Type: bigquery.StringFieldType},
	{Name: "to_account", Type: bigquery.StringFieldType},
	{Name: "reference_no", Type: bigquery.StringFieldType},
	{Name: "description", Type: bigquery.StringFieldType},
	{Name: "transaction_date", Type: bigquery.DateFieldType, Required: true},
	{Name: "extracted_at", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "source_message_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "source_subject", Type: bigquery.StringFieldType},
	{Name: "source_date", Type: bigquery.StringFieldType},
	{Name: "category", Type: bigquery.StringFieldType, Required: true},
	{Name: "sub_category", Type: bigquery.StringFieldType},
	{Name: "category_confidence", Type: bigquery.FloatFieldType, Required: true},
}

// EnsureTable creates the dataset and ledger table if they do not exist.
// Safe to run repeatedly.
func EnsureTable(ctx context.Context, cfg Config) error {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("EnsureTable: bigquery client: %w", err)
	}
	defer client.Close()

	dataset := client.Dataset(cfg.DatasetID)
	if err := dataset.Create(ctx, &bigquery.DatasetMetadata{}); err != nil && !alreadyExists(err) {
		return fmt.Errorf("EnsureTable: create dataset %s: %w", cfg.DatasetID, err)
	}

	table := dataset.Table(cfg.Table)
	meta := &bigquery.TableMetadata{
		Schema: transactionsSchema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "transaction_date",
		},
	}
	if err := table.Create(ctx, meta); err != nil && !alreadyExists(err) {
		return fmt.Errorf("EnsureTable: create table %s: %w", cfg.Table, err)
	}

	return nil
}

func alreadyExists(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return apiErr.Code == http.StatusConflict
	}
	return false
}
