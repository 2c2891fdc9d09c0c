package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/nmisal/mailspend/internal/domain"
	"github.com/nmisal/mailspend/internal/ledger"
)

const dateFormat = "2006-01-02"

// Config locates the ledger table.
type Config struct {
	ProjectID string
	DatasetID string
	Table     string
}

// Store implements ledger.Store on a BigQuery table. One client is shared
// across all calls; the caller owns Close.
type Store struct {
	client *bigquery.Client
	cfg    Config
}

// NewStore creates a BigQuery-backed ledger store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" || cfg.DatasetID == "" || cfg.Table == "" {
		return nil, fmt.Errorf("NewStore: project, dataset and table are all required")
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return &Store{client: client, cfg: cfg}, nil
}

// Insert implements ledger.Store.
func (s *Store) Insert(ctx context.Context, tx domain.ExtractedTransaction) error {
	table := s.client.DatasetInProject(s.cfg.ProjectID, s.cfg.DatasetID).Table(s.cfg.Table)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, []*TransactionRow{rowFromDomain(tx)}); err != nil {
		return fmt.Errorf("Insert: inserting row: %w", err)
	}
	return nil
}

// FindBySourceMessageID implements ledger.Store. Absence is (nil, nil).
func (s *Store) FindBySourceMessageID(ctx context.Context, messageID string) (*domain.ExtractedTransaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE source_message_id = @source_message_id
		LIMIT 1
	`, selectColumns, s.tableRef()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "source_message_id", Value: messageID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindBySourceMessageID: query read: %w", err)
	}

	var r TransactionRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindBySourceMessageID: iter next: %w", err)
	}

	tx := r.toDomain()
	return &tx, nil
}

// Query implements ledger.Store.
func (s *Store) Query(ctx context.Context, filter ledger.QueryFilter) ([]domain.ExtractedTransaction, error) {
	sql, params := buildQuery(s.tableRef(), filter)

	q := s.client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Query: query read: %w", err)
	}

	var txs []domain.ExtractedTransaction
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Query: iter next: %w", err)
		}
		txs = append(txs, r.toDomain())
	}
	return txs, nil
}

// Close implements ledger.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) tableRef() string {
	return fmt.Sprintf("`%s.%s.%s`", s.cfg.ProjectID, s.cfg.DatasetID, s.cfg.Table)
}

const selectColumns = `
	transaction_id,
	amount,
	type,
	card,
	to_account,
	reference_no,
	description,
	transaction_date,
	extracted_at,
	source_message_id,
	source_subject,
	source_date,
	category,
	sub_category,
	category_confidence`

func buildQuery(tableRef string, filter ledger.QueryFilter) (string, []bigquery.QueryParameter) {
	var where []string
	var params []bigquery.QueryParameter

	if !filter.Start.IsZero() {
		where = append(where, "transaction_date >= @start_date")
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: filter.Start.Format(dateFormat)})
	}
	if !filter.End.IsZero() {
		where = append(where, "transaction_date < @end_date")
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: filter.End.Format(dateFormat)})
	}
	if filter.Type != "" {
		where = append(where, "type = @type")
		params = append(params, bigquery.QueryParameter{Name: "type", Value: string(filter.Type)})
	}

	sql := "SELECT " + selectColumns + "\nFROM " + tableRef
	if len(where) > 0 {
		sql += "\nWHERE " + strings.Join(where, "\n  AND ")
	}
	sql += "\nORDER BY transaction_date DESC, extracted_at DESC"
	if filter.Limit > 0 {
		sql += fmt.Sprintf("\nLIMIT %d", filter.Limit)
	}

	return sql, params
}

// Ensure Store implements the ledger contract.
var _ ledger.Store = (*Store)(nil)
