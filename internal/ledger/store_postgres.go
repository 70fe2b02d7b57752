package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eudrgate/internal/domain"
	"eudrgate/pkg/platform/sentinel"
)

// PostgresStore persists ingestion records in PostgreSQL. Records are stored
// as JSONB documents keyed by internal reference number; append order is the
// insertion sequence. The store is pure I/O; pipeline rules live in services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the ledger table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ingestion_records (
			seq BIGSERIAL PRIMARY KEY,
			internal_reference_number TEXT NOT NULL UNIQUE,
			record JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate ingestion_records: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, record domain.IngestionRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ingestion_records (internal_reference_number, record)
		VALUES ($1, $2)
	`, record.InternalReferenceNumber, raw)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append ingestion record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.IngestionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM ingestion_records ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list ingestion records: %w", err)
	}
	defer rows.Close()

	var records []domain.IngestionRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan ingestion record: %w", err)
		}
		var record domain.IngestionRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("decode ingestion record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingestion records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) GetByKey(ctx context.Context, internalReferenceNumber string) (domain.IngestionRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM ingestion_records WHERE internal_reference_number = $1
	`, internalReferenceNumber).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IngestionRecord{}, sentinel.ErrNotFound
		}
		return domain.IngestionRecord{}, fmt.Errorf("get ingestion record: %w", err)
	}
	var record domain.IngestionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.IngestionRecord{}, fmt.Errorf("decode ingestion record: %w", err)
	}
	return record, nil
}

// UpdateTraderStatement patches the three reconcilable fields under a row
// lock so concurrent reconcilers cannot interleave read-modify-write.
func (s *PostgresStore) UpdateTraderStatement(ctx context.Context, internalReferenceNumber string, patch domain.TraderStatementPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `
		SELECT record FROM ingestion_records
		WHERE internal_reference_number = $1
		FOR UPDATE
	`, internalReferenceNumber).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("lock ingestion record: %w", err)
	}

	var record domain.IngestionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("decode ingestion record: %w", err)
	}
	applyPatch(&record, patch)

	updated, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode ingestion record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE ingestion_records SET record = $2
		WHERE internal_reference_number = $1
	`, internalReferenceNumber, updated); err != nil {
		return fmt.Errorf("update ingestion record: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE ingestion_records`); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}
