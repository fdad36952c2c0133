package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/nikolailic0529/easyquote-ingest/internal/db"
	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgLockNotAvailable is the SQLSTATE raised when lock_timeout expires.
const pgLockNotAvailable = "55P03"

type importStore struct {
	conn *db.Connection
}

// NewImportStore wires the transactional import persistence layer.
func NewImportStore(conn *db.Connection) ImportStore {
	return &importStore{conn: conn}
}

// ReplaceQuoteFileRows acquires the per-document lock, materializes the
// replacement rows inside the transaction (column auto-creation included),
// and swaps the stored row set in one shot.
func (s *importStore) ReplaceQuoteFileRows(ctx context.Context, quoteFileID uuid.UUID, build RowBuilder) ([]domain.ImportedRow, error) {
	var rows []domain.ImportedRow

	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if err := acquireDocumentLock(ctx, tx, quoteFileID); err != nil {
			return err
		}

		built, err := build(ctx, columnRepositoryWithTx(tx))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM imported_rows WHERE quote_file_id = $1`, quoteFileID); err != nil {
			return fmt.Errorf("failed to delete previous rows: %w", err)
		}

		if len(built) > 0 {
			_, err = tx.CopyFrom(
				ctx,
				pgx.Identifier{"imported_rows"},
				[]string{"id", "quote_file_id", "page", "columns_data", "is_one_pay", "created_at", "updated_at"},
				pgx.CopyFromSlice(len(built), func(i int) ([]any, error) {
					row := built[i]
					data, err := row.ColumnsDataJSON()
					if err != nil {
						return nil, fmt.Errorf("failed to marshal columns data: %w", err)
					}
					return []any{row.ID, row.QuoteFileID, row.Page, data, row.IsOnePay, row.CreatedAt, row.UpdatedAt}, nil
				}),
			)
			if err != nil {
				return fmt.Errorf("failed to insert imported rows: %w", err)
			}
		}

		rows = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ReplaceScheduleData swaps the schedule blob for a document and marks the
// document handled, all within one locked transaction.
func (s *importStore) ReplaceScheduleData(ctx context.Context, quoteFileID uuid.UUID, entries []domain.ScheduleEntry) error {
	return s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if err := acquireDocumentLock(ctx, tx, quoteFileID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM schedule_data WHERE quote_file_id = $1`, quoteFileID); err != nil {
			return fmt.Errorf("failed to delete previous schedule data: %w", err)
		}

		data := domain.NewScheduleData(quoteFileID, entries)
		value, err := json.Marshal(data.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal schedule data: %w", err)
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO schedule_data (id, quote_file_id, value, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			data.ID,
			data.QuoteFileID,
			value,
			data.CreatedAt,
			data.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert schedule data: %w", err)
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE quote_files SET handled_at = now(), updated_at = now() WHERE id = $1`,
			quoteFileID,
		); err != nil {
			return fmt.Errorf("failed to mark quote file handled: %w", err)
		}

		return nil
	})
}

// acquireDocumentLock takes the advisory lock scoped to the document id,
// blocking up to 30 seconds before failing with ErrLockTimeout. The lock is
// released when the transaction ends.
func acquireDocumentLock(ctx context.Context, tx pgx.Tx, quoteFileID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SET LOCAL lock_timeout = '30s'`); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, documentLockKey(quoteFileID)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return ErrLockTimeout
		}
		return fmt.Errorf("failed to acquire document lock: %w", err)
	}

	return nil
}

// documentLockKey maps a document uuid onto the bigint keyspace of Postgres
// advisory locks. A collision only serializes two unrelated imports.
func documentLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte(id.String()))
	return int64(h.Sum64())
}
