package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/nikolailic0529/easyquote-ingest/internal/db"
	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the repository can
// participate in an import transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txRunner runs a function inside a transaction. Satisfied by db.Connection.
type txRunner interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

type columnRepository struct {
	q querier
	// tx opens transactions for multi-statement mutations; nil when the
	// repository is already bound to one.
	tx txRunner
}

// NewColumnRepository wires a repository backed by the connection's pool.
func NewColumnRepository(conn *db.Connection) ColumnRepository {
	return &columnRepository{q: conn.Pool, tx: conn}
}

// columnRepositoryWithTx binds the repository to an open transaction.
func columnRepositoryWithTx(tx pgx.Tx) *columnRepository {
	return &columnRepository{q: tx}
}

const columnFields = `c.id, c.name, c.header, c.data_type, c.remote_reference, c.is_system, c.is_temp, c.created_at, c.updated_at`

// ResolveOrCreate matches a header against known aliases, excluding columns
// already allocated within the current page, and creates a temporary column
// when nothing matches. The boolean reports whether a column was created.
func (r *columnRepository) ResolveOrCreate(ctx context.Context, header string, exclude []uuid.UUID) (domain.ImportableColumn, bool, error) {
	alias := domain.NormalizeAlias(header)
	if exclude == nil {
		exclude = []uuid.UUID{}
	}

	rows, err := r.q.Query(
		ctx,
		`SELECT `+columnFields+`
		 FROM importable_columns c
		 JOIN importable_column_aliases a ON a.importable_column_id = c.id
		 WHERE a.alias = $1
		   AND NOT (c.id = ANY($2))`,
		alias,
		exclude,
	)
	if err != nil {
		return domain.ImportableColumn{}, false, fmt.Errorf("failed to query column aliases: %w", err)
	}

	candidates, err := scanColumns(rows)
	if err != nil {
		return domain.ImportableColumn{}, false, err
	}

	if matched, ok := domain.PreferredColumn(candidates); ok {
		return matched, false, nil
	}

	created, err := r.createColumn(ctx, domain.NewTemporaryColumn(header))
	if err != nil {
		return domain.ImportableColumn{}, false, err
	}

	// Intentionally not routed through the audit/search pipeline; auto-created
	// temp columns would flood it.
	log.Printf("[COLUMNS] auto-created temporary column %q (%s)", created.Name, created.ID)

	return created, true, nil
}

func (r *columnRepository) GetByRemoteReference(ctx context.Context, ref uuid.UUID) (domain.ImportableColumn, error) {
	rows, err := r.q.Query(
		ctx,
		`SELECT `+columnFields+` FROM importable_columns c WHERE c.remote_reference = $1`,
		ref,
	)
	if err != nil {
		return domain.ImportableColumn{}, fmt.Errorf("failed to query column by remote reference: %w", err)
	}

	columns, err := scanColumns(rows)
	if err != nil {
		return domain.ImportableColumn{}, err
	}
	if len(columns) != 1 {
		return domain.ImportableColumn{}, fmt.Errorf("expected exactly one column bound to remote reference %s, found %d", ref, len(columns))
	}

	column := columns[0]
	aliases, err := r.loadAliases(ctx, column.ID)
	if err != nil {
		return domain.ImportableColumn{}, err
	}
	column.Aliases = aliases

	return column, nil
}

func (r *columnRepository) ExistsByRemoteReference(ctx context.Context, ref uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM importable_columns WHERE remote_reference = $1)`,
		ref,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check remote reference: %w", err)
	}
	return exists, nil
}

// CreateFromRemote inserts the column and its alias rows in one transaction
// so a partial create never leaves a column whose remote reference blocks a
// retried event.
func (r *columnRepository) CreateFromRemote(ctx context.Context, column domain.ImportableColumn) (domain.ImportableColumn, error) {
	if r.tx == nil {
		return r.createColumn(ctx, column)
	}

	err := r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := columnRepositoryWithTx(tx).createColumn(ctx, column)
		return err
	})
	if err != nil {
		return domain.ImportableColumn{}, err
	}
	return column, nil
}

// UpdateFromRemote updates the column's label and alias set from a remote
// header payload, preserving its type and system/temporary flags. The alias
// swap runs transactionally; a failed reinsert rolls the old aliases back.
func (r *columnRepository) UpdateFromRemote(ctx context.Context, column domain.ImportableColumn) (domain.ImportableColumn, error) {
	if r.tx == nil {
		return column, r.updateColumn(ctx, column)
	}

	err := r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		return columnRepositoryWithTx(tx).updateColumn(ctx, column)
	})
	if err != nil {
		return domain.ImportableColumn{}, err
	}
	return column, nil
}

func (r *columnRepository) updateColumn(ctx context.Context, column domain.ImportableColumn) error {
	_, err := r.q.Exec(
		ctx,
		`UPDATE importable_columns SET name = $2, header = $3, updated_at = now() WHERE id = $1`,
		column.ID,
		column.Name,
		column.Header,
	)
	if err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM importable_column_aliases WHERE importable_column_id = $1`, column.ID); err != nil {
		return fmt.Errorf("failed to clear column aliases: %w", err)
	}
	return r.insertAliases(ctx, column.ID, column.Aliases)
}

func (r *columnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM importable_columns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	return nil
}

func (r *columnRepository) createColumn(ctx context.Context, column domain.ImportableColumn) (domain.ImportableColumn, error) {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO importable_columns (id, name, header, data_type, remote_reference, is_system, is_temp, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		column.ID,
		column.Name,
		column.Header,
		column.DataType,
		column.RemoteReference,
		column.IsSystem,
		column.IsTemp,
		column.CreatedAt,
		column.UpdatedAt,
	)
	if err != nil {
		return domain.ImportableColumn{}, fmt.Errorf("failed to create column: %w", err)
	}

	if err := r.insertAliases(ctx, column.ID, column.Aliases); err != nil {
		return domain.ImportableColumn{}, err
	}

	return column, nil
}

func (r *columnRepository) insertAliases(ctx context.Context, columnID uuid.UUID, aliases []domain.ColumnAlias) error {
	for _, alias := range aliases {
		if _, err := r.q.Exec(
			ctx,
			`INSERT INTO importable_column_aliases (id, importable_column_id, alias) VALUES ($1, $2, $3)`,
			alias.ID,
			columnID,
			alias.Alias,
		); err != nil {
			return fmt.Errorf("failed to create column alias %q: %w", alias.Alias, err)
		}
	}
	return nil
}

func (r *columnRepository) loadAliases(ctx context.Context, columnID uuid.UUID) ([]domain.ColumnAlias, error) {
	rows, err := r.q.Query(
		ctx,
		`SELECT id, importable_column_id, alias FROM importable_column_aliases WHERE importable_column_id = $1`,
		columnID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load column aliases: %w", err)
	}
	defer rows.Close()

	var aliases []domain.ColumnAlias
	for rows.Next() {
		var alias domain.ColumnAlias
		if err := rows.Scan(&alias.ID, &alias.ImportableColumnID, &alias.Alias); err != nil {
			return nil, fmt.Errorf("failed to scan column alias: %w", err)
		}
		aliases = append(aliases, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate column aliases: %w", err)
	}

	return aliases, nil
}

func scanColumns(rows pgx.Rows) ([]domain.ImportableColumn, error) {
	defer rows.Close()

	var columns []domain.ImportableColumn
	for rows.Next() {
		var column domain.ImportableColumn
		if err := rows.Scan(
			&column.ID,
			&column.Name,
			&column.Header,
			&column.DataType,
			&column.RemoteReference,
			&column.IsSystem,
			&column.IsTemp,
			&column.CreatedAt,
			&column.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}

	return columns, nil
}
