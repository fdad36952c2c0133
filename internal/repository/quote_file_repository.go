package repository

import (
	"context"
	"fmt"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type quoteFileRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteFileRepository wires a repository backed by pgxpool.
func NewQuoteFileRepository(pool *pgxpool.Pool) QuoteFileRepository {
	return &quoteFileRepository{pool: pool}
}

func (r *quoteFileRepository) Create(ctx context.Context, file domain.QuoteFile) (domain.QuoteFile, error) {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO quote_files (id, original_file_path, original_file_name, file_kind, vendor, source, first_page, last_page, page, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		file.ID,
		file.OriginalFilePath,
		file.OriginalFileName,
		file.FileKind,
		file.Vendor,
		file.Source,
		file.FirstPage,
		file.LastPage,
		file.Page,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return domain.QuoteFile{}, fmt.Errorf("failed to create quote file: %w", err)
	}
	return file, nil
}

func (r *quoteFileRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.QuoteFile, error) {
	var file domain.QuoteFile
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, original_file_path, original_file_name, file_kind, vendor, source, first_page, last_page, page, imported_page, handled_at, created_at, updated_at
		 FROM quote_files WHERE id = $1`,
		id,
	).Scan(
		&file.ID,
		&file.OriginalFilePath,
		&file.OriginalFileName,
		&file.FileKind,
		&file.Vendor,
		&file.Source,
		&file.FirstPage,
		&file.LastPage,
		&file.Page,
		&file.ImportedPage,
		&file.HandledAt,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return domain.QuoteFile{}, fmt.Errorf("failed to get quote file: %w", err)
	}
	return file, nil
}

func (r *quoteFileRepository) SetImportedPage(ctx context.Context, id uuid.UUID, page int) error {
	if _, err := r.pool.Exec(
		ctx,
		`UPDATE quote_files SET imported_page = $2, updated_at = now() WHERE id = $1`,
		id,
		page,
	); err != nil {
		return fmt.Errorf("failed to set imported page: %w", err)
	}
	return nil
}
