package repository

import (
	"context"
	"errors"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
)

// ErrLockTimeout is returned when the per-document lock cannot be acquired
// within the configured timeout. Fatal for that import attempt.
var ErrLockTimeout = errors.New("timed out waiting for document lock")

// ColumnResolver resolves a document header to an importable column,
// creating a temporary column when no alias matches. The exclude set holds
// column ids already allocated within the current page.
type ColumnResolver interface {
	ResolveOrCreate(ctx context.Context, header string, exclude []uuid.UUID) (domain.ImportableColumn, bool, error)
}

// RowBuilder materializes the replacement row set for a document. It runs
// inside the import transaction so that column auto-creation and row
// insertion commit or roll back together.
type RowBuilder func(ctx context.Context, resolver ColumnResolver) ([]domain.ImportedRow, error)

// ImportStore persists import results under the per-document lock. The full
// row set (or schedule blob) for a document is replaced atomically; readers
// never observe a mix of two import generations.
type ImportStore interface {
	ReplaceQuoteFileRows(ctx context.Context, quoteFileID uuid.UUID, build RowBuilder) ([]domain.ImportedRow, error)
	ReplaceScheduleData(ctx context.Context, quoteFileID uuid.UUID, entries []domain.ScheduleEntry) error
}

// ColumnRepository is the single entry point for importable column mutations.
// Both the ingestion path and the webhook path go through it so alias
// uniqueness and system-flag invariants hold regardless of entry path.
type ColumnRepository interface {
	ColumnResolver
	GetByRemoteReference(ctx context.Context, ref uuid.UUID) (domain.ImportableColumn, error)
	ExistsByRemoteReference(ctx context.Context, ref uuid.UUID) (bool, error)
	CreateFromRemote(ctx context.Context, column domain.ImportableColumn) (domain.ImportableColumn, error)
	UpdateFromRemote(ctx context.Context, column domain.ImportableColumn) (domain.ImportableColumn, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuoteFileRepository tracks uploaded documents and their import results.
type QuoteFileRepository interface {
	Create(ctx context.Context, file domain.QuoteFile) (domain.QuoteFile, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.QuoteFile, error)
	SetImportedPage(ctx context.Context, id uuid.UUID, page int) error
}
