package ingestion

import (
	"context"
	"errors"
	"log"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
	"github.com/nikolailic0529/easyquote-ingest/internal/repository"
)

// errNoRowsMapped aborts the import transaction when mapping produced no
// rows, so a no-data response never wipes the previous import generation.
var errNoRowsMapped = errors.New("no rows mapped from response")

// ColumnSyncer pushes locally created columns to the external mapping
// service. Sync failures never roll back the local import; the two systems
// are independently recoverable.
type ColumnSyncer interface {
	PushColumn(ctx context.Context, column domain.ImportableColumn) error
}

// Service turns extraction responses into persisted import data.
type Service struct {
	store  repository.ImportStore
	files  repository.QuoteFileRepository
	syncer ColumnSyncer
}

// NewService creates a new import service. The syncer may be nil when
// outbound sync is disabled.
func NewService(store repository.ImportStore, files repository.QuoteFileRepository, syncer ColumnSyncer) *Service {
	return &Service{
		store:  store,
		files:  files,
		syncer: syncer,
	}
}

// ImportPriceList normalizes the response, maps its rows, and atomically
// replaces the document's imported rows. Returns the number of rows
// persisted; zero means the response yielded nothing usable.
func (s *Service) ImportPriceList(ctx context.Context, file domain.QuoteFile, resp *extraction.Response) (int, error) {
	if resp == nil || len(resp.Pages) == 0 {
		return 0, nil
	}

	pages := NormalizePages(resp.Pages)

	var created []domain.ImportableColumn
	rows, err := s.store.ReplaceQuoteFileRows(ctx, file.ID, func(ctx context.Context, resolver repository.ColumnResolver) ([]domain.ImportedRow, error) {
		mapped, newColumns, err := MapPages(ctx, resolver, file, pages)
		if err != nil {
			return nil, err
		}
		if len(mapped) == 0 {
			return nil, errNoRowsMapped
		}
		created = newColumns
		return mapped, nil
	})
	if errors.Is(err, errNoRowsMapped) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if len(rows) > 0 {
		lastPage := rows[len(rows)-1].Page
		if err := s.files.SetImportedPage(ctx, file.ID, lastPage); err != nil {
			log.Printf("[INGEST] failed to record imported page for %s: %v", file.ID, err)
		}
	}

	s.pushCreated(ctx, created)

	return len(rows), nil
}

// ImportSchedule maps payment rows from the response and replaces the
// document's schedule data. Returns the number of schedule entries persisted.
func (s *Service) ImportSchedule(ctx context.Context, file domain.QuoteFile, resp *extraction.Response) (int, error) {
	if resp == nil || len(resp.Pages) == 0 {
		return 0, nil
	}

	var rawRows []map[string]string
	for _, page := range resp.Pages {
		rawRows = append(rawRows, page.Rows...)
	}

	entries := MapPayments(rawRows)
	if len(entries) == 0 {
		return 0, nil
	}

	if err := s.store.ReplaceScheduleData(ctx, file.ID, entries); err != nil {
		return 0, err
	}

	return len(entries), nil
}

func (s *Service) pushCreated(ctx context.Context, columns []domain.ImportableColumn) {
	if s.syncer == nil {
		return
	}
	for _, column := range columns {
		if err := s.syncer.PushColumn(ctx, column); err != nil {
			log.Printf("[INGEST] failed to sync column %q, will be retried separately: %v", column.Name, err)
		}
	}
}
