package processor

import (
	"context"
	"fmt"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
)

// PriceListProcessor drives one extraction-engine variant and imports the
// mapped rows.
type PriceListProcessor struct {
	id        uuid.UUID
	extractor Extractor
	importer  RowImporter
}

// NewPriceListProcessor binds an extraction client variant to the importer.
func NewPriceListProcessor(id uuid.UUID, extractor Extractor, importer RowImporter) *PriceListProcessor {
	return &PriceListProcessor{
		id:        id,
		extractor: extractor,
		importer:  importer,
	}
}

func (p *PriceListProcessor) ID() uuid.UUID {
	return p.id
}

func (p *PriceListProcessor) Process(ctx context.Context, file domain.QuoteFile) error {
	resp, err := p.extractor.Process(ctx, file)
	if err != nil {
		return fmt.Errorf("extraction failed for %s: %w", file.ID, err)
	}

	count, err := p.importer.ImportPriceList(ctx, file, resp)
	if err != nil {
		return fmt.Errorf("price list import failed for %s: %w", file.ID, err)
	}
	if count == 0 {
		return ErrNoDataFound
	}

	return nil
}

// ScheduleProcessor imports payment-schedule documents.
type ScheduleProcessor struct {
	id        uuid.UUID
	extractor Extractor
	importer  RowImporter
}

// NewScheduleProcessor binds the schedule extraction client to the importer.
func NewScheduleProcessor(id uuid.UUID, extractor Extractor, importer RowImporter) *ScheduleProcessor {
	return &ScheduleProcessor{
		id:        id,
		extractor: extractor,
		importer:  importer,
	}
}

func (p *ScheduleProcessor) ID() uuid.UUID {
	return p.id
}

func (p *ScheduleProcessor) Process(ctx context.Context, file domain.QuoteFile) error {
	resp, err := p.extractor.Process(ctx, file)
	if err != nil {
		return fmt.Errorf("extraction failed for %s: %w", file.ID, err)
	}

	count, err := p.importer.ImportSchedule(ctx, file, resp)
	if err != nil {
		return fmt.Errorf("schedule import failed for %s: %w", file.ID, err)
	}
	if count == 0 {
		return ErrNoDataFound
	}

	return nil
}
