package processor

import (
	"context"
	"errors"
	"log"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"

	"github.com/google/uuid"
)

// ErrNoDataFound reports a successful-but-empty extraction. It is an expected
// outcome, not a system fault: dispatch uses it to trigger the fallback
// processor when one is configured.
var ErrNoDataFound = errors.New("no data found in document")

// Stable processor identities, used for diagnostics and routing.
var (
	GenericSpreadsheetProcessorID = uuid.MustParse("23f66ff2-166a-4b27-9b9a-4a045c5c89b9")
	LegacySpreadsheetProcessorID  = uuid.MustParse("2f4b3f4e-6e37-4b2d-8a4b-6f9d05f3cf36")
	PDFPriceListProcessorID       = uuid.MustParse("0b3fee77-9a5c-4b43-a8a4-84f7fbbf0371")
	UEPDFPriceListProcessorID     = uuid.MustParse("59578f3d-2b31-4baf-9f35-0e1bbab2e92a")
	WordPriceListProcessorID      = uuid.MustParse("e1c32a26-7a11-4c2c-9a46-5b5e1a30f0bd")
	PaymentScheduleProcessorID    = uuid.MustParse("2a4dba69-07e3-4f1c-ad30-3bd9a4b8ab15")
)

// Processor imports one uploaded document as a side effect, or reports
// ErrNoDataFound when extraction yields nothing usable.
type Processor interface {
	ID() uuid.UUID
	Process(ctx context.Context, file domain.QuoteFile) error
}

// Extractor is the document-engine client contract consumed by processors.
type Extractor interface {
	Process(ctx context.Context, file domain.QuoteFile) (*extraction.Response, error)
}

// RowImporter persists mapped extraction output.
type RowImporter interface {
	ImportPriceList(ctx context.Context, file domain.QuoteFile, resp *extraction.Response) (int, error)
	ImportSchedule(ctx context.Context, file domain.QuoteFile, resp *extraction.Response) (int, error)
}

type fallbackProcessor struct {
	primary  Processor
	fallback Processor
}

// WithFallback retries the fallback processor when the primary finds no data.
// Any other failure propagates unchanged.
func WithFallback(primary, fallback Processor) Processor {
	return &fallbackProcessor{primary: primary, fallback: fallback}
}

func (p *fallbackProcessor) ID() uuid.UUID {
	return p.primary.ID()
}

func (p *fallbackProcessor) Process(ctx context.Context, file domain.QuoteFile) error {
	err := p.primary.Process(ctx, file)
	if err == nil || !errors.Is(err, ErrNoDataFound) {
		return err
	}

	log.Printf("[PROCESS] processor %s found no data for %s, falling back to %s", p.primary.ID(), file.ID, p.fallback.ID())
	return p.fallback.Process(ctx, file)
}
