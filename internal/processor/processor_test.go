package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"

	"github.com/google/uuid"
)

type stubProcessor struct {
	id     uuid.UUID
	err    error
	called int
}

func (p *stubProcessor) ID() uuid.UUID { return p.id }

func (p *stubProcessor) Process(context.Context, domain.QuoteFile) error {
	p.called++
	return p.err
}

type stubExtractor struct {
	resp *extraction.Response
	err  error
}

func (e *stubExtractor) Process(context.Context, domain.QuoteFile) (*extraction.Response, error) {
	return e.resp, e.err
}

type stubImporter struct {
	priceCount    int
	scheduleCount int
	err           error
}

func (i *stubImporter) ImportPriceList(context.Context, domain.QuoteFile, *extraction.Response) (int, error) {
	return i.priceCount, i.err
}

func (i *stubImporter) ImportSchedule(context.Context, domain.QuoteFile, *extraction.Response) (int, error) {
	return i.scheduleCount, i.err
}

func TestWithFallbackOnlyOnNoData(t *testing.T) {
	file := domain.NewQuoteFile("/tmp/list.csv", "list.csv", domain.FileKindSpreadsheet, "", "")

	primary := &stubProcessor{id: uuid.New(), err: ErrNoDataFound}
	fallback := &stubProcessor{id: uuid.New()}
	if err := WithFallback(primary, fallback).Process(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.called != 1 {
		t.Errorf("expected fallback to run once, ran %d times", fallback.called)
	}

	hardErr := errors.New("database unavailable")
	primary = &stubProcessor{id: uuid.New(), err: hardErr}
	fallback = &stubProcessor{id: uuid.New()}
	if err := WithFallback(primary, fallback).Process(context.Background(), file); !errors.Is(err, hardErr) {
		t.Fatalf("expected the hard error to propagate, got %v", err)
	}
	if fallback.called != 0 {
		t.Errorf("fallback must not run on hard errors")
	}

	primary = &stubProcessor{id: uuid.New()}
	fallback = &stubProcessor{id: uuid.New()}
	if err := WithFallback(primary, fallback).Process(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.called != 0 {
		t.Errorf("fallback must not run on success")
	}
}

func TestPriceListProcessorEmptyImportIsNoData(t *testing.T) {
	file := domain.NewQuoteFile("/tmp/list.pdf", "list.pdf", domain.FileKindPDF, "", "")
	p := NewPriceListProcessor(PDFPriceListProcessorID, &stubExtractor{resp: &extraction.Response{}}, &stubImporter{priceCount: 0})

	if err := p.Process(context.Background(), file); !errors.Is(err, ErrNoDataFound) {
		t.Fatalf("expected ErrNoDataFound, got %v", err)
	}
}

func TestScheduleProcessorReportsImportedEntries(t *testing.T) {
	file := domain.NewQuoteFile("/tmp/schedule.pdf", "schedule.pdf", domain.FileKindSchedule, "", "")
	p := NewScheduleProcessor(PaymentScheduleProcessorID, &stubExtractor{resp: &extraction.Response{}}, &stubImporter{scheduleCount: 3})

	if err := p.Process(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatcherResolution(t *testing.T) {
	defaultProc := &stubProcessor{id: uuid.New()}
	pdf := &stubProcessor{id: uuid.New()}
	uePDF := &stubProcessor{id: uuid.New()}

	d := NewDispatcher(defaultProc)
	d.Register("", domain.FileKindPDF, "", pdf)
	d.Register("UE", domain.FileKindPDF, "", uePDF)

	if got := d.Resolve("UE", domain.FileKindPDF, ""); got.ID() != uePDF.ID() {
		t.Errorf("expected vendor-specific processor for UE")
	}
	if got := d.Resolve("HPE", domain.FileKindPDF, ""); got.ID() != pdf.ID() {
		t.Errorf("expected kind-level processor for unregistered vendor")
	}
	if got := d.Resolve("", domain.FileKindWord, ""); got.ID() != defaultProc.ID() {
		t.Errorf("expected default processor for unregistered kind")
	}
}
