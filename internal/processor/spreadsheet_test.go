package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
)

type capturingImporter struct {
	stubImporter
	resp *extraction.Response
}

func (i *capturingImporter) ImportPriceList(ctx context.Context, file domain.QuoteFile, resp *extraction.Response) (int, error) {
	i.resp = resp
	return i.stubImporter.ImportPriceList(ctx, file, resp)
}

func TestLegacySpreadsheetProcessorParsesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	csv := "Qty,Description\n5,Support\n2,Maintenance\n"
	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, []byte(csv)...), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	importer := &capturingImporter{stubImporter: stubImporter{priceCount: 2}}
	p := NewLegacySpreadsheetProcessor(importer)
	file := domain.NewQuoteFile(path, "list.csv", domain.FileKindSpreadsheet, "", "")

	if err := p.Process(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if importer.resp == nil || len(importer.resp.Pages) != 1 {
		t.Fatalf("expected a single synthetic page")
	}
	page := importer.resp.Pages[0]
	if page.Header["column_1"] != "Qty" || page.Header["column_2"] != "Description" {
		t.Errorf("unexpected header: %+v", page.Header)
	}
	if len(page.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Rows))
	}
	if page.Rows[0]["column_1"] != "5" || page.Rows[1]["column_2"] != "Maintenance" {
		t.Errorf("unexpected rows: %+v", page.Rows)
	}
}

func TestLegacySpreadsheetProcessorHeaderOnlyIsNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	if err := os.WriteFile(path, []byte("Qty,Description\n"), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	p := NewLegacySpreadsheetProcessor(&stubImporter{})
	file := domain.NewQuoteFile(path, "list.csv", domain.FileKindSpreadsheet, "", "")

	if err := p.Process(context.Background(), file); !errors.Is(err, ErrNoDataFound) {
		t.Fatalf("expected ErrNoDataFound, got %v", err)
	}
}

func TestLegacySpreadsheetProcessorUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.numbers")
	if err := os.WriteFile(path, []byte("irrelevant"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	p := NewLegacySpreadsheetProcessor(&stubImporter{})
	file := domain.NewQuoteFile(path, "list.numbers", domain.FileKindSpreadsheet, "", "")

	if err := p.Process(context.Background(), file); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRecordsToPageSkipsEmptyRecords(t *testing.T) {
	records := [][]string{
		{"", ""},
		{"Qty", "Description"},
		{},
		{"5", "Support"},
	}

	page, ok := recordsToPage(records)
	if !ok {
		t.Fatalf("expected a page")
	}
	if len(page.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(page.Rows))
	}
	if page.Rows[0]["column_1"] != "5" {
		t.Errorf("unexpected row: %+v", page.Rows[0])
	}
}

func TestRecordsToPageShortRecordPadsBlanks(t *testing.T) {
	records := [][]string{
		{"Qty", "Description"},
		{"5"},
	}

	page, ok := recordsToPage(records)
	if !ok {
		t.Fatalf("expected a page")
	}
	if page.Rows[0]["column_2"] != "" {
		t.Errorf("expected blank fill for missing cell, got %q", page.Rows[0]["column_2"])
	}
}
