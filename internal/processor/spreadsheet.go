package processor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported by
// the local parser.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// LegacySpreadsheetProcessor parses CSV/XLSX documents locally instead of
// calling the document engine. It serves as the fallback when the engine
// yields no data for a spreadsheet.
type LegacySpreadsheetProcessor struct {
	importer RowImporter
}

// NewLegacySpreadsheetProcessor creates the local spreadsheet fallback.
func NewLegacySpreadsheetProcessor(importer RowImporter) *LegacySpreadsheetProcessor {
	return &LegacySpreadsheetProcessor{importer: importer}
}

func (p *LegacySpreadsheetProcessor) ID() uuid.UUID {
	return LegacySpreadsheetProcessorID
}

func (p *LegacySpreadsheetProcessor) Process(ctx context.Context, file domain.QuoteFile) error {
	payload, err := os.ReadFile(file.OriginalFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", extraction.ErrFileNotFound, file.OriginalFilePath)
		}
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	records, err := parseRecords(file.OriginalFileName, payload)
	if err != nil {
		return err
	}

	page, ok := recordsToPage(records)
	if !ok {
		return ErrNoDataFound
	}

	count, err := p.importer.ImportPriceList(ctx, file, &extraction.Response{Pages: []extraction.Page{page}})
	if err != nil {
		return fmt.Errorf("spreadsheet import failed for %s: %w", file.ID, err)
	}
	if count == 0 {
		return ErrNoDataFound
	}

	return nil
}

func parseRecords(fileName string, payload []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func parseExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

// recordsToPage turns raw spreadsheet records into a synthetic one-page
// extraction response: the first non-empty record becomes the header map,
// subsequent non-empty records become rows keyed the same way.
func recordsToPage(records [][]string) (extraction.Page, bool) {
	var headerRecord []string
	var dataRecords [][]string

	for _, record := range records {
		if isEmptyRecord(record) {
			continue
		}
		if headerRecord == nil {
			headerRecord = record
			continue
		}
		dataRecords = append(dataRecords, record)
	}

	if headerRecord == nil || len(dataRecords) == 0 {
		return extraction.Page{}, false
	}

	header := make(map[string]string, len(headerRecord))
	keys := make([]string, len(headerRecord))
	for i, label := range headerRecord {
		key := fmt.Sprintf("column_%d", i+1)
		keys[i] = key
		header[key] = strings.TrimSpace(label)
	}

	rows := make([]map[string]string, 0, len(dataRecords))
	for _, record := range dataRecords {
		row := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}

	return extraction.Page{
		Header:     header,
		Rows:       rows,
		Attributes: map[string]*string{},
	}, true
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
