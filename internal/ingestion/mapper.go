package ingestion

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
	"github.com/nikolailic0529/easyquote-ingest/internal/repository"

	"github.com/google/uuid"
)

// onePayPattern flags rows describing a single up-front payment rather than a
// recurring schedule entry.
var onePayPattern = regexp.MustCompile(`(?i)return to|\bRTS\b`)

// MapPages materializes imported rows from normalized pages, resolving every
// unique header key of each page to an importable column. Resolution is
// greedy and order-dependent within a page: once a header claims a column,
// no other header on the same page may reuse it, even if a later header would
// have been a better match. Returns the rows plus any columns created along
// the way.
func MapPages(ctx context.Context, resolver repository.ColumnResolver, file domain.QuoteFile, pages []extraction.Page) ([]domain.ImportedRow, []domain.ImportableColumn, error) {
	var (
		rows    []domain.ImportedRow
		created []domain.ImportableColumn
	)

	pageNumber := file.StartPage()
	for _, page := range pages {
		// A page without a table still advances the page counter.
		if page.Rows == nil {
			pageNumber++
			continue
		}

		allocated := make([]uuid.UUID, 0, len(page.Header))
		resolution := make(map[string]uuid.UUID, len(page.Header))
		headerText := make(map[string]string, len(page.Header))

		for _, key := range sortedHeaderKeys(page.Header) {
			label := page.Header[key]
			if strings.TrimSpace(label) == "" {
				label = key
			}

			column, wasCreated, err := resolver.ResolveOrCreate(ctx, label, allocated)
			if err != nil {
				return nil, nil, err
			}
			if wasCreated {
				created = append(created, column)
			}

			resolution[key] = column.ID
			headerText[key] = label
			allocated = append(allocated, column.ID)
		}

		for _, raw := range page.Rows {
			merged := mergeAttributes(raw, page.Attributes)

			columnsData := make(map[uuid.UUID]domain.ColumnValue)
			for key, value := range merged {
				columnID, ok := resolution[key]
				if !ok {
					continue
				}
				columnsData[columnID] = domain.ColumnValue{
					ImportableColumnID: columnID,
					Header:             headerText[key],
					Value:              value,
				}
			}

			rows = append(rows, domain.NewImportedRow(file.ID, pageNumber, columnsData, isOnePay(merged)))
		}

		pageNumber++
	}

	return rows, created, nil
}

func mergeAttributes(row map[string]string, attributes map[string]*string) map[string]string {
	merged := make(map[string]string, len(row)+len(attributes))
	for k, v := range row {
		merged[k] = v
	}
	for k, v := range attributes {
		if v != nil {
			merged[k] = *v
		}
	}
	return merged
}

// isOnePay matches each cell on its own; concatenating cells could splice a
// false match across value boundaries.
func isOnePay(row map[string]string) bool {
	for _, v := range row {
		if onePayPattern.MatchString(v) {
			return true
		}
	}
	return false
}

func sortedHeaderKeys(header map[string]string) []string {
	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
