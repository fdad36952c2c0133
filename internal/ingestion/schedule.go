package ingestion

import (
	"log"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
)

// Required keys of a raw payment-schedule row.
const (
	scheduleFromKey  = "from_date"
	scheduleToKey    = "to_date"
	scheduleValueKey = "value"
)

// MapPayments converts raw payment-schedule rows into schedule entries. Rows
// missing any required key are logged as unprocessable and skipped; they are
// never fatal for the batch.
func MapPayments(rawRows []map[string]string) []domain.ScheduleEntry {
	entries := make([]domain.ScheduleEntry, 0, len(rawRows))
	for i, row := range rawRows {
		from, okFrom := row[scheduleFromKey]
		to, okTo := row[scheduleToKey]
		value, okValue := row[scheduleValueKey]
		if !okFrom || !okTo || !okValue {
			log.Printf("[MAPPER] skipping unprocessable schedule row %d: %v", i, row)
			continue
		}
		entries = append(entries, domain.ScheduleEntry{
			From:  from,
			To:    to,
			Price: value,
		})
	}
	return entries
}
