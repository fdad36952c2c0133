package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleEntry is one payment period produced from payment-schedule
// extraction.
type ScheduleEntry struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Price string `json:"price"`
}

// ScheduleData holds the full payment schedule for one document as a single
// blob, replaced wholesale on each import.
type ScheduleData struct {
	ID          uuid.UUID       `json:"id"`
	QuoteFileID uuid.UUID       `json:"quote_file_id"`
	Value       []ScheduleEntry `json:"value"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewScheduleData wraps mapped schedule entries for persistence.
func NewScheduleData(quoteFileID uuid.UUID, entries []ScheduleEntry) ScheduleData {
	now := time.Now()
	return ScheduleData{
		ID:          uuid.New(),
		QuoteFileID: quoteFileID,
		Value:       entries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
