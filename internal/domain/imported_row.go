package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ColumnValue is one resolved cell inside an imported row's columns_data map.
type ColumnValue struct {
	ImportableColumnID uuid.UUID `json:"importable_column_id"`
	Header             string    `json:"header"`
	Value              string    `json:"value"`
}

// ImportedRow is one materialized row of a processed document. The full row
// set for a document is replaced atomically on every import.
type ImportedRow struct {
	ID          uuid.UUID                 `json:"id"`
	QuoteFileID uuid.UUID                 `json:"quote_file_id"`
	Page        int                       `json:"page"`
	ColumnsData map[uuid.UUID]ColumnValue `json:"columns_data"`
	IsOnePay    bool                      `json:"is_one_pay"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// NewImportedRow stamps a fresh row for the given document page.
func NewImportedRow(quoteFileID uuid.UUID, page int, columnsData map[uuid.UUID]ColumnValue, isOnePay bool) ImportedRow {
	now := time.Now()
	return ImportedRow{
		ID:          uuid.New(),
		QuoteFileID: quoteFileID,
		Page:        page,
		ColumnsData: columnsData,
		IsOnePay:    isOnePay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ColumnsDataJSON marshals the columns_data map for JSONB storage.
func (r *ImportedRow) ColumnsDataJSON() (json.RawMessage, error) {
	if r.ColumnsData == nil {
		r.ColumnsData = make(map[uuid.UUID]ColumnValue)
	}
	return json.Marshal(r.ColumnsData)
}

// ColumnsDataFromJSON decodes a stored columns_data blob.
func ColumnsDataFromJSON(raw json.RawMessage) (map[uuid.UUID]ColumnValue, error) {
	var data map[uuid.UUID]ColumnValue
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
