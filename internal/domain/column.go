package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColumnDataType enumerates the value types an importable column can carry.
type ColumnDataType string

const (
	ColumnDataTypeText   ColumnDataType = "text"
	ColumnDataTypeNumber ColumnDataType = "number"
	ColumnDataTypeDate   ColumnDataType = "date"
)

// ImportableColumn is the durable identity for a document header field.
// Columns are either created administratively (system) or implicitly during
// ingestion (temporary) when no alias matched the header text.
type ImportableColumn struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Header          string         `json:"header"`
	DataType        ColumnDataType `json:"data_type"`
	RemoteReference *uuid.UUID     `json:"remote_reference,omitempty"`
	IsSystem        bool           `json:"is_system"`
	IsTemp          bool           `json:"is_temp"`
	Aliases         []ColumnAlias  `json:"aliases,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ColumnAlias is a normalized (trimmed, lower-cased) string known to refer to
// a given importable column.
type ColumnAlias struct {
	ID                 uuid.UUID `json:"id"`
	ImportableColumnID uuid.UUID `json:"importable_column_id"`
	Alias              string    `json:"alias"`
}

// NewTemporaryColumn creates an auto-generated column for an unmatched header,
// aliased by the normalized header text.
func NewTemporaryColumn(header string) ImportableColumn {
	now := time.Now()
	column := ImportableColumn{
		ID:        uuid.New(),
		Name:      Slugify(header),
		Header:    header,
		DataType:  ColumnDataTypeText,
		IsSystem:  false,
		IsTemp:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	column.Aliases = []ColumnAlias{{
		ID:                 uuid.New(),
		ImportableColumnID: column.ID,
		Alias:              NormalizeAlias(header),
	}}
	return column
}

// NewRemoteColumn creates a column bound to a remote document header, as
// announced by a header_created webhook event.
func NewRemoteColumn(remoteRef uuid.UUID, headerName string, aliases []ColumnAlias) ImportableColumn {
	now := time.Now()
	ref := remoteRef
	column := ImportableColumn{
		ID:              uuid.New(),
		Name:            Slugify(headerName),
		Header:          headerName,
		DataType:        ColumnDataTypeText,
		RemoteReference: &ref,
		IsSystem:        false,
		IsTemp:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, alias := range aliases {
		column.Aliases = append(column.Aliases, ColumnAlias{
			ID:                 alias.ID,
			ImportableColumnID: column.ID,
			Alias:              NormalizeAlias(alias.Alias),
		})
	}
	return column
}

// NormalizeAlias trims and lower-cases header text into alias form.
func NormalizeAlias(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// PreferredColumn picks the column an alias match should resolve to when
// several columns share the alias: system columns win over non-system ones,
// non-temporary over temporary, then creation order, then id.
func PreferredColumn(columns []ImportableColumn) (ImportableColumn, bool) {
	if len(columns) == 0 {
		return ImportableColumn{}, false
	}
	best := columns[0]
	for _, candidate := range columns[1:] {
		if preferOver(candidate, best) {
			best = candidate
		}
	}
	return best, true
}

func preferOver(a, b ImportableColumn) bool {
	if a.IsSystem != b.IsSystem {
		return a.IsSystem
	}
	if a.IsTemp != b.IsTemp {
		return !a.IsTemp
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a column name from header text.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugPattern.ReplaceAllString(value, "_")
	value = strings.Trim(value, "_")
	if value == "" {
		return "column"
	}
	return value
}
