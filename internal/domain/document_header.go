package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentHeader is the external mapping service's representation of an
// importable column. Local columns and remote headers are loosely
// synchronized; the remote record carries its own id and timestamps.
type DocumentHeader struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"header_name"`
	IsSystem  bool                  `json:"is_system"`
	Aliases   []DocumentHeaderAlias `json:"header_aliases,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// DocumentHeaderAlias mirrors one alias of a remote document header.
type DocumentHeaderAlias struct {
	ID               uuid.UUID `json:"id"`
	DocumentHeaderID uuid.UUID `json:"document_header_id"`
	AliasName        string    `json:"alias_name"`
}
