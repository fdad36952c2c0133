package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileKind discriminates the uploaded document shape.
type FileKind string

const (
	FileKindSpreadsheet FileKind = "spreadsheet"
	FileKindPDF         FileKind = "pdf"
	FileKindWord        FileKind = "word"
	FileKindSchedule    FileKind = "schedule"
)

// QuoteFile is an uploaded vendor document awaiting or having undergone
// extraction. The file reference is immutable; import results are stamped
// onto the record after processing.
type QuoteFile struct {
	ID               uuid.UUID  `json:"id"`
	OriginalFilePath string     `json:"original_file_path"`
	OriginalFileName string     `json:"original_file_name"`
	FileKind         FileKind   `json:"file_kind"`
	Vendor           string     `json:"vendor"`
	Source           string     `json:"source"`
	FirstPage        *int       `json:"first_page,omitempty"`
	LastPage         *int       `json:"last_page,omitempty"`
	Page             *int       `json:"page,omitempty"`
	ImportedPage     *int       `json:"imported_page,omitempty"`
	HandledAt        *time.Time `json:"handled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewQuoteFile registers an uploaded document.
func NewQuoteFile(filePath, fileName string, kind FileKind, vendor, source string) QuoteFile {
	now := time.Now()
	return QuoteFile{
		ID:               uuid.New(),
		OriginalFilePath: filePath,
		OriginalFileName: fileName,
		FileKind:         kind,
		Vendor:           vendor,
		Source:           source,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// StartPage returns the declared first page of the document, defaulting to 1.
func (f QuoteFile) StartPage() int {
	if f.Page != nil {
		return *f.Page
	}
	if f.FirstPage != nil {
		return *f.FirstPage
	}
	return 1
}
