package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/repository"

	"github.com/google/uuid"
)

// Handler exposes document processing as an HTTP endpoint.
type Handler struct {
	files      repository.QuoteFileRepository
	dispatcher *Dispatcher
	uploadDir  string
}

// NewHTTPHandler wraps the dispatcher with a multipart POST endpoint.
func NewHTTPHandler(files repository.QuoteFileRepository, dispatcher *Dispatcher, uploadDir string) http.Handler {
	return &Handler{
		files:      files,
		dispatcher: dispatcher,
		uploadDir:  uploadDir,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	upload, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer upload.Close()

	kind := domain.FileKind(strings.TrimSpace(r.FormValue("fileKind")))
	if kind == "" {
		http.Error(w, "fileKind is required", http.StatusBadRequest)
		return
	}

	storedPath := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(header.Filename))
	out, err := os.Create(storedPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to store file: %v", err), http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(out, upload); err != nil {
		out.Close()
		http.Error(w, fmt.Sprintf("failed to store file: %v", err), http.StatusInternalServerError)
		return
	}
	out.Close()

	file := domain.NewQuoteFile(
		storedPath,
		header.Filename,
		kind,
		strings.TrimSpace(r.FormValue("vendor")),
		strings.TrimSpace(r.FormValue("source")),
	)
	file.Page = formPage(r, "page")
	file.FirstPage = formPage(r, "firstPage")
	file.LastPage = formPage(r, "lastPage")

	file, err = h.files.Create(r.Context(), file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to register quote file: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.dispatcher.Process(r.Context(), file); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, repository.ErrLockTimeout) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]any{
			"quote_file_id": file.ID,
			"error":         err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quote_file_id": file.ID,
		"status":        "processed",
	})
}

func formPage(r *http.Request, field string) *int {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
