package extraction

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestProcessDecodesPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"header":{"column_1":"Qty"},"rows":[{"column_1":"5"}],"attributes":{}}]`))
	}))
	defer server.Close()

	client := NewPDFClient(Config{BaseURL: server.URL})
	file := domain.NewQuoteFile(writeTempFile(t, "pdf-bytes"), "list.pdf", domain.FileKindPDF, "", "")

	resp, err := client.Process(context.Background(), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil || len(resp.Pages) != 1 {
		t.Fatalf("expected one page, got %+v", resp)
	}
	if resp.Pages[0].Header["column_1"] != "Qty" {
		t.Errorf("unexpected header: %+v", resp.Pages[0].Header)
	}
}

func TestProcessSendsMultipartFields(t *testing.T) {
	var gotFile, gotPage, gotFirst, gotLast string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if _, header, err := r.FormFile("file"); err == nil {
			gotFile = header.Filename
		}
		gotPage = r.FormValue("page")
		gotFirst = r.FormValue("first_page")
		gotLast = r.FormValue("last_page")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewPDFClient(Config{BaseURL: server.URL})
	file := domain.NewQuoteFile(writeTempFile(t, "pdf-bytes"), "list.pdf", domain.FileKindPDF, "", "")
	first, last := 2, 5
	file.FirstPage = &first
	file.LastPage = &last

	if _, err := client.Process(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotFile != "list.pdf" {
		t.Errorf("expected file field list.pdf, got %q", gotFile)
	}
	if gotPage != "" {
		t.Errorf("expected no page field, got %q", gotPage)
	}
	if gotFirst != "2" || gotLast != "5" {
		t.Errorf("expected first_page=2 last_page=5, got %q %q", gotFirst, gotLast)
	}
}

func TestProcessGenericClientSendsBasicAuth(t *testing.T) {
	var user, pass string
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, hasAuth = r.BasicAuth()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewGenericClient(Config{BaseURL: server.URL, Username: "svc", Password: "secret"})
	file := domain.NewQuoteFile(writeTempFile(t, "csv-bytes"), "list.csv", domain.FileKindSpreadsheet, "", "")

	if _, err := client.Process(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasAuth || user != "svc" || pass != "secret" {
		t.Errorf("expected basic auth svc/secret, got %q/%q (present=%v)", user, pass, hasAuth)
	}
}

func TestProcessNonSuccessStatusMeansNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unprocessable", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewPDFClient(Config{BaseURL: server.URL})
	file := domain.NewQuoteFile(writeTempFile(t, "pdf-bytes"), "list.pdf", domain.FileKindPDF, "", "")

	resp, err := client.Process(context.Background(), file)
	if err != nil {
		t.Fatalf("engine rejection must not be an error, got: %v", err)
	}
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}
}

func TestProcessRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"header":{},"rows":[],"attributes":{}}]`))
	}))
	defer server.Close()

	client := NewPDFClient(Config{BaseURL: server.URL})
	client.backoff = 0
	file := domain.NewQuoteFile(writeTempFile(t, "pdf-bytes"), "list.pdf", domain.FileKindPDF, "", "")

	resp, err := client.Process(context.Background(), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if resp == nil || len(resp.Pages) != 1 {
		t.Errorf("expected the retried response to be decoded")
	}
}

func TestProcessExhaustedRetriesMeansNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewPDFClient(Config{BaseURL: server.URL})
	client.backoff = 0
	file := domain.NewQuoteFile(writeTempFile(t, "pdf-bytes"), "list.pdf", domain.FileKindPDF, "", "")

	resp, err := client.Process(context.Background(), file)
	if err != nil {
		t.Fatalf("exhausted retries must not be an error, got: %v", err)
	}
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}
}

func TestProcessMissingFile(t *testing.T) {
	client := NewPDFClient(Config{BaseURL: "http://localhost:1"})
	file := domain.NewQuoteFile("/nonexistent/list.pdf", "list.pdf", domain.FileKindPDF, "", "")

	_, err := client.Process(context.Background(), file)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}
