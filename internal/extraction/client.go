package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
)

// ErrFileNotFound is returned when the document's file reference does not
// exist on disk.
var ErrFileNotFound = errors.New("document file not found")

const (
	maxAttempts  = 2
	retryBackoff = 2 * time.Second
)

// Config holds document-engine connection settings.
type Config struct {
	BaseURL string
	// Basic auth, used by the generic/legacy parser family only.
	Username string
	Password string
	Timeout  time.Duration
}

// Client posts a document to one document-engine endpoint and decodes the
// page/row/header response. Endpoint families share this implementation and
// differ only in path.
type Client struct {
	baseURL    string
	endpoint   string
	username   string
	password   string
	backoff    time.Duration
	httpClient *http.Client
}

func newClient(cfg Config, endpoint string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		endpoint:   endpoint,
		username:   cfg.Username,
		password:   cfg.Password,
		backoff:    retryBackoff,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewGenericClient parses generic spreadsheets (basic-auth legacy family).
func NewGenericClient(cfg Config) *Client {
	return newClient(cfg, "/api/parse/xlsx")
}

// NewPDFClient parses the primary price-list PDF variant.
func NewPDFClient(cfg Config) *Client {
	c := newClient(cfg, "/api/parse/pdf")
	c.username, c.password = "", ""
	return c
}

// NewUEPDFClient parses the UE vendor price-list PDF variant.
func NewUEPDFClient(cfg Config) *Client {
	c := newClient(cfg, "/api/parse/pdf/ue")
	c.username, c.password = "", ""
	return c
}

// NewWordClient parses the price-list Word variant.
func NewWordClient(cfg Config) *Client {
	c := newClient(cfg, "/api/parse/word")
	c.username, c.password = "", ""
	return c
}

// NewScheduleClient parses payment-schedule PDFs.
func NewScheduleClient(cfg Config) *Client {
	c := newClient(cfg, "/api/parse/pdf/schedule")
	c.username, c.password = "", ""
	return c
}

// Process uploads the document and returns the extraction response. A non-2xx
// engine response is logged and reported as (nil, nil): no data, not an
// error. Transient failures are retried with a fixed backoff.
func (c *Client) Process(ctx context.Context, file domain.QuoteFile) (*Response, error) {
	content, err := os.ReadFile(file.OriginalFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, file.OriginalFilePath)
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	body, contentType, err := buildMultipartBody(file, content)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, lastErr = c.send(ctx, body, contentType)
		if lastErr == nil && resp.StatusCode < 500 {
			break
		}
		if attempt < maxAttempts {
			if resp != nil {
				resp.Body.Close()
				resp = nil
			}
			log.Printf("[EXTRACT] %s attempt %d failed, retrying: %v", c.endpoint, attempt, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}
	}
	if lastErr != nil {
		// Transient failures exhaust the retry budget and surface as "no
		// data", not as an error; the processor decides what that means.
		log.Printf("[EXTRACT] %s failed after %d attempts: %v", c.endpoint, maxAttempts, lastErr)
		return nil, nil
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document engine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[EXTRACT] %s returned %d: %s", c.endpoint, resp.StatusCode, string(payload))
		return nil, nil
	}

	var pages []Page
	if err := json.Unmarshal(payload, &pages); err != nil {
		return nil, fmt.Errorf("failed to decode document engine response: %w", err)
	}

	return &Response{Pages: pages}, nil
}

func (c *Client) send(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	return c.httpClient.Do(req)
}

func buildMultipartBody(file domain.QuoteFile, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileField, err := writer.CreateFormFile("file", file.OriginalFileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file field: %w", err)
	}
	if _, err := io.Copy(fileField, bytes.NewReader(content)); err != nil {
		return nil, "", fmt.Errorf("failed to write file field: %w", err)
	}

	pageFields := map[string]*int{
		"page":       file.Page,
		"first_page": file.FirstPage,
		"last_page":  file.LastPage,
	}
	for name, value := range pageFields {
		if value == nil {
			continue
		}
		if err := writer.WriteField(name, strconv.Itoa(*value)); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
