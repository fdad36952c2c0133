package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"
)

const defaultAliasConcurrency = 4

// Config holds mapping-service connection settings.
type Config struct {
	BaseURL          string
	TokenURL         string
	ClientID         string
	ClientSecret     string
	Timeout          time.Duration
	AliasConcurrency int
}

// Client talks to the external column-mapping service under OAuth
// client-credentials authentication. Write operations are eventually
// consistent with local state; failures here never roll back local mutations.
type Client struct {
	baseURL          string
	aliasConcurrency int
	httpClient       *http.Client
}

// DocumentHeaderData is the outbound create/update payload for a remote
// document header.
type DocumentHeaderData struct {
	ID            uuid.UUID
	HeaderName    string
	HeaderAliases []string
}

type headerWirePayload struct {
	HeaderName    string   `json:"header_name"`
	HeaderAliases []string `json:"header_aliases"`
}

type aliasWirePayload struct {
	ID        uuid.UUID `json:"id"`
	AliasName string    `json:"alias_name"`
}

// NewClient builds a client whose transport obtains and caches bearer tokens.
func NewClient(ctx context.Context, cfg Config) *Client {
	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := oauthCfg.Client(ctx)
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	} else {
		httpClient.Timeout = 30 * time.Second
	}

	concurrency := cfg.AliasConcurrency
	if concurrency <= 0 {
		concurrency = defaultAliasConcurrency
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		aliasConcurrency: concurrency,
		httpClient:       httpClient,
	}
}

// GetDocumentHeaders lists all remote document headers.
func (c *Client) GetDocumentHeaders(ctx context.Context) ([]domain.DocumentHeader, error) {
	payload, _, err := c.do(ctx, http.MethodGet, "/api/document-headers", nil)
	if err != nil {
		return nil, err
	}

	var headers []domain.DocumentHeader
	if err := json.Unmarshal(payload, &headers); err != nil {
		return nil, fmt.Errorf("failed to decode document headers: %w", err)
	}
	return headers, nil
}

// GetDocumentHeader fetches one remote header by reference. A remote 404 is
// translated into ErrHeaderNotFound.
func (c *Client) GetDocumentHeader(ctx context.Context, ref uuid.UUID) (domain.DocumentHeader, error) {
	payload, status, err := c.do(ctx, http.MethodGet, "/api/document-headers/"+ref.String(), nil)
	if err != nil {
		if status == http.StatusNotFound {
			return domain.DocumentHeader{}, fmt.Errorf("%w: %s", ErrHeaderNotFound, ref)
		}
		return domain.DocumentHeader{}, err
	}

	var header domain.DocumentHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return domain.DocumentHeader{}, fmt.Errorf("failed to decode document header: %w", err)
	}
	return header, nil
}

// CreateDocumentHeader validates the payload locally, then creates the
// remote header.
func (c *Client) CreateDocumentHeader(ctx context.Context, data DocumentHeaderData) (domain.DocumentHeader, error) {
	if err := validateHeaderData(data); err != nil {
		return domain.DocumentHeader{}, err
	}

	payload, _, err := c.do(ctx, http.MethodPost, "/api/document-headers", headerWirePayload{
		HeaderName:    data.HeaderName,
		HeaderAliases: data.HeaderAliases,
	})
	if err != nil {
		return domain.DocumentHeader{}, err
	}

	var header domain.DocumentHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return domain.DocumentHeader{}, fmt.Errorf("failed to decode created header: %w", err)
	}
	return header, nil
}

// UpdateDocumentHeader validates locally and confirms the remote header
// exists before issuing the PATCH.
func (c *Client) UpdateDocumentHeader(ctx context.Context, data DocumentHeaderData) (domain.DocumentHeader, error) {
	if err := validateHeaderData(data); err != nil {
		return domain.DocumentHeader{}, err
	}

	if _, err := c.GetDocumentHeader(ctx, data.ID); err != nil {
		return domain.DocumentHeader{}, err
	}

	payload, _, err := c.do(ctx, http.MethodPatch, "/api/document-headers/"+data.ID.String(), headerWirePayload{
		HeaderName:    data.HeaderName,
		HeaderAliases: data.HeaderAliases,
	})
	if err != nil {
		return domain.DocumentHeader{}, err
	}

	var header domain.DocumentHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return domain.DocumentHeader{}, fmt.Errorf("failed to decode updated header: %w", err)
	}
	return header, nil
}

// DeleteDocumentHeader fetches the remote header first and refuses to delete
// system headers.
func (c *Client) DeleteDocumentHeader(ctx context.Context, ref uuid.UUID) error {
	header, err := c.GetDocumentHeader(ctx, ref)
	if err != nil {
		return err
	}
	if header.IsSystem {
		return fmt.Errorf("%w: %s", ErrSystemEntityConstraint, ref)
	}

	if _, _, err := c.do(ctx, http.MethodDelete, "/api/document-headers/"+ref.String(), nil); err != nil {
		return err
	}
	return nil
}

// CreateAliasesForDocumentHeader confirms the header exists, then creates one
// alias per name concurrently through a bounded pool. The first failure
// aborts the batch; the offending alias payload is logged.
func (c *Client) CreateAliasesForDocumentHeader(ctx context.Context, ref uuid.UUID, aliasNames ...string) ([]domain.DocumentHeaderAlias, error) {
	if _, err := c.GetDocumentHeader(ctx, ref); err != nil {
		return nil, err
	}

	results := make([]domain.DocumentHeaderAlias, len(aliasNames))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.aliasConcurrency)
	for i, name := range aliasNames {
		eg.Go(func() error {
			body := aliasWirePayload{ID: uuid.New(), AliasName: name}
			payload, _, err := c.do(gctx, http.MethodPost, "/api/document-headers/"+ref.String()+"/aliases", body)
			if err != nil {
				log.Printf("[MAPPING] alias creation failed for header %s, payload %+v: %v", ref, body, err)
				return err
			}

			var alias domain.DocumentHeaderAlias
			if err := json.Unmarshal(payload, &alias); err != nil {
				return fmt.Errorf("failed to decode created alias: %w", err)
			}
			results[i] = alias
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// do issues one authenticated request and returns the response body. Non-2xx
// responses become errors carrying the status code.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, 0, fmt.Errorf("%w: %v", ErrClientAuth, err)
		}
		return nil, 0, fmt.Errorf("mapping api request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read mapping api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("mapping api returned %d for %s %s: %s", resp.StatusCode, method, path, string(payload))
	}

	return payload, resp.StatusCode, nil
}

func validateHeaderData(data DocumentHeaderData) error {
	if strings.TrimSpace(data.HeaderName) == "" {
		return fmt.Errorf("%w: header_name is required", ErrValidationFailed)
	}
	for _, alias := range data.HeaderAliases {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("%w: header_aliases must not contain blank names", ErrValidationFailed)
		}
	}
	return nil
}
