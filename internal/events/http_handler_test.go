package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWebhookHandlerReturnsResult(t *testing.T) {
	service := newTestService(t, newStubColumns())
	handler := NewHTTPHandler(service)

	body := `{
		"event_reference": "header_created",
		"causer_reference": "other-system",
		"event_payload": {"id": "` + uuid.New().String() + `", "header_name": "Quantity"}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/document-engine/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != StatusAccepted {
		t.Errorf("expected accepted, got %s (%s)", result.Status, result.Reason)
	}
}

func TestWebhookHandlerRejectsBadBody(t *testing.T) {
	service := newTestService(t, newStubColumns())
	handler := NewHTTPHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/document-engine/events", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookHandlerMethodNotAllowed(t *testing.T) {
	service := newTestService(t, newStubColumns())
	handler := NewHTTPHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/document-engine/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
