package events

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
)

// Handler receives document engine webhook callbacks.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the event service as an HTTP endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event domain.DocumentEngineEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, fmt.Sprintf("invalid event body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.service.Handle(r.Context(), event)
	if err != nil {
		log.Printf("[EVENTS] failed to handle %s event: %v", event.EventReference, err)
		http.Error(w, "failed to handle event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
