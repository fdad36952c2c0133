package domain

import "encoding/json"

// Event references announced by the document engine webhook.
const (
	EventHeaderCreated = "header_created"
	EventHeaderUpdated = "header_updated"
	EventHeaderDeleted = "header_deleted"
)

// DocumentEngineEvent is an inbound webhook event announcing a remote
// column-schema change. CauserReference carries the client id of the system
// that triggered the change; events caused by this system itself are echoed
// back and must be ignored.
type DocumentEngineEvent struct {
	EventReference  string          `json:"event_reference"`
	CauserReference *string         `json:"causer_reference"`
	EventPayload    json.RawMessage `json:"event_payload"`
}
