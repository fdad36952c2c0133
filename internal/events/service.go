package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
	"github.com/nikolailic0529/easyquote-ingest/internal/repository"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Status classifies the outcome of handling a webhook event.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusIgnored  Status = "ignored"
)

// Result reports how an event was handled. Ignored events carry a reason so
// the sender can diagnose silent drops.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

const headerSchemaJSON = `{
	"type": "object",
	"required": ["id", "header_name"],
	"properties": {
		"id": {"type": "string", "format": "uuid"},
		"header_name": {"type": "string", "minLength": 1},
		"is_system": {"type": "boolean"},
		"header_aliases": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "alias_name"],
				"properties": {
					"id": {"type": "string", "format": "uuid"},
					"alias_name": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

const deletedSchemaJSON = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "format": "uuid"}
	}
}`

// Service applies document engine webhook events to the local column set.
type Service struct {
	clientID      string
	columns       repository.ColumnRepository
	headerSchema  *jsonschema.Schema
	deletedSchema *jsonschema.Schema
}

// NewService builds the webhook event handler. clientID is this system's
// OAuth client id, used to recognize and drop its own echoed events.
func NewService(clientID string, columns repository.ColumnRepository) (*Service, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource("header.json", strings.NewReader(headerSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to register header schema: %w", err)
	}
	if err := compiler.AddResource("deleted.json", strings.NewReader(deletedSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to register deleted schema: %w", err)
	}

	headerSchema, err := compiler.Compile("header.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile header schema: %w", err)
	}
	deletedSchema, err := compiler.Compile("deleted.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile deleted schema: %w", err)
	}

	return &Service{
		clientID:      clientID,
		columns:       columns,
		headerSchema:  headerSchema,
		deletedSchema: deletedSchema,
	}, nil
}

// Handle processes one webhook event. Events without a causer reference, or
// caused by this system itself, are ignored so the outbound sync and the
// inbound webhook cannot chase each other in a loop; unknown event references
// are ignored too.
func (s *Service) Handle(ctx context.Context, event domain.DocumentEngineEvent) (Result, error) {
	if event.CauserReference == nil {
		return Result{Status: StatusIgnored, Reason: "event has no causer reference"}, nil
	}
	if *event.CauserReference == s.clientID {
		return Result{Status: StatusIgnored, Reason: "event caused by this client"}, nil
	}

	switch event.EventReference {
	case domain.EventHeaderCreated:
		return s.handleCreated(ctx, event)
	case domain.EventHeaderUpdated:
		return s.handleUpdated(ctx, event)
	case domain.EventHeaderDeleted:
		return s.handleDeleted(ctx, event)
	default:
		log.Printf("[EVENTS] ignoring unknown event reference %q", event.EventReference)
		return Result{Status: StatusIgnored, Reason: fmt.Sprintf("unknown event reference %q", event.EventReference)}, nil
	}
}

func (s *Service) handleCreated(ctx context.Context, event domain.DocumentEngineEvent) (Result, error) {
	payload, err := decodeHeaderPayload(s.headerSchema, event.EventPayload)
	if err != nil {
		log.Printf("[EVENTS] rejecting header_created payload: %v", err)
		return Result{Status: StatusIgnored, Reason: err.Error()}, nil
	}

	exists, err := s.columns.ExistsByRemoteReference(ctx, payload.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check remote reference %s: %w", payload.ID, err)
	}
	if exists {
		return Result{Status: StatusIgnored, Reason: fmt.Sprintf("column for remote reference %s already exists", payload.ID)}, nil
	}

	column := domain.NewRemoteColumn(payload.ID, payload.HeaderName, payload.aliases())
	if _, err := s.columns.CreateFromRemote(ctx, column); err != nil {
		return Result{}, fmt.Errorf("failed to create column for remote header %s: %w", payload.ID, err)
	}

	log.Printf("[EVENTS] created column for remote header %s (%s)", payload.ID, payload.HeaderName)
	return Result{Status: StatusAccepted}, nil
}

func (s *Service) handleUpdated(ctx context.Context, event domain.DocumentEngineEvent) (Result, error) {
	payload, err := decodeHeaderPayload(s.headerSchema, event.EventPayload)
	if err != nil {
		log.Printf("[EVENTS] rejecting header_updated payload: %v", err)
		return Result{Status: StatusIgnored, Reason: err.Error()}, nil
	}

	column, err := s.columns.GetByRemoteReference(ctx, payload.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load column for remote header %s: %w", payload.ID, err)
	}

	column.Name = domain.Slugify(payload.HeaderName)
	column.Header = payload.HeaderName
	column.Aliases = nil
	for _, alias := range payload.aliases() {
		column.Aliases = append(column.Aliases, domain.ColumnAlias{
			ID:                 alias.ID,
			ImportableColumnID: column.ID,
			Alias:              domain.NormalizeAlias(alias.Alias),
		})
	}

	if _, err := s.columns.UpdateFromRemote(ctx, column); err != nil {
		return Result{}, fmt.Errorf("failed to update column for remote header %s: %w", payload.ID, err)
	}

	log.Printf("[EVENTS] updated column for remote header %s (%s)", payload.ID, payload.HeaderName)
	return Result{Status: StatusAccepted}, nil
}

func (s *Service) handleDeleted(ctx context.Context, event domain.DocumentEngineEvent) (Result, error) {
	payload, err := decodeDeletedPayload(s.deletedSchema, event.EventPayload)
	if err != nil {
		log.Printf("[EVENTS] rejecting header_deleted payload: %v", err)
		return Result{Status: StatusIgnored, Reason: err.Error()}, nil
	}

	column, err := s.columns.GetByRemoteReference(ctx, payload.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load column for remote header %s: %w", payload.ID, err)
	}
	if column.IsSystem {
		return Result{Status: StatusIgnored, Reason: fmt.Sprintf("column %s is a system column", column.ID)}, nil
	}

	if err := s.columns.Delete(ctx, column.ID); err != nil {
		return Result{}, fmt.Errorf("failed to delete column %s: %w", column.ID, err)
	}

	log.Printf("[EVENTS] deleted column %s for remote header %s", column.ID, payload.ID)
	return Result{Status: StatusAccepted}, nil
}

type headerPayload struct {
	ID            uuid.UUID `json:"id"`
	HeaderName    string    `json:"header_name"`
	IsSystem      bool      `json:"is_system"`
	HeaderAliases []struct {
		ID        uuid.UUID `json:"id"`
		AliasName string    `json:"alias_name"`
	} `json:"header_aliases"`
}

func (p headerPayload) aliases() []domain.ColumnAlias {
	aliases := make([]domain.ColumnAlias, 0, len(p.HeaderAliases))
	for _, alias := range p.HeaderAliases {
		aliases = append(aliases, domain.ColumnAlias{ID: alias.ID, Alias: alias.AliasName})
	}
	return aliases
}

type deletedPayload struct {
	ID uuid.UUID `json:"id"`
}

func decodeHeaderPayload(schema *jsonschema.Schema, raw []byte) (headerPayload, error) {
	var payload headerPayload
	if err := validateAndDecode(schema, raw, &payload); err != nil {
		return headerPayload{}, err
	}
	return payload, nil
}

func decodeDeletedPayload(schema *jsonschema.Schema, raw []byte) (deletedPayload, error) {
	var payload deletedPayload
	if err := validateAndDecode(schema, raw, &payload); err != nil {
		return deletedPayload{}, err
	}
	return payload, nil
}

func validateAndDecode(schema *jsonschema.Schema, raw []byte, target any) error {
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("event payload is not valid json: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("event payload failed validation: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}
	return nil
}
