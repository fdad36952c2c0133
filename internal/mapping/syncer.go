package mapping

import (
	"context"
	"fmt"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"

	"github.com/google/uuid"
)

// Syncer propagates locally auto-created columns to the mapping service so
// temporary headers become visible for curation.
type Syncer struct {
	client *Client
}

// NewSyncer wraps the mapping client for outbound column propagation.
func NewSyncer(client *Client) *Syncer {
	return &Syncer{client: client}
}

// PushColumn creates a remote document header mirroring the column. The
// column's display header becomes the remote header name and the normalized
// aliases follow along.
func (s *Syncer) PushColumn(ctx context.Context, column domain.ImportableColumn) error {
	aliases := make([]string, 0, len(column.Aliases))
	for _, alias := range column.Aliases {
		aliases = append(aliases, alias.Alias)
	}

	_, err := s.client.CreateDocumentHeader(ctx, DocumentHeaderData{
		ID:            column.ID,
		HeaderName:    column.Header,
		HeaderAliases: aliases,
	})
	if err != nil {
		return fmt.Errorf("failed to push column %s to mapping service: %w", column.ID, err)
	}
	return nil
}

// PushColumnUpdate patches the remote header matching the column's remote
// reference.
func (s *Syncer) PushColumnUpdate(ctx context.Context, column domain.ImportableColumn) error {
	if column.RemoteReference == nil {
		return fmt.Errorf("column %s has no remote reference", column.ID)
	}

	aliases := make([]string, 0, len(column.Aliases))
	for _, alias := range column.Aliases {
		aliases = append(aliases, alias.Alias)
	}

	_, err := s.client.UpdateDocumentHeader(ctx, DocumentHeaderData{
		ID:            *column.RemoteReference,
		HeaderName:    column.Header,
		HeaderAliases: aliases,
	})
	if err != nil {
		return fmt.Errorf("failed to push column update for %s: %w", column.ID, err)
	}
	return nil
}

// PushColumnDeletion removes the remote header behind the reference.
func (s *Syncer) PushColumnDeletion(ctx context.Context, remoteReference uuid.UUID) error {
	if err := s.client.DeleteDocumentHeader(ctx, remoteReference); err != nil {
		return fmt.Errorf("failed to push column deletion for %s: %w", remoteReference, err)
	}
	return nil
}
