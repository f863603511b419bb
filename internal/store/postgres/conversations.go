package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ConversationStore ------------------------------------------------------

func (s *Store) PersistConversationEntry(ctx context.Context, e domain.ConversationEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	sourcesJSON, err := json.Marshal(e.Sources)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_entries
			(id, user_id, conversation_id, query, response, sources, confidence, operation_id, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.UserID, e.ConversationID, e.Query, e.Response, sourcesJSON, e.Confidence, e.OperationID, e.CreatedAt)
	return err
}
