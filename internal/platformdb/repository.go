package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// Repository is a PostgREST-backed implementation of store.EmbeddingStore
// and store.AIOperationStore, an alternate to store/memory for deployments
// that persist the AI subsystem's embeddings and operation log in the
// platform's Postgres/pgvector database rather than in-process.
type Repository struct {
	client *Client
}

var (
	_ store.EmbeddingStore   = (*Repository)(nil)
	_ store.AIOperationStore = (*Repository)(nil)
)

// NewRepository creates a new repository over client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// embeddingRow is the wire shape of one row in the "embeddings" table.
type embeddingRow struct {
	ContentType string                 `json:"content_type"`
	ContentID   string                 `json:"content_id"`
	ContentText string                 `json:"content_text"`
	Embedding   []float32              `json:"embedding"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Upsert stores or replaces an embedding, keyed by (content_type, content_id).
func (r *Repository) Upsert(ctx context.Context, e domain.Embedding) error {
	if e.ContentType == "" || e.ContentID == "" {
		return apperr.ValidationMessage("content_type and content_id are required")
	}
	row := embeddingRow{
		ContentType: e.ContentType,
		ContentID:   e.ContentID,
		ContentText: e.ContentText,
		Embedding:   e.Vector,
		Metadata:    e.Metadata,
	}
	_, err := r.client.Upsert(ctx, "embeddings", row, "content_type,content_id")
	if err != nil {
		return apperr.DependencyUnavailable("platform_db", fmt.Errorf("upsert embedding: %w", err))
	}
	return nil
}

// Delete removes the embedding for (contentType, contentID).
func (r *Repository) Delete(ctx context.Context, contentType, contentID string) error {
	query := fmt.Sprintf("content_type=eq.%s&content_id=eq.%s", url.QueryEscape(contentType), url.QueryEscape(contentID))
	if _, err := r.client.Delete(ctx, "embeddings", query); err != nil {
		return apperr.DependencyUnavailable("platform_db", fmt.Errorf("delete embedding: %w", err))
	}
	return nil
}

// similarityMatchRow is one row returned by the vector_similarity_search RPC.
type similarityMatchRow struct {
	ContentType     string                 `json:"content_type"`
	ContentID       string                 `json:"content_id"`
	ContentText     string                 `json:"content_text"`
	Metadata        map[string]interface{} `json:"metadata"`
	SimilarityScore float64                `json:"similarity_score"`
}

// SearchSimilar ranks embeddings by cosine similarity to queryVector using
// the platform's vector_similarity_search stored procedure (pgvector's `<=>`
// cosine-distance operator under the hood, exposed as a PostgREST RPC call
// since the Go client has no direct SQL access).
func (r *Repository) SearchSimilar(ctx context.Context, queryVector []float32, contentTypes []string, limit int) ([]store.EmbeddingMatch, error) {
	if limit <= 0 {
		limit = 5
	}
	payload := map[string]interface{}{
		"query_embedding":  queryVector,
		"content_types":    contentTypes,
		"similarity_limit": limit,
	}
	data, err := r.client.Insert(ctx, "rpc/vector_similarity_search", payload)
	if err != nil {
		return nil, apperr.DependencyUnavailable("platform_db", fmt.Errorf("vector_similarity_search: %w", err))
	}

	var rows []similarityMatchRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, apperr.DependencyUnavailable("platform_db", fmt.Errorf("unmarshal similarity results: %w", err))
	}

	matches := make([]store.EmbeddingMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, store.EmbeddingMatch{
			ContentType: row.ContentType,
			ContentID:   row.ContentID,
			ContentText: row.ContentText,
			Metadata:    row.Metadata,
			Similarity:  row.SimilarityScore,
		})
	}
	return matches, nil
}

// aiOperationRow is the wire shape of one row in the "ai_operations" table.
type aiOperationRow struct {
	OperationID   string                 `json:"operation_id"`
	ModelID       string                 `json:"model_id"`
	OperationType string                 `json:"operation_type"`
	UserID        string                 `json:"user_id"`
	Inputs        map[string]interface{} `json:"inputs,omitempty"`
	Outputs       map[string]interface{} `json:"outputs,omitempty"`
	Confidence    float64                `json:"confidence"`
	ResponseMs    int64                  `json:"response_time_ms"`
	PromptTokens  int                    `json:"prompt_tokens"`
	OutputTokens  int                    `json:"output_tokens"`
	Success       bool                   `json:"success"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// LogOperation appends one AI operation record.
func (r *Repository) LogOperation(ctx context.Context, rec domain.AIOperationRecord) error {
	if rec.OperationID == "" {
		return apperr.ValidationMessage("operation_id is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	row := aiOperationRow{
		OperationID:   rec.OperationID,
		ModelID:       rec.ModelID,
		OperationType: rec.OperationType,
		UserID:        rec.UserID,
		Inputs:        rec.Inputs,
		Outputs:       rec.Outputs,
		Confidence:    rec.Confidence,
		ResponseMs:    rec.ResponseTime.Milliseconds(),
		PromptTokens:  rec.PromptTokens,
		OutputTokens:  rec.OutputTokens,
		Success:       rec.Success,
		ErrorMessage:  rec.ErrorMessage,
		Timestamp:     rec.Timestamp,
		Metadata:      rec.Metadata,
	}
	if _, err := r.client.Insert(ctx, "ai_operations", row); err != nil {
		return apperr.DependencyUnavailable("platform_db", fmt.Errorf("log operation: %w", err))
	}
	return nil
}

// feedbackRow is the wire shape of one row in the "ai_feedback" table.
type feedbackRow struct {
	OperationID  string    `json:"operation_id"`
	UserID       string    `json:"user_id"`
	Rating       int       `json:"rating"`
	FeedbackType string    `json:"feedback_type"`
	Text         string    `json:"text,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// LogFeedback records one piece of user feedback on an AI operation.
func (r *Repository) LogFeedback(ctx context.Context, fb domain.Feedback) error {
	if fb.OperationID == "" {
		return apperr.ValidationMessage("operation_id is required")
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}
	row := feedbackRow{
		OperationID:  fb.OperationID,
		UserID:       fb.UserID,
		Rating:       fb.Rating,
		FeedbackType: fb.FeedbackType,
		Text:         fb.Text,
		Timestamp:    fb.Timestamp,
	}
	if _, err := r.client.Insert(ctx, "ai_feedback", row); err != nil {
		return apperr.DependencyUnavailable("platform_db", fmt.Errorf("log feedback: %w", err))
	}
	return nil
}

// Summary aggregates ai_operations rows since the given time via the
// operation_summary stored procedure (a server-side aggregate avoids
// pulling every row across the wire for what is otherwise a GROUP BY).
func (r *Repository) Summary(ctx context.Context, since time.Time, operationType string) (store.AIOperationSummary, error) {
	payload := map[string]interface{}{
		"since_ts":       since.Format(time.RFC3339),
		"operation_type": operationType,
	}
	data, err := r.client.Insert(ctx, "rpc/operation_summary", payload)
	if err != nil {
		return store.AIOperationSummary{}, apperr.DependencyUnavailable("platform_db", fmt.Errorf("operation_summary: %w", err))
	}

	var rows []store.AIOperationSummary
	if err := json.Unmarshal(data, &rows); err != nil {
		return store.AIOperationSummary{}, apperr.DependencyUnavailable("platform_db", fmt.Errorf("unmarshal operation summary: %w", err))
	}
	if len(rows) == 0 {
		return store.AIOperationSummary{}, nil
	}
	return rows[0], nil
}

// HealthCheck verifies database connectivity by issuing a lightweight query.
func (r *Repository) HealthCheck(ctx context.Context) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("repository not initialized")
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.client.Select(checkCtx, "embeddings", "select=content_id&limit=1"); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
