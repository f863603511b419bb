package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// --- AIOperationStore ------------------------------------------------------

func (s *Store) LogOperation(ctx context.Context, rec domain.AIOperationRecord) error {
	if rec.OperationID == "" {
		rec.OperationID = uuid.NewString()
	}
	inputsJSON, err := json.Marshal(rec.Inputs)
	if err != nil {
		return err
	}
	outputsJSON, err := json.Marshal(rec.Outputs)
	if err != nil {
		return err
	}
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ai_operations
			(operation_id, model_id, operation_type, user_id, inputs, outputs, confidence, response_time_ms, prompt_tokens, output_tokens, success, error_message, at, metadata)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, rec.OperationID, rec.ModelID, rec.OperationType, rec.UserID, inputsJSON, outputsJSON, rec.Confidence, rec.ResponseTime.Milliseconds(), rec.PromptTokens, rec.OutputTokens, rec.Success, rec.ErrorMessage, rec.Timestamp, metaJSON)
	return err
}

func (s *Store) LogFeedback(ctx context.Context, fb domain.Feedback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_feedback (operation_id, user_id, rating, feedback_type, text, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, fb.OperationID, fb.UserID, fb.Rating, fb.FeedbackType, fb.Text, fb.Timestamp)
	return err
}

func (s *Store) Summary(ctx context.Context, since time.Time, operationType string) (store.AIOperationSummary, error) {
	var summary store.AIOperationSummary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			count(*),
			coalesce(avg(CASE WHEN success THEN 1 ELSE 0 END), 0),
			coalesce(avg(response_time_ms), 0),
			coalesce(avg(confidence), 0),
			coalesce(sum(prompt_tokens + output_tokens), 0)
		FROM ai_operations
		WHERE at >= $1 AND ($2 = '' OR operation_type = $2)
	`, since, operationType)
	if err := row.Scan(&summary.Count, &summary.SuccessRate, &summary.AvgResponseMs, &summary.AvgConfidence, &summary.TotalTokens); err != nil {
		return store.AIOperationSummary{}, err
	}
	if summary.Count == 0 {
		return store.AIOperationSummary{}, nil
	}
	return summary, nil
}

func scanAIOperation(scanner rowScanner) (domain.AIOperationRecord, error) {
	var rec domain.AIOperationRecord
	var inputsRaw, outputsRaw, metaRaw []byte
	var responseMs int64
	err := scanner.Scan(&rec.OperationID, &rec.ModelID, &rec.OperationType, &rec.UserID, &inputsRaw, &outputsRaw, &rec.Confidence, &responseMs, &rec.PromptTokens, &rec.OutputTokens, &rec.Success, &rec.ErrorMessage, &rec.Timestamp, &metaRaw)
	if err != nil {
		return domain.AIOperationRecord{}, err
	}
	rec.ResponseTime = time.Duration(responseMs) * time.Millisecond
	if len(inputsRaw) > 0 {
		_ = json.Unmarshal(inputsRaw, &rec.Inputs)
	}
	if len(outputsRaw) > 0 {
		_ = json.Unmarshal(outputsRaw, &rec.Outputs)
	}
	if len(metaRaw) > 0 {
		_ = json.Unmarshal(metaRaw, &rec.Metadata)
	}
	return rec, nil
}

const aiOperationSelect = `
	SELECT operation_id, model_id, operation_type, user_id, inputs, outputs, confidence, response_time_ms, prompt_tokens, output_tokens, success, error_message, at, metadata
	FROM ai_operations`
