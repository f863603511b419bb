package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ABTestStore -----------------------------------------------------------
//
// OperationsForVariant and FeedbackForOperations read the same ai_operations
// / ai_feedback tables LogOperation/LogFeedback write, tagging variant
// membership via Metadata["ab_test_id"]/["ab_variant"] the way the
// in-process store does.

func (s *Store) CreateABTest(ctx context.Context, t domain.ABTest) (domain.ABTest, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ab_tests (id, model_a_id, model_b_id, operation_type, traffic_split, duration_seconds, started_at, ended_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.ModelAID, t.ModelBID, t.OperationType, t.TrafficSplit, int64(t.Duration/time.Second), t.StartedAt, t.EndedAt, t.Status)
	if err != nil {
		return domain.ABTest{}, err
	}
	return t, nil
}

func (s *Store) GetABTest(ctx context.Context, id string) (domain.ABTest, error) {
	row := s.db.QueryRowContext(ctx, abTestSelect+` WHERE id = $1`, id)
	t, err := scanABTest(row)
	if err == sql.ErrNoRows {
		return domain.ABTest{}, apperr.NotFound("ab_test", id)
	}
	return t, err
}

func (s *Store) ListActiveABTests(ctx context.Context) ([]domain.ABTest, error) {
	rows, err := s.db.QueryContext(ctx, abTestSelect+` WHERE status = $1 ORDER BY started_at DESC`, domain.ABTestActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ABTest
	for rows.Next() {
		t, err := scanABTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateABTest(ctx context.Context, t domain.ABTest) (domain.ABTest, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ab_tests SET traffic_split = $2, ended_at = $3, status = $4 WHERE id = $1
	`, t.ID, t.TrafficSplit, t.EndedAt, t.Status)
	if err != nil {
		return domain.ABTest{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ABTest{}, apperr.NotFound("ab_test", t.ID)
	}
	return t, nil
}

func (s *Store) OperationsForVariant(ctx context.Context, testID, variant string) ([]domain.AIOperationRecord, error) {
	rows, err := s.db.QueryContext(ctx, aiOperationSelect+`
		WHERE metadata->>'ab_test_id' = $1 AND metadata->>'ab_variant' = $2
	`, testID, variant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AIOperationRecord
	for rows.Next() {
		rec, err := scanAIOperation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) FeedbackForOperations(ctx context.Context, operationIDs []string) ([]domain.Feedback, error) {
	if len(operationIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT operation_id, user_id, rating, feedback_type, text, at
		FROM ai_feedback
		WHERE operation_id = ANY($1)
	`, pq.Array(operationIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.OperationID, &fb.UserID, &fb.Rating, &fb.FeedbackType, &fb.Text, &fb.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

const abTestSelect = `
	SELECT id, model_a_id, model_b_id, operation_type, traffic_split, duration_seconds, started_at, ended_at, status
	FROM ab_tests`

func scanABTest(scanner rowScanner) (domain.ABTest, error) {
	var t domain.ABTest
	var durationSeconds int64
	err := scanner.Scan(&t.ID, &t.ModelAID, &t.ModelBID, &t.OperationType, &t.TrafficSplit, &durationSeconds, &t.StartedAt, &t.EndedAt, &t.Status)
	if err != nil {
		return domain.ABTest{}, err
	}
	t.Duration = time.Duration(durationSeconds) * time.Second
	return t, nil
}
