package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// --- AuditStore --------------------------------------------------------------

func (s *Store) RecordImport(ctx context.Context, log domain.ImportAuditLog) error {
	errorsJSON, err := json.Marshal(log.Errors)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_audit_logs
			(import_id, user_id, import_type, total, success_count, duplicate_count, error_count, status, errors, started_at, finished_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, log.ImportID, log.UserID, log.ImportType, log.Total, log.SuccessCount, log.DuplicateCount, log.ErrorCount, log.Status, errorsJSON, log.StartedAt, log.FinishedAt)
	return err
}

func (s *Store) RecordEvent(ctx context.Context, eventType, actorID string, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (event_type, actor_id, details, at)
		VALUES ($1, $2, $3, $4)
	`, eventType, actorID, detailsJSON, time.Now().UTC())
	return err
}

func (s *Store) Statistics(ctx context.Context, since time.Time) (store.AuditStatistics, error) {
	stats := store.AuditStatistics{ImportsByStatus: make(map[string]int)}

	row := s.db.QueryRowContext(ctx, `
		SELECT count(*), coalesce(sum(total), 0), coalesce(sum(error_count), 0)
		FROM import_audit_logs WHERE finished_at >= $1
	`, since)
	if err := row.Scan(&stats.TotalImports, &stats.TotalRows, &stats.TotalErrors); err != nil {
		return store.AuditStatistics{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, count(*) FROM import_audit_logs WHERE finished_at >= $1 GROUP BY status
	`, since)
	if err != nil {
		return store.AuditStatistics{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return store.AuditStatistics{}, err
		}
		stats.ImportsByStatus[status] = count
	}
	return stats, rows.Err()
}

func (s *Store) ListEvents(ctx context.Context, since time.Time, eventType string) ([]store.AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, actor_id, details, at
		FROM audit_events
		WHERE at >= $1 AND ($2 = '' OR event_type = $2)
		ORDER BY at
	`, since, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.AuditEvent
	for rows.Next() {
		var e store.AuditEvent
		var detailsRaw []byte
		if err := rows.Scan(&e.EventType, &e.ActorID, &detailsRaw, &e.At); err != nil {
			return nil, err
		}
		if len(detailsRaw) > 0 {
			_ = json.Unmarshal(detailsRaw, &e.Details)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListImports(ctx context.Context, since time.Time) ([]domain.ImportAuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT import_id, user_id, import_type, total, success_count, duplicate_count, error_count, status, errors, started_at, finished_at
		FROM import_audit_logs
		WHERE finished_at >= $1
		ORDER BY finished_at
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ImportAuditLog
	for rows.Next() {
		log, err := scanImportAuditLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

func scanImportAuditLog(scanner rowScanner) (domain.ImportAuditLog, error) {
	var log domain.ImportAuditLog
	var errorsRaw []byte
	err := scanner.Scan(&log.ImportID, &log.UserID, &log.ImportType, &log.Total, &log.SuccessCount, &log.DuplicateCount, &log.ErrorCount, &log.Status, &errorsRaw, &log.StartedAt, &log.FinishedAt)
	if err != nil {
		return domain.ImportAuditLog{}, err
	}
	if len(errorsRaw) > 0 {
		_ = json.Unmarshal(errorsRaw, &log.Errors)
	}
	return log, nil
}
