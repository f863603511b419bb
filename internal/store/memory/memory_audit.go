package memory

import (
	"context"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// --- AuditStore ---

func (s *Store) RecordImport(_ context.Context, log domain.ImportAuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, log)
	return nil
}

func (s *Store) RecordEvent(_ context.Context, eventType, actorID string, details map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, auditEvent{eventType: eventType, actorID: actorID, details: details, at: time.Now()})
	return nil
}

func (s *Store) Statistics(_ context.Context, since time.Time) (store.AuditStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.AuditStatistics{ImportsByStatus: make(map[string]int)}
	for _, log := range s.imports {
		if log.FinishedAt.Before(since) {
			continue
		}
		stats.TotalImports++
		stats.TotalRows += log.Total
		stats.TotalErrors += log.ErrorCount
		stats.ImportsByStatus[string(log.Status)]++
	}
	return stats, nil
}

func (s *Store) ListEvents(_ context.Context, since time.Time, eventType string) ([]store.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.AuditEvent
	for _, e := range s.events {
		if e.at.Before(since) {
			continue
		}
		if eventType != "" && e.eventType != eventType {
			continue
		}
		out = append(out, store.AuditEvent{EventType: e.eventType, ActorID: e.actorID, Details: e.details, At: e.at})
	}
	return out, nil
}

func (s *Store) ListImports(_ context.Context, since time.Time) ([]domain.ImportAuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ImportAuditLog
	for _, log := range s.imports {
		if log.FinishedAt.Before(since) {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}
