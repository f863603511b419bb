// Package audit is a thin facade over store.AuditStore: import-run history,
// raw event-stream filtering, and rolling statistics for the operations
// dashboard. Grounded on the teacher's audit-trail query layer sitting atop
// its append-only attestation log — a read-side service with no mutation
// logic of its own. Writers call the store directly rather than through
// this package: the import engine records each run with RecordImport and
// the help-chat analytics tracker records events with RecordEvent.
// Schedule/WBS changes and authz role changes are not written to the log.
package audit

import (
	"context"
	"sort"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// Service exposes read access to the audit log. Permission gating for who
// may call it happens at the HTTP transport layer, consistent with every
// other service package in this tree.
type Service struct {
	audit store.AuditStore
}

// New constructs a Service.
func New(audit store.AuditStore) *Service {
	return &Service{audit: audit}
}

// Statistics summarizes import activity over the last `days`.
func (s *Service) Statistics(ctx context.Context, days int) (store.AuditStatistics, error) {
	since := windowStart(days)
	return s.audit.Statistics(ctx, since)
}

// Imports lists every import run finished in the last `days`, most recent
// first.
func (s *Service) Imports(ctx context.Context, days int) ([]domain.ImportAuditLog, error) {
	since := windowStart(days)
	logs, err := s.audit.ListImports(ctx, since)
	if err != nil {
		return nil, err
	}
	sortImportsDesc(logs)
	return logs, nil
}

// Events lists every recorded event of eventType (all types when empty)
// over the last `days`, most recent first.
func (s *Service) Events(ctx context.Context, days int, eventType string) ([]store.AuditEvent, error) {
	since := windowStart(days)
	events, err := s.audit.ListEvents(ctx, since, eventType)
	if err != nil {
		return nil, err
	}
	sortEventsDesc(events)
	return events, nil
}

func windowStart(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return time.Now().AddDate(0, 0, -days)
}

func sortImportsDesc(logs []domain.ImportAuditLog) {
	sort.Slice(logs, func(i, j int) bool { return logs[i].FinishedAt.After(logs[j].FinishedAt) })
}

func sortEventsDesc(events []store.AuditEvent) {
	sort.Slice(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
}
