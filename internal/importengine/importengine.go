// Package importengine ingests actuals and commitments in bulk: validate,
// deduplicate, anonymize, project-link, and batch-insert, with bounded
// memory and partial-import semantics. Grounded on the four-phase pipeline
// of the original actuals/commitments importer, adapted to the spec's
// row-counted error semantics (one row may produce several field errors
// but counts once toward error_count).
package importengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/anonymizer"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/projectlink"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

const (
	// BatchSize is the fixed chunk size for batch inserts.
	BatchSize = 1000
	// MaxErrorsToCollect bounds the ImportResult.Errors slice; beyond it a
	// single aggregate marker replaces further entries.
	MaxErrorsToCollect = 50
)

// Engine runs import_actuals / import_commitments against a FinancialStore,
// ProjectStore and AuditStore. One Engine is constructed per caller; its
// Anonymizer and Linker carry per-session state by design (see
// internal/anonymizer, internal/projectlink).
type Engine struct {
	financial store.FinancialStore
	audit     store.AuditStore
	linker    *projectlink.Linker
	log       *logger.Logger
}

// New constructs an Engine. defaultPortfolioID seeds the project linker
// used for auto-created projects.
func New(financial store.FinancialStore, projects store.ProjectStore, audit store.AuditStore, defaultPortfolioID string, log *logger.Logger) *Engine {
	return &Engine{
		financial: financial,
		audit:     audit,
		linker:    projectlink.New(projects, defaultPortfolioID),
		log:       log,
	}
}

// RawActual is the input row shape for import_actuals before schema
// projection; fields mirror the canonical actual record.
type RawActual struct {
	FIDocNo           string
	PostingDate       time.Time
	DocumentDate      time.Time
	Vendor            string
	VendorDescription string
	ProjectNr         string
	WBSElement        string
	Amount            string // decimal string; validated in Phase 1
	Currency          string
	DocumentType      string
	ItemText          string
	CostCenter        string
}

// RawCommitment is the input row shape for import_commitments.
type RawCommitment struct {
	PONumber          string
	POLineNr          int
	PODate            time.Time
	Vendor            string
	VendorDescription string
	ProjectNr         string
	WBSElement        string
	PONetAmount       string
	TotalAmount       string
	Currency          string
	POStatus          string
	CostCenter        string
}

type validatedActual struct {
	row int
	rec domain.Actual
}

type validatedCommitment struct {
	row int
	rec domain.Commitment
}

// ImportActuals runs the four-phase pipeline over raw actuals rows.
func (e *Engine) ImportActuals(ctx context.Context, userID string, rows []RawActual, anonymize bool) (domain.ImportResult, error) {
	importID := fmt.Sprintf("import-actuals-%d", time.Now().UnixNano())
	started := time.Now()

	collector := newErrorCollector()
	anon := anonymizer.New()

	// Phase 1: validate (+ optional anonymize)
	var validated []validatedActual
	for idx, raw := range rows {
		rowNum := idx + 1
		if anonymize {
			raw = anonymizeActualRow(anon, raw)
		}
		rec, errs := validateActual(rowNum, raw)
		if len(errs) > 0 {
			collector.addRow(errs)
			continue
		}
		validated = append(validated, validatedActual{row: rowNum, rec: rec})
	}

	if len(validated) == 0 {
		return e.finish(ctx, importID, domain.ImportActuals, userID, started, len(rows), 0, 0, collector, "No valid records to import")
	}

	if err := e.linker.Preload(ctx); err != nil {
		e.log.WithField("import_id", importID).Warnf("project cache preload failed: %v", err)
	}

	// Phase 2: bulk duplicate detection
	docNos := make([]string, 0, len(validated))
	for _, v := range validated {
		docNos = append(docNos, v.rec.FIDocNo)
	}
	existing, err := e.financial.ExistingFIDocNos(ctx, docNos)
	if err != nil {
		// Fail-open: a dependency error on the dedupe check must not abort
		// the whole import; treat as "no known duplicates" and surface the
		// degraded state via logging only (§7 dependency_unavailable is
		// logged, not propagated, for a non-critical-path check).
		e.log.WithField("import_id", importID).Warnf("duplicate check unavailable: %v", err)
		existing = map[string]struct{}{}
	}

	duplicateCount := 0
	seen := make(map[string]struct{}, len(validated))
	var linked []validatedActual
	for _, v := range validated {
		if _, dup := existing[v.rec.FIDocNo]; dup {
			duplicateCount++
			continue
		}
		if _, dup := seen[v.rec.FIDocNo]; dup {
			duplicateCount++
			continue
		}
		seen[v.rec.FIDocNo] = struct{}{}
		linked = append(linked, v)
	}

	// Phase 3: project linking
	var toInsert []validatedActual
	for _, v := range linked {
		projectID, err := e.linker.GetOrCreate(ctx, v.rec.ProjectNr, v.rec.WBSElement)
		if err != nil {
			collector.addRow([]domain.ImportError{{
				Row: v.row, Field: "project_linking", Value: v.rec.ProjectNr,
				Error: fmt.Sprintf("failed to link project: %v", err),
			}})
			continue
		}
		v.rec.ID = uuid.NewString()
		v.rec.ProjectID = projectID
		toInsert = append(toInsert, v)
	}

	// Phase 4: batch insert
	successCount := e.batchInsertActuals(ctx, toInsert, collector)

	return e.finish(ctx, importID, domain.ImportActuals, userID, started, len(rows), successCount, duplicateCount, collector, "")
}

func (e *Engine) batchInsertActuals(ctx context.Context, rows []validatedActual, collector *errorCollector) int {
	success := 0
	for start := 0; start < len(rows); start += BatchSize {
		end := start + BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		batch := make([]domain.Actual, len(chunk))
		for i, v := range chunk {
			batch[i] = v.rec
		}
		if err := e.financial.InsertActualsBatch(ctx, batch); err != nil {
			for _, v := range chunk {
				collector.addRow([]domain.ImportError{{
					Row: v.row, Field: "database", Value: v.rec.FIDocNo,
					Error: fmt.Sprintf("batch insert failed: %v", err),
				}})
			}
			continue
		}
		success += len(chunk)
	}
	return success
}

// ImportCommitments runs the four-phase pipeline over raw commitments rows.
func (e *Engine) ImportCommitments(ctx context.Context, userID string, rows []RawCommitment, anonymize bool) (domain.ImportResult, error) {
	importID := fmt.Sprintf("import-commitments-%d", time.Now().UnixNano())
	started := time.Now()

	collector := newErrorCollector()
	anon := anonymizer.New()

	var validated []validatedCommitment
	for idx, raw := range rows {
		rowNum := idx + 1
		if anonymize {
			raw = anonymizeCommitmentRow(anon, raw)
		}
		rec, errs := validateCommitment(rowNum, raw)
		if len(errs) > 0 {
			collector.addRow(errs)
			continue
		}
		validated = append(validated, validatedCommitment{row: rowNum, rec: rec})
	}

	if len(validated) == 0 {
		return e.finish(ctx, importID, domain.ImportCommitments, userID, started, len(rows), 0, 0, collector, "No valid records to import")
	}

	if err := e.linker.Preload(ctx); err != nil {
		e.log.WithField("import_id", importID).Warnf("project cache preload failed: %v", err)
	}

	poNumbers := make([]string, 0, len(validated))
	for _, v := range validated {
		poNumbers = append(poNumbers, v.rec.PONumber)
	}
	existing, err := e.financial.ExistingCommitmentKeys(ctx, poNumbers)
	if err != nil {
		e.log.WithField("import_id", importID).Warnf("duplicate check unavailable: %v", err)
		existing = map[string]struct{}{}
	}

	duplicateCount := 0
	seen := make(map[string]struct{}, len(validated))
	var linked []validatedCommitment
	for _, v := range validated {
		key := fmt.Sprintf("%s|%d", v.rec.PONumber, v.rec.POLineNr)
		if _, dup := existing[key]; dup {
			duplicateCount++
			continue
		}
		if _, dup := seen[key]; dup {
			duplicateCount++
			continue
		}
		seen[key] = struct{}{}
		linked = append(linked, v)
	}

	var toInsert []validatedCommitment
	for _, v := range linked {
		projectID, err := e.linker.GetOrCreate(ctx, v.rec.ProjectNr, v.rec.WBSElement)
		if err != nil {
			collector.addRow([]domain.ImportError{{
				Row: v.row, Field: "project_linking", Value: v.rec.ProjectNr,
				Error: fmt.Sprintf("failed to link project: %v", err),
			}})
			continue
		}
		v.rec.ID = uuid.NewString()
		v.rec.ProjectID = projectID
		toInsert = append(toInsert, v)
	}

	successCount := e.batchInsertCommitments(ctx, toInsert, collector)

	return e.finish(ctx, importID, domain.ImportCommitments, userID, started, len(rows), successCount, duplicateCount, collector, "")
}

func (e *Engine) batchInsertCommitments(ctx context.Context, rows []validatedCommitment, collector *errorCollector) int {
	success := 0
	for start := 0; start < len(rows); start += BatchSize {
		end := start + BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		batch := make([]domain.Commitment, len(chunk))
		for i, v := range chunk {
			batch[i] = v.rec
		}
		if err := e.financial.InsertCommitmentsBatch(ctx, batch); err != nil {
			for _, v := range chunk {
				collector.addRow([]domain.ImportError{{
					Row: v.row, Field: "database", Value: v.rec.PONumber,
					Error: fmt.Sprintf("batch insert failed: %v", err),
				}})
			}
			continue
		}
		success += len(chunk)
	}
	return success
}

// finish composes the terminal ImportResult, writes the audit entry (never
// letting an audit failure mask the outcome), and returns the result.
func (e *Engine) finish(ctx context.Context, importID string, importType domain.ImportType, userID string, started time.Time, total, successCount, duplicateCount int, collector *errorCollector, forcedMessage string) (domain.ImportResult, error) {
	collector.finalize()
	errorCount := collector.rowCount
	status := domain.ImportCompleted
	switch {
	case errorCount == 0:
		status = domain.ImportCompleted
	case successCount > 0:
		status = domain.ImportPartial
	default:
		status = domain.ImportFailed
	}

	message := forcedMessage
	if message == "" {
		message = summaryMessage(successCount, duplicateCount, errorCount)
	}

	result := domain.ImportResult{
		Success:        errorCount == 0,
		ImportID:       importID,
		Total:          total,
		SuccessCount:   successCount,
		DuplicateCount: duplicateCount,
		ErrorCount:     errorCount,
		Errors:         collector.errors,
		Message:        message,
	}

	auditLog := domain.ImportAuditLog{
		ImportID:       importID,
		UserID:         userID,
		ImportType:     importType,
		Total:          total,
		SuccessCount:   successCount,
		DuplicateCount: duplicateCount,
		ErrorCount:     errorCount,
		Status:         status,
		Errors:         collector.errors,
		StartedAt:      started,
		FinishedAt:     time.Now(),
	}
	if err := e.audit.RecordImport(ctx, auditLog); err != nil {
		// Audit failures never mask the import outcome; log and continue.
		e.log.WithField("import_id", importID).Errorf("audit write failed: %v", err)
	}

	return result, nil
}

func summaryMessage(successCount, duplicateCount, errorCount int) string {
	switch {
	case errorCount == 0 && duplicateCount == 0:
		return fmt.Sprintf("Import completed successfully: %d records imported", successCount)
	case errorCount == 0:
		return fmt.Sprintf("Import completed: %d records imported, %d duplicates skipped", successCount, duplicateCount)
	case successCount == 0:
		return fmt.Sprintf("Import failed: %d errors", errorCount)
	default:
		return fmt.Sprintf("Import completed with errors: %d records imported, %d duplicates skipped, %d errors", successCount, duplicateCount, errorCount)
	}
}

// errorCollector bounds the error list to MaxErrorsToCollect, appending a
// single aggregate marker once the cap is reached, while rowCount keeps
// counting every affected row (spec Testable Property #1).
type errorCollector struct {
	errors   []domain.ImportError
	rowCount int
	capped   bool
}

func newErrorCollector() *errorCollector {
	return &errorCollector{}
}

// addRow records one row's field errors (there may be several) but
// increments rowCount by exactly one.
func (c *errorCollector) addRow(errs []domain.ImportError) {
	if len(errs) == 0 {
		return
	}
	c.rowCount++
	if c.capped {
		return
	}
	for _, e := range errs {
		if len(c.errors) >= MaxErrorsToCollect {
			c.errors = append(c.errors, domain.ImportError{Row: 0, Field: "system"})
			c.capped = true
			return
		}
		c.errors = append(c.errors, e)
	}
}

// finalize fills in the aggregate "... and N more" marker appended when the
// cap was first hit, using the final rowCount rather than the count at the
// moment the cap was reached — rows keep being validated (and dropped)
// after capping, so the count isn't known until the pipeline is done.
func (c *errorCollector) finalize() {
	if !c.capped || len(c.errors) == 0 {
		return
	}
	last := &c.errors[len(c.errors)-1]
	last.Error = fmt.Sprintf("... and %d more errors (too many to display)", c.rowCount-MaxErrorsToCollect)
}
