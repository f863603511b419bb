package postgres

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- FinancialStore ----------------------------------------------------------

// InsertActualsBatch and InsertCommitmentsBatch run inside a transaction so
// a partial batch failure never leaves half the rows committed — the import
// engine (C3) already filters out duplicates before calling these, so every
// row here is expected to insert cleanly.
func (s *Store) InsertActualsBatch(ctx context.Context, rows []domain.Actual) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO actuals
			(id, fi_doc_no, posting_date, document_date, vendor, project_id, project_nr, wbs_element, amount, currency, document_type, cost_center, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.FIDocNo, r.PostingDate, r.DocumentDate, r.Vendor, r.ProjectID, r.ProjectNr, r.WBSElement, r.Amount, r.Currency, r.DocumentType, r.CostCenter, r.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) InsertCommitmentsBatch(ctx context.Context, rows []domain.Commitment) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commitments
			(id, po_number, po_line_nr, po_date, vendor, vendor_description, project_id, project_nr, wbs_element, po_net_amount, total_amount, currency, po_status, cost_center, tax, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.PONumber, r.POLineNr, r.PODate, r.Vendor, r.VendorDescription, r.ProjectID, r.ProjectNr, r.WBSElement, r.PONetAmount, r.TotalAmount, r.Currency, r.POStatus, r.CostCenter, r.Tax, r.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ExistingFIDocNos(ctx context.Context, docNos []string) (map[string]struct{}, error) {
	if len(docNos) == 0 {
		return map[string]struct{}{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT fi_doc_no FROM actuals WHERE fi_doc_no = ANY($1)
	`, pq.Array(docNos))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		out[doc] = struct{}{}
	}
	return out, rows.Err()
}

func (s *Store) ExistingCommitmentKeys(ctx context.Context, poNumbers []string) (map[string]struct{}, error) {
	if len(poNumbers) == 0 {
		return map[string]struct{}{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT po_number, po_line_nr FROM commitments WHERE po_number = ANY($1)
	`, pq.Array(poNumbers))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var poNumber string
		var poLineNr int
		if err := rows.Scan(&poNumber, &poLineNr); err != nil {
			return nil, err
		}
		out[commitmentKey(poNumber, poLineNr)] = struct{}{}
	}
	return out, rows.Err()
}

func (s *Store) ActualsByProject(ctx context.Context, projectID string) ([]domain.Actual, error) {
	return s.queryActuals(ctx, actualSelect+` WHERE project_id = $1`, projectID)
}

func (s *Store) ActualsByProjectAndWBS(ctx context.Context, projectID, wbs string) ([]domain.Actual, error) {
	return s.queryActuals(ctx, actualSelect+` WHERE project_id = $1 AND wbs_element = $2`, projectID, wbs)
}

func (s *Store) CommitmentsByProject(ctx context.Context, projectID string) ([]domain.Commitment, error) {
	return s.queryCommitments(ctx, commitmentSelect+` WHERE project_id = $1`, projectID)
}

func (s *Store) CommitmentsByProjectAndWBS(ctx context.Context, projectID, wbs string) ([]domain.Commitment, error) {
	return s.queryCommitments(ctx, commitmentSelect+` WHERE project_id = $1 AND wbs_element = $2`, projectID, wbs)
}

const actualSelect = `
	SELECT id, fi_doc_no, posting_date, document_date, vendor, project_id, project_nr, wbs_element, amount, currency, document_type, cost_center, created_at
	FROM actuals`

const commitmentSelect = `
	SELECT id, po_number, po_line_nr, po_date, vendor, vendor_description, project_id, project_nr, wbs_element, po_net_amount, total_amount, currency, po_status, cost_center, tax, created_at
	FROM commitments`

func (s *Store) queryActuals(ctx context.Context, query string, args ...interface{}) ([]domain.Actual, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Actual
	for rows.Next() {
		a, err := scanActual(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) queryCommitments(ctx context.Context, query string, args ...interface{}) ([]domain.Commitment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanActual(scanner rowScanner) (domain.Actual, error) {
	var a domain.Actual
	err := scanner.Scan(&a.ID, &a.FIDocNo, &a.PostingDate, &a.DocumentDate, &a.Vendor, &a.ProjectID, &a.ProjectNr, &a.WBSElement, &a.Amount, &a.Currency, &a.DocumentType, &a.CostCenter, &a.CreatedAt)
	return a, err
}

func scanCommitment(scanner rowScanner) (domain.Commitment, error) {
	var c domain.Commitment
	err := scanner.Scan(&c.ID, &c.PONumber, &c.POLineNr, &c.PODate, &c.Vendor, &c.VendorDescription, &c.ProjectID, &c.ProjectNr, &c.WBSElement, &c.PONetAmount, &c.TotalAmount, &c.Currency, &c.POStatus, &c.CostCenter, &c.Tax, &c.CreatedAt)
	return c, err
}

func commitmentKey(poNumber string, poLineNr int) string {
	return poNumber + "|" + strconv.Itoa(poLineNr)
}
