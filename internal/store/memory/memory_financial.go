package memory

import (
	"context"
	"fmt"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

func commitmentKey(poNumber string, poLineNr int) string {
	return fmt.Sprintf("%s|%d", poNumber, poLineNr)
}

// --- FinancialStore ---

func (s *Store) InsertActualsBatch(_ context.Context, rows []domain.Actual) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.actuals[r.FIDocNo] = r
	}
	return nil
}

func (s *Store) InsertCommitmentsBatch(_ context.Context, rows []domain.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.commitments[commitmentKey(r.PONumber, r.POLineNr)] = r
	}
	return nil
}

func (s *Store) ExistingFIDocNos(_ context.Context, docNos []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for _, d := range docNos {
		if _, ok := s.actuals[d]; ok {
			out[d] = struct{}{}
		}
	}
	return out, nil
}

func (s *Store) ExistingCommitmentKeys(_ context.Context, poNumbers []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(poNumbers))
	for _, p := range poNumbers {
		wanted[p] = struct{}{}
	}
	out := make(map[string]struct{})
	for _, c := range s.commitments {
		if _, ok := wanted[c.PONumber]; ok {
			out[commitmentKey(c.PONumber, c.POLineNr)] = struct{}{}
		}
	}
	return out, nil
}

func (s *Store) ActualsByProject(_ context.Context, projectID string) ([]domain.Actual, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Actual
	for _, a := range s.actuals {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CommitmentsByProject(_ context.Context, projectID string) ([]domain.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Commitment
	for _, c := range s.commitments {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) ActualsByProjectAndWBS(_ context.Context, projectID, wbs string) ([]domain.Actual, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Actual
	for _, a := range s.actuals {
		if a.ProjectID == projectID && a.WBSElement == wbs {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CommitmentsByProjectAndWBS(_ context.Context, projectID, wbs string) ([]domain.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Commitment
	for _, c := range s.commitments {
		if c.ProjectID == projectID && c.WBSElement == wbs {
			out = append(out, c)
		}
	}
	return out, nil
}
