package memory

import (
	"context"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

func (s *Store) CreateABTest(_ context.Context, t domain.ABTest) (domain.ABTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abTests[t.ID] = t
	return t, nil
}

func (s *Store) GetABTest(_ context.Context, id string) (domain.ABTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.abTests[id]
	if !ok {
		return domain.ABTest{}, apperr.NotFound("ab_test", id)
	}
	return t, nil
}

func (s *Store) ListActiveABTests(_ context.Context) ([]domain.ABTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ABTest
	for _, t := range s.abTests {
		if t.Status == domain.ABTestActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) UpdateABTest(_ context.Context, t domain.ABTest) (domain.ABTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.abTests[t.ID]; !ok {
		return domain.ABTest{}, apperr.NotFound("ab_test", t.ID)
	}
	s.abTests[t.ID] = t
	return t, nil
}

// OperationsForVariant returns every logged AI operation tagged with
// testID/variant via Metadata["ab_test_id"]/["ab_variant"].
func (s *Store) OperationsForVariant(_ context.Context, testID, variant string) ([]domain.AIOperationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AIOperationRecord
	for _, rec := range s.aiOps {
		if rec.Metadata == nil {
			continue
		}
		if rec.Metadata["ab_test_id"] != testID {
			continue
		}
		if rec.Metadata["ab_variant"] != variant {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) FeedbackForOperations(_ context.Context, operationIDs []string) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(operationIDs))
	for _, id := range operationIDs {
		wanted[id] = struct{}{}
	}
	var out []domain.Feedback
	for _, fb := range s.feedbacks {
		if _, ok := wanted[fb.OperationID]; ok {
			out = append(out, fb)
		}
	}
	return out, nil
}
