package memory

import (
	"context"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ThresholdRuleStore ---

func (s *Store) CreateRule(_ context.Context, r domain.ThresholdRule) (domain.ThresholdRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
	return r, nil
}

func (s *Store) ListActiveRules(_ context.Context, organizationID string) ([]domain.ThresholdRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ThresholdRule
	for _, r := range s.rules {
		if r.Enabled && (organizationID == "" || r.OrganizationID == organizationID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) RuleExistsByName(_ context.Context, organizationID, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rules {
		if r.OrganizationID == organizationID && r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// --- AlertStore ---

func (s *Store) CreateAlert(_ context.Context, a domain.VarianceAlert) (domain.VarianceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAlert(_ context.Context, a domain.VarianceAlert) (domain.VarianceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[a.ID]; !ok {
		return domain.VarianceAlert{}, apperr.NotFound("alert", a.ID)
	}
	s.alerts[a.ID] = a
	return a, nil
}

func (s *Store) GetAlert(_ context.Context, id string) (domain.VarianceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return domain.VarianceAlert{}, apperr.NotFound("alert", id)
	}
	return a, nil
}

func (s *Store) ActiveAlertWithinCooldown(_ context.Context, ruleID, projectID, wbs string, since time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.RuleID != ruleID || a.ProjectID != projectID || a.WBSElement != wbs {
			continue
		}
		if a.Status == domain.AlertResolved {
			continue
		}
		if a.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}
