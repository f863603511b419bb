package memory

import (
	"context"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- RoleStore ---

func (s *Store) GetRole(_ context.Context, id string) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return domain.Role{}, apperr.NotFound("role", id)
	}
	return r, nil
}

func (s *Store) ListRoles(_ context.Context) ([]domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) UpsertRole(_ context.Context, r domain.Role) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID] = r
	return r, nil
}

func (s *Store) DeleteRole(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, id)
	return nil
}

func (s *Store) AssignRole(_ context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.userRoles[userID] {
		if existing == roleID {
			return nil
		}
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

func (s *Store) RemoveRole(_ context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.userRoles[userID]
	out := ids[:0]
	for _, id := range ids {
		if id != roleID {
			out = append(out, id)
		}
	}
	s.userRoles[userID] = out
	return nil
}

func (s *Store) ListUserRoles(_ context.Context, userID string) ([]domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Role
	for _, roleID := range s.userRoles[userID] {
		if r, ok := s.roles[roleID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}
