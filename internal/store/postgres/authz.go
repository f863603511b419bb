package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- RoleStore -----------------------------------------------------------------

func (s *Store) GetRole(ctx context.Context, id string) (domain.Role, error) {
	row := s.db.QueryRowContext(ctx, roleSelect+` WHERE id = $1`, id)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return domain.Role{}, apperr.NotFound("role", id)
	}
	return r, err
}

func (s *Store) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := s.db.QueryContext(ctx, roleSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpsertRole(ctx context.Context, r domain.Role) (domain.Role, error) {
	permsJSON, err := json.Marshal(permissionSet(r.Permissions))
	if err != nil {
		return domain.Role{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, permissions, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = $2, description = $3, permissions = $4, active = $5
	`, r.ID, r.Name, r.Description, permsJSON, r.Active)
	if err != nil {
		return domain.Role{}, err
	}
	return r, nil
}

func (s *Store) DeleteRole(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

func (s *Store) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleID)
	return err
}

func (s *Store) RemoveRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2
	`, userID, roleID)
	return err
}

func (s *Store) ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.permissions, r.active
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const roleSelect = `SELECT id, name, description, permissions, active FROM roles`

func scanRole(scanner rowScanner) (domain.Role, error) {
	var r domain.Role
	var permsRaw []byte
	if err := scanner.Scan(&r.ID, &r.Name, &r.Description, &permsRaw, &r.Active); err != nil {
		return domain.Role{}, err
	}
	var perms []domain.Permission
	if len(permsRaw) > 0 {
		if err := json.Unmarshal(permsRaw, &perms); err != nil {
			return domain.Role{}, err
		}
	}
	r.Permissions = make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		r.Permissions[p] = struct{}{}
	}
	return r, nil
}

// permissionSet flattens the set representation into a JSON-friendly slice.
func permissionSet(m map[domain.Permission]struct{}) []domain.Permission {
	out := make([]domain.Permission, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	return out
}
