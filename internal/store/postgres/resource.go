package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ResourceStore -----------------------------------------------------------

func (s *Store) CreateResource(ctx context.Context, r domain.Resource) (domain.Resource, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, name, email, role, capacity_hrs, availability, skills, location, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.ID, r.Name, r.Email, r.Role, r.CapacityHrs, r.Availability, pq.Array(r.Skills), r.Location, r.HourlyRate)
	if err != nil {
		return domain.Resource{}, err
	}
	return r, nil
}

func (s *Store) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	row := s.db.QueryRowContext(ctx, resourceSelect+` WHERE id = $1`, id)
	r, err := scanResource(row)
	if err == sql.ErrNoRows {
		return domain.Resource{}, apperr.NotFound("resource", id)
	}
	return r, err
}

func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	rows, err := s.db.QueryContext(ctx, resourceSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListAllocations(ctx context.Context, resourceID string) ([]domain.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id, project_id, allocation_pct FROM allocations WHERE resource_id = $1
	`, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		if err := rows.Scan(&a.ResourceID, &a.ProjectID, &a.AllocationPct); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const resourceSelect = `
	SELECT id, name, email, role, capacity_hrs, availability, skills, location, hourly_rate
	FROM resources`

func scanResource(scanner rowScanner) (domain.Resource, error) {
	var r domain.Resource
	var skills pq.StringArray
	err := scanner.Scan(&r.ID, &r.Name, &r.Email, &r.Role, &r.CapacityHrs, &r.Availability, &skills, &r.Location, &r.HourlyRate)
	if err != nil {
		return domain.Resource{}, err
	}
	r.Skills = []string(skills)
	return r, nil
}
