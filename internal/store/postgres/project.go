package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ProjectStore ------------------------------------------------------------

func (s *Store) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects
			(id, portfolio_id, name, description, status, priority, budget, actual_cost, health, start_date, end_date, team_members, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.PortfolioID, p.Name, p.Description, p.Status, p.Priority, p.Budget, p.ActualCost, p.Health, p.StartDate, p.EndDate, pq.Array(p.TeamMembers), p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Project{}, apperr.Duplicate("project", p.Name)
	}
	if err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := s.db.QueryRowContext(ctx, projectSelect+` WHERE id = $1`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return domain.Project{}, apperr.NotFound("project", id)
	}
	return p, err
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (domain.Project, error) {
	row := s.db.QueryRowContext(ctx, projectSelect+` WHERE name = $1`, name)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return domain.Project{}, apperr.NotFound("project", name)
	}
	return p, err
}

func (s *Store) ListProjects(ctx context.Context, portfolioID string) ([]domain.Project, error) {
	query := projectSelect + ` WHERE ($1 = '' OR portfolio_id = $1) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListProjectNamesAndIDs(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM projects`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

func (s *Store) UpdateProjectActualCost(ctx context.Context, projectID string, actualCost string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET actual_cost = $2, updated_at = $3 WHERE id = $1
	`, projectID, actualCost, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("project", projectID)
	}
	return nil
}

const projectSelect = `
	SELECT id, portfolio_id, name, description, status, priority, budget, actual_cost, health, start_date, end_date, team_members, created_at, updated_at
	FROM projects`

func scanProject(scanner rowScanner) (domain.Project, error) {
	var p domain.Project
	var teamMembers pq.StringArray
	err := scanner.Scan(&p.ID, &p.PortfolioID, &p.Name, &p.Description, &p.Status, &p.Priority, &p.Budget, &p.ActualCost, &p.Health, &p.StartDate, &p.EndDate, &teamMembers, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, err
	}
	p.TeamMembers = []string(teamMembers)
	return p, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
