package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- PortfolioStore ----------------------------------------------------------

func (s *Store) CreatePortfolio(ctx context.Context, p domain.Portfolio) (domain.Portfolio, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portfolios (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Name, p.OwnerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

func (s *Store) GetPortfolio(ctx context.Context, id string) (domain.Portfolio, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at, updated_at FROM portfolios WHERE id = $1
	`, id)
	p, err := scanPortfolio(row)
	if err == sql.ErrNoRows {
		return domain.Portfolio{}, apperr.NotFound("portfolio", id)
	}
	return p, err
}

func (s *Store) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner_id, created_at, updated_at FROM portfolios ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPortfolio(scanner rowScanner) (domain.Portfolio, error) {
	var p domain.Portfolio
	err := scanner.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
