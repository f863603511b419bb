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

// --- ThresholdRuleStore -------------------------------------------------------

func (s *Store) CreateRule(ctx context.Context, r domain.ThresholdRule) (domain.ThresholdRule, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO threshold_rules
			(id, name, organization_id, scope, project_id, threshold_pct, severity, notification_channels, recipients, cooldown_seconds, enabled)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.Name, r.OrganizationID, r.Scope, r.ProjectID, r.ThresholdPct, r.Severity, pq.Array(r.NotificationChannels), pq.Array(r.Recipients), int64(r.Cooldown/time.Second), r.Enabled)
	if isUniqueViolation(err) {
		return domain.ThresholdRule{}, apperr.Duplicate("threshold_rule", r.Name)
	}
	if err != nil {
		return domain.ThresholdRule{}, err
	}
	return r, nil
}

func (s *Store) ListActiveRules(ctx context.Context, organizationID string) ([]domain.ThresholdRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, organization_id, scope, project_id, threshold_pct, severity, notification_channels, recipients, cooldown_seconds, enabled
		FROM threshold_rules
		WHERE enabled = true AND ($1 = '' OR organization_id = $1)
		ORDER BY id
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ThresholdRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RuleExistsByName(ctx context.Context, organizationID, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM threshold_rules WHERE organization_id = $1 AND name = $2)
	`, organizationID, name).Scan(&exists)
	return exists, err
}

func scanRule(scanner rowScanner) (domain.ThresholdRule, error) {
	var r domain.ThresholdRule
	var channels, recipients pq.StringArray
	var cooldownSeconds int64
	err := scanner.Scan(&r.ID, &r.Name, &r.OrganizationID, &r.Scope, &r.ProjectID, &r.ThresholdPct, &r.Severity, &channels, &recipients, &cooldownSeconds, &r.Enabled)
	if err != nil {
		return domain.ThresholdRule{}, err
	}
	r.NotificationChannels = []string(channels)
	r.Recipients = []string(recipients)
	r.Cooldown = time.Duration(cooldownSeconds) * time.Second
	return r, nil
}

// --- AlertStore ----------------------------------------------------------------

func (s *Store) CreateAlert(ctx context.Context, a domain.VarianceAlert) (domain.VarianceAlert, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variance_alerts
			(id, rule_id, project_id, wbs_element, variance_pct, variance_amt, severity, status, created_at, acked_at, acked_by, resolved_at, resolved_by)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, a.ID, a.RuleID, a.ProjectID, a.WBSElement, a.VariancePct, a.VarianceAmt, a.Severity, a.Status, a.CreatedAt, a.AckedAt, a.AckedBy, a.ResolvedAt, a.ResolvedBy)
	if err != nil {
		return domain.VarianceAlert{}, err
	}
	return a, nil
}

func (s *Store) UpdateAlert(ctx context.Context, a domain.VarianceAlert) (domain.VarianceAlert, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE variance_alerts
		SET status = $2, acked_at = $3, acked_by = $4, resolved_at = $5, resolved_by = $6
		WHERE id = $1
	`, a.ID, a.Status, a.AckedAt, a.AckedBy, a.ResolvedAt, a.ResolvedBy)
	if err != nil {
		return domain.VarianceAlert{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.VarianceAlert{}, apperr.NotFound("alert", a.ID)
	}
	return a, nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (domain.VarianceAlert, error) {
	row := s.db.QueryRowContext(ctx, alertSelect+` WHERE id = $1`, id)
	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return domain.VarianceAlert{}, apperr.NotFound("alert", id)
	}
	return a, err
}

func (s *Store) ActiveAlertWithinCooldown(ctx context.Context, ruleID, projectID, wbs string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM variance_alerts
			WHERE rule_id = $1 AND project_id = $2 AND wbs_element = $3
				AND status <> $4 AND created_at > $5
		)
	`, ruleID, projectID, wbs, domain.AlertResolved, since).Scan(&exists)
	return exists, err
}

const alertSelect = `
	SELECT id, rule_id, project_id, wbs_element, variance_pct, variance_amt, severity, status, created_at, acked_at, acked_by, resolved_at, resolved_by
	FROM variance_alerts`

func scanAlert(scanner rowScanner) (domain.VarianceAlert, error) {
	var a domain.VarianceAlert
	err := scanner.Scan(&a.ID, &a.RuleID, &a.ProjectID, &a.WBSElement, &a.VariancePct, &a.VarianceAmt, &a.Severity, &a.Status, &a.CreatedAt, &a.AckedAt, &a.AckedBy, &a.ResolvedAt, &a.ResolvedBy)
	return a, err
}
