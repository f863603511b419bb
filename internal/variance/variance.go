// Package variance computes project/WBS variance facts from stored
// commitments and actuals, and evaluates threshold rules into alerts.
// Grounded on the original variance_engine module's calculate_all /
// check_thresholds split, adapted to this repo's store interfaces and
// decimal arithmetic.
package variance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

var (
	underBand = decimal.NewFromFloat(0.95)
	overBand  = decimal.NewFromFloat(1.05)
	hundred   = decimal.NewFromInt(100)
)

// DefaultRuleSpec is one entry of the canonical four-rule set.
type DefaultRuleSpec struct {
	Name         string
	ThresholdPct float64
	Severity     domain.Severity
}

// DefaultRules is the canonical set seeded per organization when none exist.
var DefaultRules = []DefaultRuleSpec{
	{Name: "info-variance", ThresholdPct: 5, Severity: domain.SeverityInfo},
	{Name: "medium-variance", ThresholdPct: 10, Severity: domain.SeverityMedium},
	{Name: "high-variance", ThresholdPct: 20, Severity: domain.SeverityHigh},
	{Name: "critical-variance", ThresholdPct: 50, Severity: domain.SeverityCritical},
}

// Engine computes variance facts and evaluates alert thresholds.
type Engine struct {
	financial store.FinancialStore
	rules     store.ThresholdRuleStore
	alerts    store.AlertStore
	log       *logger.Logger
}

// New constructs an Engine.
func New(financial store.FinancialStore, rules store.ThresholdRuleStore, alerts store.AlertStore, log *logger.Logger) *Engine {
	return &Engine{financial: financial, rules: rules, alerts: alerts, log: log}
}

// InitializeDefaultRules seeds the canonical four rules for organizationID
// if no rule of that name exists yet; idempotent by (organization, name).
func (e *Engine) InitializeDefaultRules(ctx context.Context, organizationID string) error {
	for _, spec := range DefaultRules {
		exists, err := e.rules.RuleExistsByName(ctx, organizationID, spec.Name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		_, err = e.rules.CreateRule(ctx, domain.ThresholdRule{
			ID:             uuid.NewString(),
			Name:           spec.Name,
			OrganizationID: organizationID,
			Scope:          "organization",
			ThresholdPct:   decimal.NewFromFloat(spec.ThresholdPct),
			Severity:       spec.Severity,
			Cooldown:       24 * time.Hour,
			Enabled:        true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ProjectSummary computes the variance fact for one project (no WBS scope).
func (e *Engine) ProjectSummary(ctx context.Context, projectID string) (domain.VarianceFact, error) {
	commitments, err := e.financial.CommitmentsByProject(ctx, projectID)
	if err != nil {
		return domain.VarianceFact{}, err
	}
	actuals, err := e.financial.ActualsByProject(ctx, projectID)
	if err != nil {
		return domain.VarianceFact{}, err
	}
	return computeFact(projectID, "", commitments, actuals), nil
}

// WBSDetails computes the variance fact scoped to a project+WBS element.
func (e *Engine) WBSDetails(ctx context.Context, projectID, wbs string) (domain.VarianceFact, error) {
	commitments, err := e.financial.CommitmentsByProjectAndWBS(ctx, projectID, wbs)
	if err != nil {
		return domain.VarianceFact{}, err
	}
	actuals, err := e.financial.ActualsByProjectAndWBS(ctx, projectID, wbs)
	if err != nil {
		return domain.VarianceFact{}, err
	}
	return computeFact(projectID, wbs, commitments, actuals), nil
}

// CalculateAllResult is the per-project-partial outcome of a full recompute.
type CalculateAllResult struct {
	Summaries []domain.VarianceFact
	Failed    map[string]error
}

// CalculateAll recomputes variance for every project id given (or every
// known project if projectIDs is empty). A store error on one project does
// not prevent computing the rest.
func (e *Engine) CalculateAll(ctx context.Context, projectIDs []string) CalculateAllResult {
	result := CalculateAllResult{Failed: make(map[string]error)}
	for _, id := range projectIDs {
		fact, err := e.ProjectSummary(ctx, id)
		if err != nil {
			result.Failed[id] = err
			e.log.WithField("project_id", id).Warnf("variance calculation failed: %v", err)
			continue
		}
		result.Summaries = append(result.Summaries, fact)
	}
	return result
}

func computeFact(projectID, wbs string, commitments []domain.Commitment, actuals []domain.Actual) domain.VarianceFact {
	totalCommitment := decimal.Zero
	for _, c := range commitments {
		totalCommitment = totalCommitment.Add(c.PONetAmount)
	}
	totalActual := decimal.Zero
	for _, a := range actuals {
		totalActual = totalActual.Add(a.Amount)
	}

	varianceAmt := totalActual.Sub(totalCommitment)

	variancePct := decimal.Zero
	if totalCommitment.GreaterThan(decimal.Zero) {
		variancePct = varianceAmt.Div(totalCommitment).Mul(hundred)
	}

	status := domain.VarianceOn
	switch {
	case totalCommitment.GreaterThan(decimal.Zero) && totalActual.LessThan(totalCommitment.Mul(underBand)):
		status = domain.VarianceUnder
	case totalCommitment.GreaterThan(decimal.Zero) && totalActual.GreaterThan(totalCommitment.Mul(overBand)):
		status = domain.VarianceOver
	}

	return domain.VarianceFact{
		ProjectID:       projectID,
		WBSElement:      wbs,
		TotalCommitment: totalCommitment,
		TotalActual:     totalActual,
		Variance:        varianceAmt,
		VariancePct:     variancePct.Round(2),
		Status:          status,
	}
}

// CheckThresholds evaluates every active rule for organizationID against
// the given projects, creating (and returning) a new alert for each
// (rule, project) whose |variance%| crosses the rule's threshold and that
// has no active alert within its cooldown window.
func (e *Engine) CheckThresholds(ctx context.Context, organizationID string, projectIDs []string) ([]domain.VarianceAlert, error) {
	rules, err := e.rules.ListActiveRules(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	var created []domain.VarianceAlert
	for _, rule := range rules {
		scopedProjects := projectIDs
		if rule.Scope == "project" && rule.ProjectID != "" {
			scopedProjects = []string{rule.ProjectID}
		}
		for _, projectID := range scopedProjects {
			fact, err := e.ProjectSummary(ctx, projectID)
			if err != nil {
				e.log.WithField("project_id", projectID).Warnf("threshold check skipped: %v", err)
				continue
			}

			if fact.VariancePct.Abs().LessThan(rule.ThresholdPct) {
				continue
			}

			since := time.Now().Add(-rule.Cooldown)
			active, err := e.alerts.ActiveAlertWithinCooldown(ctx, rule.ID, projectID, "", since)
			if err != nil {
				e.log.WithField("project_id", projectID).Warnf("cooldown check failed: %v", err)
				continue
			}
			if active {
				continue
			}

			alert, err := e.alerts.CreateAlert(ctx, domain.VarianceAlert{
				ID:          uuid.NewString(),
				RuleID:      rule.ID,
				ProjectID:   projectID,
				VariancePct: fact.VariancePct,
				VarianceAmt: fact.Variance,
				Severity:    rule.Severity,
				Status:      domain.AlertNew,
				CreatedAt:   time.Now(),
			})
			if err != nil {
				e.log.WithField("project_id", projectID).Warnf("alert creation failed: %v", err)
				continue
			}
			created = append(created, alert)
		}
	}
	return created, nil
}

var alertTransitions = map[domain.AlertStatus][]domain.AlertStatus{
	domain.AlertNew:          {domain.AlertAcknowledged},
	domain.AlertAcknowledged: {domain.AlertResolved},
	domain.AlertResolved:     {},
}

// Acknowledge transitions an alert from new to acknowledged.
func (e *Engine) Acknowledge(ctx context.Context, alertID, actorID string) (domain.VarianceAlert, error) {
	return e.transition(ctx, alertID, domain.AlertAcknowledged, actorID)
}

// Resolve transitions an alert from acknowledged to resolved.
func (e *Engine) Resolve(ctx context.Context, alertID, actorID string) (domain.VarianceAlert, error) {
	return e.transition(ctx, alertID, domain.AlertResolved, actorID)
}

func (e *Engine) transition(ctx context.Context, alertID string, to domain.AlertStatus, actorID string) (domain.VarianceAlert, error) {
	alert, err := e.alerts.GetAlert(ctx, alertID)
	if err != nil {
		return domain.VarianceAlert{}, err
	}

	allowed := false
	for _, next := range alertTransitions[alert.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.VarianceAlert{}, apperr.Conflict(fmt.Sprintf("cannot transition alert from %s to %s", alert.Status, to))
	}

	now := time.Now()
	alert.Status = to
	switch to {
	case domain.AlertAcknowledged:
		alert.AckedAt = &now
		alert.AckedBy = actorID
	case domain.AlertResolved:
		alert.ResolvedAt = &now
		alert.ResolvedBy = actorID
	}
	return e.alerts.UpdateAlert(ctx, alert)
}
