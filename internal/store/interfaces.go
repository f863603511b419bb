// Package store declares the per-domain persistence contracts the core
// depends on. Concrete implementations live in store/postgres (relational,
// lib/pq + sqlx) and store/memory (in-process, used by tests).
package store

import (
	"context"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// PortfolioStore persists portfolios.
type PortfolioStore interface {
	CreatePortfolio(ctx context.Context, p domain.Portfolio) (domain.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (domain.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]domain.Portfolio, error)
}

// ProjectStore persists projects and backs the project linker (C2).
type ProjectStore interface {
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	GetProjectByName(ctx context.Context, name string) (domain.Project, error)
	ListProjects(ctx context.Context, portfolioID string) ([]domain.Project, error)
	ListProjectNamesAndIDs(ctx context.Context) (map[string]string, error)
	UpdateProjectActualCost(ctx context.Context, projectID string, actualCost string) error
}

// ResourceStore persists resources and allocations.
type ResourceStore interface {
	CreateResource(ctx context.Context, r domain.Resource) (domain.Resource, error)
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	ListAllocations(ctx context.Context, resourceID string) ([]domain.Allocation, error)
}

// FinancialStore persists commitments and actuals, and supports the bulk
// duplicate-detection queries the import engine (C3) requires.
type FinancialStore interface {
	InsertActualsBatch(ctx context.Context, rows []domain.Actual) error
	InsertCommitmentsBatch(ctx context.Context, rows []domain.Commitment) error

	ExistingFIDocNos(ctx context.Context, docNos []string) (map[string]struct{}, error)
	ExistingCommitmentKeys(ctx context.Context, poNumbers []string) (map[string]struct{}, error)

	ActualsByProject(ctx context.Context, projectID string) ([]domain.Actual, error)
	CommitmentsByProject(ctx context.Context, projectID string) ([]domain.Commitment, error)
	ActualsByProjectAndWBS(ctx context.Context, projectID, wbs string) ([]domain.Actual, error)
	CommitmentsByProjectAndWBS(ctx context.Context, projectID, wbs string) ([]domain.Commitment, error)
}

// ThresholdRuleStore persists variance threshold rules.
type ThresholdRuleStore interface {
	CreateRule(ctx context.Context, r domain.ThresholdRule) (domain.ThresholdRule, error)
	ListActiveRules(ctx context.Context, organizationID string) ([]domain.ThresholdRule, error)
	RuleExistsByName(ctx context.Context, organizationID, name string) (bool, error)
}

// AlertStore persists variance alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, a domain.VarianceAlert) (domain.VarianceAlert, error)
	UpdateAlert(ctx context.Context, a domain.VarianceAlert) (domain.VarianceAlert, error)
	GetAlert(ctx context.Context, id string) (domain.VarianceAlert, error)
	ActiveAlertWithinCooldown(ctx context.Context, ruleID, projectID, wbs string, since time.Time) (bool, error)
}

// RoleStore persists custom roles and user-role assignments.
type RoleStore interface {
	GetRole(ctx context.Context, id string) (domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	UpsertRole(ctx context.Context, r domain.Role) (domain.Role, error)
	DeleteRole(ctx context.Context, id string) error

	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error)
}

// EmbeddingStore persists and searches vector embeddings for the AI core.
type EmbeddingStore interface {
	Upsert(ctx context.Context, e domain.Embedding) error
	SearchSimilar(ctx context.Context, queryVector []float32, contentTypes []string, limit int) ([]EmbeddingMatch, error)
	Delete(ctx context.Context, contentType, contentID string) error
}

// EmbeddingMatch is one ranked result from EmbeddingStore.SearchSimilar.
type EmbeddingMatch struct {
	ContentType string
	ContentID   string
	ContentText string
	Metadata    map[string]interface{}
	Similarity  float64
}

// ConversationStore persists RAG conversation turns (spec §4.6 step 7).
type ConversationStore interface {
	PersistConversationEntry(ctx context.Context, e domain.ConversationEntry) error
}

// AIOperationStore persists AI operation records and feedback.
type AIOperationStore interface {
	LogOperation(ctx context.Context, rec domain.AIOperationRecord) error
	LogFeedback(ctx context.Context, fb domain.Feedback) error
	Summary(ctx context.Context, since time.Time, operationType string) (AIOperationSummary, error)
}

// AIOperationSummary aggregates AI operation records over a window.
type AIOperationSummary struct {
	Count          int
	SuccessRate    float64
	AvgResponseMs  float64
	AvgConfidence  float64
	TotalTokens    int
}

// ScheduleStore persists schedules, tasks, and WBS elements.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s domain.Schedule) (domain.Schedule, error)
	GetSchedule(ctx context.Context, id string) (domain.Schedule, error)

	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	ListTasks(ctx context.Context, scheduleID string) ([]domain.Task, error)
	ListChildTasks(ctx context.Context, parentTaskID string) ([]domain.Task, error)

	CreateWBSElement(ctx context.Context, w domain.WBSElement) (domain.WBSElement, error)
	UpdateWBSElement(ctx context.Context, w domain.WBSElement) (domain.WBSElement, error)
	GetWBSElement(ctx context.Context, id string) (domain.WBSElement, error)
	ListWBSElements(ctx context.Context, projectID string) ([]domain.WBSElement, error)
}

// AuditStore persists the append-only operation/import audit log (C8).
type AuditStore interface {
	RecordImport(ctx context.Context, log domain.ImportAuditLog) error
	RecordEvent(ctx context.Context, eventType, actorID string, details map[string]interface{}) error
	Statistics(ctx context.Context, since time.Time) (AuditStatistics, error)
	ListEvents(ctx context.Context, since time.Time, eventType string) ([]AuditEvent, error)
	ListImports(ctx context.Context, since time.Time) ([]domain.ImportAuditLog, error)
}

// AuditEvent is one append-only entry from RecordEvent.
type AuditEvent struct {
	EventType string
	ActorID   string
	Details   map[string]interface{}
	At        time.Time
}

// AuditStatistics summarizes the audit log over a window.
type AuditStatistics struct {
	TotalImports      int
	TotalRows         int
	TotalErrors       int
	ImportsByStatus   map[string]int
}

// ABTestStore persists A/B test declarations and resolves variant outcomes
// from the AI operation log they reference.
type ABTestStore interface {
	CreateABTest(ctx context.Context, t domain.ABTest) (domain.ABTest, error)
	GetABTest(ctx context.Context, id string) (domain.ABTest, error)
	ListActiveABTests(ctx context.Context) ([]domain.ABTest, error)
	UpdateABTest(ctx context.Context, t domain.ABTest) (domain.ABTest, error)
	OperationsForVariant(ctx context.Context, testID, variant string) ([]domain.AIOperationRecord, error)
	FeedbackForOperations(ctx context.Context, operationIDs []string) ([]domain.Feedback, error)
}

// AllStores is the full persistence contract a single backing store (either
// store/memory or store/postgres) satisfies. The HTTP transport and
// cmd/server wiring depend on this instead of enumerating every sub-store,
// so swapping backends never touches call sites.
type AllStores interface {
	PortfolioStore
	ProjectStore
	ResourceStore
	FinancialStore
	ThresholdRuleStore
	AlertStore
	RoleStore
	EmbeddingStore
	ConversationStore
	AIOperationStore
	ScheduleStore
	AuditStore
	ABTestStore
}
