// Package domain holds the entity types shared across the PPM core's
// components. It has no dependency on storage or transport.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type Health string

const (
	HealthGreen  Health = "green"
	HealthYellow Health = "yellow"
	HealthRed    Health = "red"
)

// Portfolio is the root of project aggregation.
type Portfolio struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project belongs to a portfolio and exclusively owns its financial facts,
// schedules, and WBS elements.
type Project struct {
	ID          string
	PortfolioID string
	Name        string
	Description string
	Status      ProjectStatus
	Priority    string
	Budget      decimal.Decimal
	ActualCost  decimal.Decimal
	Health      Health
	StartDate   *time.Time
	EndDate     *time.Time
	TeamMembers []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ResourceStatus string

const (
	ResourceAvailable          ResourceStatus = "available"
	ResourcePartiallyAllocated ResourceStatus = "partially_allocated"
	ResourceMostlyAllocated    ResourceStatus = "mostly_allocated"
	ResourceFullyAllocated     ResourceStatus = "fully_allocated"
)

// Resource is a person or capacity unit that can be allocated to projects.
type Resource struct {
	ID           string
	Name         string
	Email        string
	Role         string
	CapacityHrs  int
	Availability int // percentage 0-100
	Skills       []string
	Location     string
	HourlyRate   decimal.Decimal
}

// Allocation is a resource's percentage commitment to a project; used to
// derive Resource.utilization at read time.
type Allocation struct {
	ResourceID     string
	ProjectID      string
	AllocationPct  int
}

// Commitment is a purchase-order-level planned spend. Unique on
// (PONumber, POLineNr).
type Commitment struct {
	ID                string
	PONumber          string
	POLineNr          int
	PODate            time.Time
	Vendor            string
	VendorDescription string
	ProjectID         string
	ProjectNr         string
	WBSElement        string
	PONetAmount       decimal.Decimal
	TotalAmount       decimal.Decimal
	Currency          string
	POStatus          string
	CostCenter        string
	Tax               decimal.Decimal
	CreatedAt         time.Time
}

// Actual is a posted financial transaction. Unique on FIDocNo.
type Actual struct {
	ID           string
	FIDocNo      string
	PostingDate  time.Time
	DocumentDate time.Time
	Vendor       string
	ProjectID    string
	ProjectNr    string
	WBSElement   string
	Amount       decimal.Decimal
	Currency     string
	DocumentType string
	CostCenter   string
	CreatedAt    time.Time
}

type VarianceStatus string

const (
	VarianceUnder VarianceStatus = "under"
	VarianceOn    VarianceStatus = "on"
	VarianceOver  VarianceStatus = "over"
)

// VarianceFact is derived, never stored as the system of record.
type VarianceFact struct {
	ProjectID       string
	WBSElement      string
	TotalCommitment decimal.Decimal
	TotalActual     decimal.Decimal
	Variance        decimal.Decimal
	VariancePct     decimal.Decimal
	Status          VarianceStatus
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ThresholdRule declares when a variance crossing should raise an alert.
type ThresholdRule struct {
	ID                   string
	Name                 string
	OrganizationID       string
	Scope                string // "organization" | "project"
	ProjectID            string
	ThresholdPct         decimal.Decimal
	Severity             Severity
	NotificationChannels []string
	Recipients           []string
	Cooldown             time.Duration
	Enabled              bool
}

type AlertStatus string

const (
	AlertNew          AlertStatus = "new"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// VarianceAlert is emitted by the variance engine when a threshold rule
// fires. Transitions are monotonic: new -> acknowledged -> resolved.
type VarianceAlert struct {
	ID          string
	RuleID      string
	ProjectID   string
	WBSElement  string
	VariancePct decimal.Decimal
	VarianceAmt decimal.Decimal
	Severity    Severity
	Status      AlertStatus
	CreatedAt   time.Time
	AckedAt     *time.Time
	AckedBy     string
	ResolvedAt  *time.Time
	ResolvedBy  string
}

// Permission is an element of the closed enumeration covering every
// gated operation in the core.
type Permission string

const (
	PermPortfolioRead     Permission = "portfolio_read"
	PermPortfolioCreate   Permission = "portfolio_create"
	PermPortfolioUpdate   Permission = "portfolio_update"
	PermPortfolioDelete   Permission = "portfolio_delete"
	PermProjectRead       Permission = "project_read"
	PermProjectCreate     Permission = "project_create"
	PermProjectUpdate     Permission = "project_update"
	PermProjectDelete     Permission = "project_delete"
	PermResourceRead      Permission = "resource_read"
	PermResourceManage    Permission = "resource_manage"
	PermFinancialRead     Permission = "financial_read"
	PermFinancialImport   Permission = "financial_import"
	PermFinancialManage   Permission = "financial_manage"
	PermRiskManage        Permission = "risk_manage"
	PermIssueManage       Permission = "issue_manage"
	PermScheduleRead      Permission = "schedule_read"
	PermScheduleManage    Permission = "schedule_manage"
	PermAIQuery           Permission = "ai_query"
	PermAIFeedback        Permission = "ai_feedback"
	PermAdminRoles        Permission = "admin_roles"
	PermAdminUsers        Permission = "admin_users"
	PermAdminAudit        Permission = "admin_audit"
)

// Role groups a permission subset; default roles are built in, custom
// roles are read from the store.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions map[Permission]struct{}
	Active      bool
}

// Embedding is a vector-indexed record keyed by (ContentType, ContentID).
type Embedding struct {
	ContentType string
	ContentID   string
	ContentText string
	Vector      []float32
	Metadata    map[string]interface{}
}

// ConversationEntry is one persisted turn of a RAG conversation (spec §4.6
// step 7): the query, its response, and the evidence/confidence behind it.
type ConversationEntry struct {
	ID             string
	UserID         string
	ConversationID string
	Query          string
	Response       string
	Sources        []string
	Confidence     float64
	OperationID    string
	CreatedAt      time.Time
}

// AIOperationRecord is an append-only entry describing one AI call.
type AIOperationRecord struct {
	OperationID   string
	ModelID       string
	OperationType string
	UserID        string
	Inputs        map[string]interface{}
	Outputs       map[string]interface{}
	Confidence    float64
	ResponseTime  time.Duration
	PromptTokens  int
	OutputTokens  int
	Success       bool
	ErrorMessage  string
	Timestamp     time.Time
	Metadata      map[string]interface{}
}

// Feedback is append-only user feedback on an AI operation.
type Feedback struct {
	OperationID  string
	UserID       string
	Rating       int
	FeedbackType string
	Text         string
	Timestamp    time.Time
}

type ABTestStatus string

const (
	ABTestDraft     ABTestStatus = "draft"
	ABTestActive    ABTestStatus = "active"
	ABTestCompleted ABTestStatus = "completed"
)

// ABTest declares a deterministic traffic split between two models.
type ABTest struct {
	ID            string
	ModelAID      string
	ModelBID      string
	OperationType string
	TrafficSplit  float64
	Duration      time.Duration
	StartedAt     time.Time
	EndedAt       *time.Time
	Status        ABTestStatus
}

// Schedule groups tasks for a project.
type Schedule struct {
	ID             string
	ProjectID      string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	BaselineStart  *time.Time
	BaselineEnd    *time.Time
	Status         string
}

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskOnHold     TaskStatus = "on_hold"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task is a schedule node; WBSCode is unique within the schedule.
type Task struct {
	ID               string
	ScheduleID       string
	ParentTaskID     string
	WBSCode          string
	PlannedStart     time.Time
	PlannedEnd       time.Time
	ActualStart      *time.Time
	ActualEnd        *time.Time
	BaselineStart    *time.Time
	BaselineEnd      *time.Time
	DurationDays     int
	ProgressPct      int
	Status           TaskStatus
	PlannedEffort    float64
	ActualEffort     float64
	RemainingEffort  float64
	Critical         bool
	Float            int
	Deliverables     string
	AcceptanceCriteria string
}

// WBSElement is a hierarchical decomposition node distinct from Task,
// carrying work-package management fields.
type WBSElement struct {
	ID                     string
	ProjectID              string
	ParentID               string
	Code                   string
	Name                   string
	LevelNumber            int
	SortOrder              int
	ProgressPct            int
	PlannedEffort          float64
	WorkPackageManager     string
	DeliverableDescription string
	AcceptanceCriteria     string
}

type ImportType string

const (
	ImportActuals     ImportType = "actuals"
	ImportCommitments ImportType = "commitments"
)

type ImportStatus string

const (
	ImportCompleted ImportStatus = "completed"
	ImportPartial   ImportStatus = "partial"
	ImportFailed    ImportStatus = "failed"
)

// ImportError describes a single row/field failure within an import.
type ImportError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Value string `json:"value,omitempty"`
	Error string `json:"error"`
}

// ImportResult is the terminal outcome of one import_actuals/import_commitments call.
type ImportResult struct {
	Success        bool          `json:"success"`
	ImportID       string        `json:"import_id"`
	Total          int           `json:"total"`
	SuccessCount   int           `json:"success_count"`
	DuplicateCount int           `json:"duplicate_count"`
	ErrorCount     int           `json:"error_count"`
	Errors         []ImportError `json:"errors"`
	Message        string        `json:"message"`
}

// ImportAuditLog is the append-only audit record for one import run.
type ImportAuditLog struct {
	ImportID       string
	UserID         string
	ImportType     ImportType
	Total          int
	SuccessCount   int
	DuplicateCount int
	ErrorCount     int
	Status         ImportStatus
	Errors         []ImportError
	StartedAt      time.Time
	FinishedAt     time.Time
}
