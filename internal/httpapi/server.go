package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/Stefan/ppm-saas-sub001/internal/ai"
	"github.com/Stefan/ppm-saas-sub001/internal/audit"
	"github.com/Stefan/ppm-saas-sub001/internal/authz"
	"github.com/Stefan/ppm-saas-sub001/internal/budget"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/helpchat"
	"github.com/Stefan/ppm-saas-sub001/internal/importengine"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/projectlink"
	"github.com/Stefan/ppm-saas-sub001/internal/schedule"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
	"github.com/Stefan/ppm-saas-sub001/internal/variance"
)

// Server holds every domain component the transport layer dispatches to. It
// carries no state of its own beyond what's needed to route a request —
// each handler is a thin adapter between HTTP and a component method,
// mirroring the teacher's Service.registerRoutes + handleXxx split.
type Server struct {
	stores store.AllStores

	authz        *authz.Resolver
	variance     *variance.Engine
	schedule     *schedule.Engine
	budget       *budget.Service
	audit        *audit.Service
	importEngine *importengine.Engine
	linker       *projectlink.Linker

	ragEngine  *ai.Engine
	indexer    *ai.Indexer
	abService  *ai.ABService
	opLog      *ai.OperationLog
	advisor    *ai.Advisor

	helpchat       *helpchat.Service
	helpchatRouter *helpchat.Router

	rateLimiter *RateLimiter
	log         *logger.Logger
}

// Deps bundles every constructed component for NewServer, so cmd/server's
// main only has to build each component once and hand the bundle over.
type Deps struct {
	Stores store.AllStores

	Authz        *authz.Resolver
	Variance     *variance.Engine
	Schedule     *schedule.Engine
	Budget       *budget.Service
	Audit        *audit.Service
	ImportEngine *importengine.Engine
	Linker       *projectlink.Linker

	RAGEngine *ai.Engine
	Indexer   *ai.Indexer
	ABService *ai.ABService
	OpLog     *ai.OperationLog
	Advisor   *ai.Advisor

	HelpChat       *helpchat.Service
	HelpChatRouter *helpchat.Router

	RateLimiter *RateLimiter
	Log         *logger.Logger
}

// NewServer builds a Server from a fully-wired Deps bundle.
func NewServer(d Deps) *Server {
	return &Server{
		stores:         d.Stores,
		authz:          d.Authz,
		variance:       d.Variance,
		schedule:       d.Schedule,
		budget:         d.Budget,
		audit:          d.Audit,
		importEngine:   d.ImportEngine,
		linker:         d.Linker,
		ragEngine:      d.RAGEngine,
		indexer:        d.Indexer,
		abService:      d.ABService,
		opLog:          d.OpLog,
		advisor:        d.Advisor,
		helpchat:       d.HelpChat,
		helpchatRouter: d.HelpChatRouter,
		rateLimiter:    d.RateLimiter,
		log:            d.Log,
	}
}

// Router builds the full HTTP route table. chi carries the top-level
// middleware chain and route table; the help-chat tip-callback subrouter
// (built on gorilla/mux, spec §4.11) is mounted underneath it as a plain
// http.Handler — chi.Mount accepts any handler, so the two routers compose
// without either needing to know about the other's library.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(Authenticate)
	if s.rateLimiter != nil {
		r.Use(s.rateLimiter.Handler)
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/portfolios", func(r chi.Router) {
		r.Post("/", s.handleCreatePortfolio)
		r.Get("/", s.handleListPortfolios)
		r.Get("/{id}", s.handleGetPortfolio)
	})

	r.Route("/api/projects", func(r chi.Router) {
		r.Post("/", s.handleCreateProject)
		r.Get("/", s.handleListProjects)
		r.Get("/{id}", s.handleGetProject)
		r.Get("/{id}/variance", s.handleProjectVariance)
		r.Get("/{id}/variance/{wbs}", s.handleWBSVariance)
		r.Get("/{id}/budget", s.handleBudgetVariance)
		r.Get("/{id}/budget/simulate", s.handleSimulateCompletionCost)
		r.Get("/{id}/schedule/{scheduleID}/tasks", s.handleListTasks)
		r.Post("/{id}/schedule/{scheduleID}/tasks", s.handleCreateTask)
		r.Get("/{id}/wbs", s.handleListWBSElements)
		r.Post("/{id}/wbs", s.handleCreateWBSElement)
		r.Get("/{id}/wbs/validate", s.handleValidateWBS)
		r.Post("/{id}/wbs/managers:bulk-assign", s.handleBulkAssignWorkPackageManagers)
	})

	r.Route("/api/schedules", func(r chi.Router) {
		r.Post("/", s.handleCreateSchedule)
		r.Get("/{id}", s.handleGetSchedule)
	})

	r.Route("/api/tasks/{taskID}", func(r chi.Router) {
		r.Put("/status", s.handleUpdateTaskStatus)
		r.Put("/progress", s.handleSetTaskProgress)
	})

	r.Route("/api/wbs/{wbsID}/move", func(r chi.Router) {
		r.Post("/", s.handleMoveWBSElement)
	})

	r.Route("/api/resources", func(r chi.Router) {
		r.Post("/", s.handleCreateResource)
		r.Get("/", s.handleListResources)
		r.Get("/{id}", s.handleGetResource)
		r.Post("/match-skills", s.handleMatchSkills)
		r.Get("/conflicts", s.handleDetectConflicts)
	})

	r.Route("/api/portfolios/{id}/report", func(r chi.Router) {
		r.Get("/", s.handleComprehensiveReport)
	})

	r.Route("/api/imports", func(r chi.Router) {
		r.Post("/actuals", s.handleImportActuals)
		r.Post("/commitments", s.handleImportCommitments)
	})

	r.Route("/api/variance", func(r chi.Router) {
		r.Post("/rules", s.handleCreateThresholdRule)
		r.Post("/check", s.handleCheckThresholds)
		r.Post("/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)
		r.Post("/alerts/{id}/resolve", s.handleResolveAlert)
	})

	r.Route("/api/roles", func(r chi.Router) {
		r.Get("/", s.handleListRoles)
		r.Put("/", s.handleUpsertRole)
		r.Delete("/{id}", s.handleDeleteRole)
	})
	r.Route("/api/users/{userID}/roles", func(r chi.Router) {
		r.Post("/{roleID}", s.handleAssignRole)
		r.Delete("/{roleID}", s.handleRemoveRole)
	})

	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/query", s.handleRAGQuery)
		r.Post("/feedback", s.handleAIFeedback)
		r.Get("/operations/summary", s.handleAIOperationsSummary)
		r.Post("/index/project/{id}", s.handleIndexProject)
		r.Post("/index/portfolio/{id}", s.handleIndexPortfolio)
		r.Post("/index/resource/{id}", s.handleIndexResource)
		r.Post("/ab-tests", s.handleCreateABTest)
		r.Get("/ab-tests/{id}/analysis", s.handleABTestAnalysis)

		if s.helpchatRouter != nil {
			muxRouter := mux.NewRouter()
			s.helpchatRouter.Register(muxRouter)
			r.Mount("/help", muxRouter)
		}
	})

	r.Route("/api/audit", func(r chi.Router) {
		r.Get("/statistics", s.handleAuditStatistics)
		r.Get("/imports", s.handleAuditImports)
		r.Get("/events", s.handleAuditEvents)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requirePermission enforces the permission gate for the calling user,
// writing the error response itself on failure. Handlers call this after
// RequireUserID and before touching their domain component.
func (s *Server) requirePermission(w http.ResponseWriter, r *http.Request, userID string, perm domain.Permission) bool {
	if err := s.authz.Require(r.Context(), userID, perm); err != nil {
		WriteError(w, r, err)
		return false
	}
	return true
}
