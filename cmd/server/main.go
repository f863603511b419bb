// Command server wires every PPM core component (import engine, variance
// engine, authorization, AI orchestration, schedule/WBS, budget, audit,
// help-chat) to a backing store and starts the HTTP transport, mirroring
// the teacher's cmd/appserver wiring shape: load config, construct stores,
// construct services against those stores, build the router, serve with
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/ai"
	"github.com/Stefan/ppm-saas-sub001/internal/audit"
	"github.com/Stefan/ppm-saas-sub001/internal/authz"
	"github.com/Stefan/ppm-saas-sub001/internal/budget"
	"github.com/Stefan/ppm-saas-sub001/internal/cache"
	"github.com/Stefan/ppm-saas-sub001/internal/config"
	"github.com/Stefan/ppm-saas-sub001/internal/helpchat"
	middleware "github.com/Stefan/ppm-saas-sub001/internal/httpapi"
	"github.com/Stefan/ppm-saas-sub001/internal/importengine"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/projectlink"
	"github.com/Stefan/ppm-saas-sub001/internal/schedule"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
	"github.com/Stefan/ppm-saas-sub001/internal/store/postgres"
	"github.com/Stefan/ppm-saas-sub001/internal/variance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	backend, closeBackend, err := openBackend(cfg, appLog)
	if err != nil {
		log.Fatalf("open backend store: %v", err)
	}
	defer closeBackend()

	authzResolver := authz.New(backend)
	varianceEngine := variance.New(backend, backend, backend, appLog)
	scheduleEngine := schedule.New(backend)
	budgetService := budget.New(backend, backend)
	auditService := audit.New(backend)
	linker := projectlink.New(backend, cfg.Runtime.DefaultPortfolioID)
	importEngine := importengine.New(backend, backend, backend, cfg.Runtime.DefaultPortfolioID, appLog)

	chatClient := ai.NewHTTPChatClient(cfg.AI.BaseURL, cfg.AI.ModelKey)
	ctxSource := ai.NewStoreContextSource(backend, backend, backend)
	ragEngine := ai.NewEngine(backend, backend, backend, chatClient, ctxSource, appLog)
	indexer := ai.NewIndexer(backend, chatClient)
	abService := ai.NewABService(backend)
	opLog := ai.NewOperationLog(backend)
	advisor := ai.NewAdvisor(backend)

	analyticsTracker := helpchat.NewAnalyticsTracker(backend)
	tipsEngine := helpchat.NewTipsEngine()
	translator := helpchat.NewChatTranslator(chatClient)
	responseCache := cache.NewRAGResponseCache()
	helpchatService := helpchat.New(ragEngine, responseCache, tipsEngine, translator, analyticsTracker, appLog, nil)
	helpchatRouter := helpchat.NewRouter(analyticsTracker)

	// A single global per-identity limiter guards the whole API; the named
	// presets in internal/ratelimit (DashboardConfig, BulkImportConfig, ...)
	// express spec §4.10's per-operation budgets for a future per-route
	// limiter, but this transport wires one generic ceiling today.
	rateLimiter := middleware.NewRateLimiterWithWindow(100, time.Minute, 20, appLog)

	srv := middleware.NewServer(middleware.Deps{
		Stores:         backend,
		Authz:          authzResolver,
		Variance:       varianceEngine,
		Schedule:       scheduleEngine,
		Budget:         budgetService,
		Audit:          auditService,
		ImportEngine:   importEngine,
		Linker:         linker,
		RAGEngine:      ragEngine,
		Indexer:        indexer,
		ABService:      abService,
		OpLog:          opLog,
		Advisor:        advisor,
		HelpChat:       helpchatService,
		HelpChatRouter: helpchatRouter,
		RateLimiter:    rateLimiter,
		Log:            appLog,
	})

	addr := serverAddr(cfg)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.WithFields(map[string]interface{}{"addr": addr}).Info("ppm core listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

// openBackend selects the relational store when a DSN is configured,
// falling back to the in-process store for local runs and tests — the
// same "empty DSN means in-memory" convention the teacher's own cmd used.
func openBackend(cfg *config.Config, appLog *logger.Logger) (store.AllStores, func(), error) {
	if cfg.Database.DSN == "" {
		return memory.New(), func() {}, nil
	}

	pgStore, err := postgres.New(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.MigrateOnStart {
		if err := pgStore.Migrate(); err != nil {
			return nil, nil, err
		}
	}
	return pgStore, func() {
		if err := pgStore.Close(); err != nil {
			appLog.WithFields(map[string]interface{}{"error": err.Error()}).Warn("close backend store")
		}
	}, nil
}

func serverAddr(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	return host + ":" + itoa(port)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
