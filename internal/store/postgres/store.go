// Package postgres is the relational implementation of the store
// interfaces: lib/pq over database/sql, sqlx for connection setup and
// struct-friendly querying, golang-migrate for schema migrations. Grounded
// on the teacher's raw database/sql data-feed store (no copy of it is kept
// in this package): parameterized placeholders, JSON-marshaled flexible columns, a rowScanner
// interface shared between *sql.Row and *sql.Rows, uuid.NewString() ids.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/jmoiron/sqlx"

	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

var (
	_ store.PortfolioStore     = (*Store)(nil)
	_ store.ProjectStore       = (*Store)(nil)
	_ store.ResourceStore      = (*Store)(nil)
	_ store.FinancialStore     = (*Store)(nil)
	_ store.ThresholdRuleStore = (*Store)(nil)
	_ store.AlertStore         = (*Store)(nil)
	_ store.RoleStore          = (*Store)(nil)
	_ store.EmbeddingStore     = (*Store)(nil)
	_ store.ConversationStore  = (*Store)(nil)
	_ store.AIOperationStore   = (*Store)(nil)
	_ store.ScheduleStore      = (*Store)(nil)
	_ store.AuditStore         = (*Store)(nil)
	_ store.ABTestStore        = (*Store)(nil)
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store wraps a relational connection pool and implements every
// store.XStore interface against it.
type Store struct {
	db *sqlx.DB
}

// New opens a connection pool against dsn and verifies it with a ping.
func New(dsn string, maxOpenConns, maxIdleConns, connMaxLifetimeSeconds int) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if connMaxLifetimeSeconds > 0 {
		db.SetConnMaxLifetime(time.Duration(connMaxLifetimeSeconds) * time.Second)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is alive, used by the server's readiness
// probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies every pending migration under migrations/ using the
// embedded filesystem as the migration source.
func (s *Store) Migrate() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}
	driver, err := pgmigrate.WithInstance(s.db.DB, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows so a single scan
// function can serve both Get* and List* methods.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
