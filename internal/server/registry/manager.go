package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gwauth/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Manager owns the storage behind a Repository.
type Manager interface {
	Registry() Repository
	RunMigrations(ctx context.Context) error
	Close() error
}

type InMemoryManager struct {
	repo *MemoryRepository
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{repo: NewMemoryRepository()}
}

func (m *InMemoryManager) Registry() Repository                    { return m.repo }
func (m *InMemoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryManager) Close() error                            { return nil }

type PostgresManager struct {
	db   *sql.DB
	repo *PostgresRepository
}

// package-level seams for tests
var (
	sqlOpen = sql.Open
	gooseUp = goose.UpContext
)

func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresManager{db: db, repo: NewPostgresRepository(db)}

	if err := m.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresManager) Registry() Repository {
	return m.repo
}

func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUp(ctx, m.db, ".")
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}

// NewManager picks Postgres when dsn is set and memory otherwise.
func NewManager(ctx context.Context, dsn string) (Manager, error) {
	if dsn == "" {
		return NewInMemoryManager(), nil
	}
	return NewPostgresManager(ctx, dsn)
}
