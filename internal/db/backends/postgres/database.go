package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Database implements interfaces.Database on top of a pgx connection pool.
// Constraints (unique indexes, ON DELETE CASCADE / SET NULL) are declared
// in the goose migrations and enforced by Postgres itself.
type Database struct {
	dsn  string
	pool *pgxpool.Pool
}

// NewDatabase creates a Postgres database for the given DSN
func NewDatabase(dsn string) *Database {
	return &Database{dsn: dsn}
}

// Connect establishes the connection pool
func (db *Database) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, db.dsn)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	db.pool = pool
	return nil
}

// Disconnect closes the pool
func (db *Database) Disconnect(ctx context.Context) error {
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
	return nil
}

// IsHealthy pings the pool
func (db *Database) IsHealthy(ctx context.Context) bool {
	if db.pool == nil {
		return false
	}
	return db.pool.Ping(ctx) == nil
}

// Transaction runs fn inside a pgx transaction
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	if db.pool == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	pgxTx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Transaction{tx: pgxTx}

	defer func() {
		if !tx.IsCompleted() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// Repository returns a repository for the given schema
func (db *Database) Repository(schema *interfaces.Schema) interfaces.Repository {
	return NewRepository(db, schema)
}

// Migrate applies the embedded goose migrations. The schemas argument is
// accepted for interface parity; the SQL files are the source of truth.
func (db *Database) Migrate(ctx context.Context, schemas []*interfaces.Schema) error {
	if db.pool == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Seed inserts initial data, ignoring conflicts so reruns stay idempotent
func (db *Database) Seed(ctx context.Context, schema *interfaces.Schema, data []map[string]interface{}) error {
	repo := db.Repository(schema)
	for _, record := range data {
		if _, err := repo.Create(ctx, record); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
	}
	return nil
}
