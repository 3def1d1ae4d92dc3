package memory

import (
	"context"
	"log"
	"sync"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Database implements interfaces.Database with mutex-guarded maps. It is
// the default backend for tests and local development.
type Database struct {
	mu        sync.RWMutex
	tables    map[string]map[string]map[string]interface{} // tableName -> recordID -> record
	schemas   map[string]*interfaces.Schema                // tableName -> schema
	connected bool
}

// NewDatabase creates a new in-memory database
func NewDatabase() *Database {
	return &Database{
		tables:  make(map[string]map[string]map[string]interface{}),
		schemas: make(map[string]*interfaces.Schema),
	}
}

// Connect marks the database as usable
func (db *Database) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = true
	return nil
}

// Disconnect drops all state
func (db *Database) Disconnect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = false
	db.tables = make(map[string]map[string]map[string]interface{})
	db.schemas = make(map[string]*interfaces.Schema)
	return nil
}

// IsHealthy reports whether Connect has been called
func (db *Database) IsHealthy(ctx context.Context) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.connected
}

// Transaction runs fn against a snapshot-backed transaction. On error the
// pre-transaction state is restored.
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	tx := NewTransaction(db)

	defer func() {
		if !tx.IsCompleted() {
			tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// Repository returns a repository for the given schema
func (db *Database) Repository(schema *interfaces.Schema) interfaces.Repository {
	db.mu.Lock()
	db.schemas[schema.TableName] = schema
	db.mu.Unlock()

	return NewRepository(db, schema)
}

// Migrate registers schemas and creates their tables
func (db *Database) Migrate(ctx context.Context, schemas []*interfaces.Schema) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, schema := range schemas {
		db.schemas[schema.TableName] = schema
		if _, exists := db.tables[schema.TableName]; !exists {
			db.tables[schema.TableName] = make(map[string]map[string]interface{})
		}
	}

	return nil
}

// Seed inserts initial data, skipping records that fail validation
func (db *Database) Seed(ctx context.Context, schema *interfaces.Schema, data []map[string]interface{}) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	repo := db.Repository(schema)

	for i, record := range data {
		if _, err := repo.Create(ctx, record); err != nil {
			log.Printf("seed: skipping record %d in %s: %v", i, schema.TableName, err)
		}
	}

	return nil
}

// Clear removes all rows from all tables. For tests.
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()

	for tableName := range db.tables {
		db.tables[tableName] = make(map[string]map[string]interface{})
	}
}
