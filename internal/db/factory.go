package db

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost-backend/internal/db/backends/memory"
	"github.com/inkpost/inkpost-backend/internal/db/backends/postgres"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Config holds database configuration
type Config struct {
	Type string // "memory" or "postgres"
	DSN  string // connection string for the postgres backend
}

// NewDatabase creates a database instance for the configuration
func NewDatabase(config *Config) (interfaces.Database, error) {
	if config == nil {
		config = &Config{Type: "memory"}
	}

	switch config.Type {
	case "", "memory":
		return memory.NewDatabase(), nil
	case "postgres":
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		return postgres.NewDatabase(config.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// NewInMemoryDatabase creates an in-memory database instance
func NewInMemoryDatabase() interfaces.Database {
	return memory.NewDatabase()
}

// ConnectAndMigrate connects to the database and applies migrations
func ConnectAndMigrate(ctx context.Context, db interfaces.Database, schemas []*interfaces.Schema) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if err := db.Migrate(ctx, schemas); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
