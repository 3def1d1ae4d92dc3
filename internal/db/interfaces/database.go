package interfaces

import "context"

// Database is the storage abstraction shared by the in-memory and Postgres
// backends.
type Database interface {
	// Connect establishes the connection
	Connect(ctx context.Context) error

	// Disconnect closes the connection
	Disconnect(ctx context.Context) error

	// IsHealthy reports whether the connection is usable
	IsHealthy(ctx context.Context) bool

	// Transaction runs fn inside a transaction, rolling back on error
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error

	// Repository returns a repository for the given schema
	Repository(schema *Schema) Repository

	// Migrate creates tables and applies schema changes
	Migrate(ctx context.Context, schemas []*Schema) error

	// Seed inserts initial data
	Seed(ctx context.Context, schema *Schema, data []map[string]interface{}) error
}
