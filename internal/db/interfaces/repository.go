package interfaces

import "context"

// Repository provides CRUD operations for one entity type
type Repository interface {
	// GetByID retrieves a single record by its ID
	GetByID(ctx context.Context, id ID) (map[string]interface{}, error)

	// FindOne retrieves the first record matching the query
	FindOne(ctx context.Context, query *Query) (map[string]interface{}, error)

	// FindMany retrieves records matching the query with pagination
	FindMany(ctx context.Context, query *Query) (*ResultPage, error)

	// Create inserts a new record. Unique constraint violations come back
	// as ErrUniqueConstraint; the insert-or-conflict check is atomic.
	Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error)

	// Update modifies an existing record by ID
	Update(ctx context.Context, id ID, data map[string]interface{}) (map[string]interface{}, error)

	// Delete removes a record by ID, honoring the schema's OnDelete rules
	Delete(ctx context.Context, id ID) error

	// DeleteWhere removes every record matching the filters and reports how
	// many were removed
	DeleteWhere(ctx context.Context, where *Filters) (int64, error)

	// Count returns the number of records matching the query
	Count(ctx context.Context, query *Query) (int64, error)

	// GetSchema returns the schema behind this repository
	GetSchema() *Schema
}
