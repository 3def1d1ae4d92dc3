package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/db/query"
)

// Repository implements interfaces.Repository over the in-memory tables.
// Unique-index checks run while holding the database write lock, so a
// create is an atomic insert-or-conflict.
type Repository struct {
	db        *Database
	schema    *interfaces.Schema
	builder   *query.Builder
	tableName string
}

// NewRepository creates a repository for a schema
func NewRepository(db *Database, schema *interfaces.Schema) *Repository {
	return &Repository{
		db:        db,
		schema:    schema,
		builder:   query.NewBuilder(schema),
		tableName: schema.TableName,
	}
}

// GetByID retrieves a single record by its ID
func (r *Repository) GetByID(ctx context.Context, id interfaces.ID) (map[string]interface{}, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	table, exists := r.db.tables[r.tableName]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	record, exists := table[id.String()]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	return copyRecord(record), nil
}

// FindOne retrieves the first record matching the query
func (r *Repository) FindOne(ctx context.Context, q *interfaces.Query) (map[string]interface{}, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	limit := 1
	q.Limit = &limit

	result, err := r.FindMany(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		return nil, interfaces.ErrNotFound
	}

	return result.Data[0], nil
}

// FindMany retrieves records matching the query with pagination
func (r *Repository) FindMany(ctx context.Context, q *interfaces.Query) (*interfaces.ResultPage, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	r.db.mu.RLock()
	table, exists := r.db.tables[r.tableName]
	if !exists {
		r.db.mu.RUnlock()
		return &interfaces.ResultPage{
			Data:     []map[string]interface{}{},
			Total:    0,
			Page:     1,
			PageSize: 0,
		}, nil
	}

	records := make([]map[string]interface{}, 0, len(table))
	for _, record := range table {
		records = append(records, copyRecord(record))
	}
	r.db.mu.RUnlock()

	if q.Where != nil {
		filtered := records[:0]
		for _, record := range records {
			if r.builder.MatchesFilters(record, q.Where) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	total := int64(len(records))

	if len(q.OrderBy) > 0 {
		records = r.builder.ApplySort(records, q.OrderBy)
	}

	offset := 0
	if q.Offset != nil {
		offset = *q.Offset
	}
	pageSize := len(records)
	if q.Limit != nil {
		pageSize = *q.Limit
	}

	records = r.builder.ApplyPagination(records, q.Limit, q.Offset)

	if len(q.Select) > 0 {
		projected := make([]map[string]interface{}, 0, len(records))
		for _, record := range records {
			row := make(map[string]interface{}, len(q.Select))
			for _, field := range q.Select {
				if value, ok := record[field]; ok {
					row[field] = value
				}
			}
			projected = append(projected, row)
		}
		records = projected
	}

	page := 1
	if pageSize > 0 {
		page = (offset / pageSize) + 1
	}

	return &interfaces.ResultPage{
		Data:     records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create inserts a new record
func (r *Repository) Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	if err := r.builder.ValidateData(data); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	record := copyRecord(data)

	if _, exists := record["id"]; !exists {
		record["id"] = uuid.New().String()
	}

	now := time.Now().UTC()
	record["created_at"] = now
	record["updated_at"] = now

	for fieldName, fieldSchema := range r.schema.Fields {
		if _, exists := record[fieldName]; !exists && fieldSchema.DefaultValue != nil {
			record[fieldName] = fieldSchema.DefaultValue
		}
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.tables[r.tableName]; !exists {
		r.db.tables[r.tableName] = make(map[string]map[string]interface{})
	}

	table := r.db.tables[r.tableName]
	id := record["id"].(string)

	if _, exists := table[id]; exists {
		return nil, fmt.Errorf("%w: id '%s'", interfaces.ErrUniqueConstraint, id)
	}

	if err := r.checkUniqueLocked(table, record, ""); err != nil {
		return nil, err
	}
	if err := r.checkForeignKeysLocked(record); err != nil {
		return nil, err
	}

	table[id] = record

	return copyRecord(record), nil
}

// Update modifies an existing record by ID
func (r *Repository) Update(ctx context.Context, id interfaces.ID, data map[string]interface{}) (map[string]interface{}, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	table, exists := r.db.tables[r.tableName]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	existing, exists := table[id.String()]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	updated := copyRecord(existing)
	for k, v := range data {
		updated[k] = v
	}
	updated["updated_at"] = time.Now().UTC()

	if err := r.checkUniqueLocked(table, updated, id.String()); err != nil {
		return nil, err
	}
	if err := r.checkForeignKeysLocked(updated); err != nil {
		return nil, err
	}

	table[id.String()] = updated

	return copyRecord(updated), nil
}

// Delete removes a record by ID, applying the OnDelete rules declared by
// schemas that reference this table.
func (r *Repository) Delete(ctx context.Context, id interfaces.ID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.deleteLocked(r.tableName, id.String())
}

// DeleteWhere removes every record matching the filters
func (r *Repository) DeleteWhere(ctx context.Context, where *interfaces.Filters) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	table, exists := r.db.tables[r.tableName]
	if !exists {
		return 0, nil
	}

	var ids []string
	for id, record := range table {
		if r.builder.MatchesFilters(record, where) {
			ids = append(ids, id)
		}
	}

	for _, id := range ids {
		if err := r.deleteLocked(r.tableName, id); err != nil {
			return 0, err
		}
	}

	return int64(len(ids)), nil
}

// deleteLocked removes a row and resolves referencing rows per their
// schema's OnDelete action. Caller must hold the database write lock.
func (r *Repository) deleteLocked(tableName, id string) error {
	table, exists := r.db.tables[tableName]
	if !exists {
		return interfaces.ErrNotFound
	}
	if _, exists := table[id]; !exists {
		return interfaces.ErrNotFound
	}

	for refTable, refSchema := range r.db.schemas {
		for fieldName, fieldSchema := range refSchema.Fields {
			fk := fieldSchema.ForeignKey
			if fk == nil || fk.Table != tableName {
				continue
			}

			referencing := r.db.tables[refTable]
			for refID, refRecord := range referencing {
				if refRecord[fieldName] != id {
					continue
				}
				switch fk.OnDelete {
				case interfaces.OnDeleteCascade:
					if err := r.deleteLocked(refTable, refID); err != nil {
						return err
					}
				case interfaces.OnDeleteSetNull:
					refRecord[fieldName] = nil
					refRecord["updated_at"] = time.Now().UTC()
				default:
					return fmt.Errorf("%w: %s.%s references %s '%s'",
						interfaces.ErrForeignKeyConstraint, refTable, fieldName, tableName, id)
				}
			}
		}
	}

	delete(table, id)
	return nil
}

// Count returns the number of records matching the query
func (r *Repository) Count(ctx context.Context, q *interfaces.Query) (int64, error) {
	if q == nil || q.Where == nil {
		r.db.mu.RLock()
		defer r.db.mu.RUnlock()
		return int64(len(r.db.tables[r.tableName])), nil
	}

	result, err := r.FindMany(ctx, &interfaces.Query{Where: q.Where})
	if err != nil {
		return 0, err
	}

	return result.Total, nil
}

// GetSchema returns the schema behind this repository
func (r *Repository) GetSchema() *interfaces.Schema {
	return r.schema
}

func (r *Repository) checkUniqueLocked(table map[string]map[string]interface{}, record map[string]interface{}, excludeID string) error {
	for fieldName, fieldSchema := range r.schema.Fields {
		if !fieldSchema.Unique {
			continue
		}

		value, exists := record[fieldName]
		if !exists || value == nil {
			continue
		}

		for id, existing := range table {
			if id == excludeID {
				continue
			}
			if existing[fieldName] == value {
				return fmt.Errorf("%w: field '%s' value '%v'", interfaces.ErrUniqueConstraint, fieldName, value)
			}
		}
	}

	for _, index := range r.schema.Indexes {
		if !index.Unique {
			continue
		}

		for id, existing := range table {
			if id == excludeID {
				continue
			}

			match := true
			for _, column := range index.Columns {
				if record[column] != existing[column] {
					match = false
					break
				}
			}
			if match {
				return fmt.Errorf("%w: unique index '%s'", interfaces.ErrUniqueConstraint, index.Name)
			}
		}
	}

	return nil
}

func (r *Repository) checkForeignKeysLocked(record map[string]interface{}) error {
	for fieldName, fieldSchema := range r.schema.Fields {
		fk := fieldSchema.ForeignKey
		if fk == nil {
			continue
		}

		value, exists := record[fieldName]
		if !exists || value == nil {
			continue
		}

		refTable, exists := r.db.tables[fk.Table]
		if !exists {
			return fmt.Errorf("%w: referenced table '%s' does not exist", interfaces.ErrForeignKeyConstraint, fk.Table)
		}

		found := false
		for _, refRecord := range refTable {
			if refRecord[fk.Column] == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: field '%s' references missing record '%v'", interfaces.ErrForeignKeyConstraint, fieldName, value)
		}
	}

	return nil
}
