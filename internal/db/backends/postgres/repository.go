package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/db/query"
)

// Repository implements interfaces.Repository by generating SQL from the
// schema. Uniqueness is enforced by the database's own constraints, so a
// create is a single atomic insert-or-conflict statement.
type Repository struct {
	db        *Database
	schema    *interfaces.Schema
	builder   *query.Builder
	tableName string
	columns   []string
}

// NewRepository creates a repository for a schema
func NewRepository(db *Database, schema *interfaces.Schema) *Repository {
	builder := query.NewBuilder(schema)
	return &Repository{
		db:        db,
		schema:    schema,
		builder:   builder,
		tableName: schema.TableName,
		columns:   builder.Columns(),
	}
}

// GetByID retrieves a single record by its ID
func (r *Repository) GetByID(ctx context.Context, id interfaces.ID) (map[string]interface{}, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(r.columns, ", "), r.tableName)

	rows, err := r.db.pool.Query(ctx, sql, id.String())
	if err != nil {
		return nil, wrapError("get", err)
	}
	defer rows.Close()

	records, err := r.collect(rows)
	if err != nil {
		return nil, wrapError("get", err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return records[0], nil
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

	cols := r.columns
	if len(q.Select) > 0 {
		cols = q.Select
	}

	where, args := r.builder.WhereSQL(q.Where, 0)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(cols, ", "), r.tableName)
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}
	if order := r.builder.OrderSQL(q.OrderBy); order != "" {
		sb.WriteString(" ORDER BY " + order)
	}
	if q.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *q.Limit)
	}
	if q.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *q.Offset)
	}

	rows, err := r.db.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, wrapError("find", err)
	}
	defer rows.Close()

	records, err := r.collect(rows)
	if err != nil {
		return nil, wrapError("find", err)
	}

	total, err := r.Count(ctx, &interfaces.Query{Where: q.Where})
	if err != nil {
		return nil, err
	}

	offset := 0
	if q.Offset != nil {
		offset = *q.Offset
	}
	pageSize := len(records)
	if q.Limit != nil {
		pageSize = *q.Limit
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

	record := make(map[string]interface{}, len(data)+3)
	for k, v := range data {
		record[k] = v
	}

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

	var cols []string
	var placeholders []string
	var args []interface{}
	for _, col := range r.columns {
		value, exists := record[col]
		if !exists {
			continue
		}
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, value)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.tableName,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(r.columns, ", "))

	rows, err := r.db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("create", err)
	}
	defer rows.Close()

	records, err := r.collect(rows)
	if err != nil {
		return nil, wrapError("create", err)
	}
	if len(records) == 0 {
		return nil, wrapError("create", errors.New("insert returned no row"))
	}
	return records[0], nil
}

// Update modifies an existing record by ID
func (r *Repository) Update(ctx context.Context, id interfaces.ID, data map[string]interface{}) (map[string]interface{}, error) {
	var sets []string
	var args []interface{}
	for _, col := range r.columns {
		value, exists := data[col]
		if !exists || col == "id" || col == "created_at" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, value)
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, time.Now().UTC())

	args = append(args, id.String())
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		r.tableName, strings.Join(sets, ", "), len(args), strings.Join(r.columns, ", "))

	rows, err := r.db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("update", err)
	}
	defer rows.Close()

	records, err := r.collect(rows)
	if err != nil {
		return nil, wrapError("update", err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return records[0], nil
}

// Delete removes a record by ID. Referential actions run inside Postgres
// per the migrations' ON DELETE clauses.
func (r *Repository) Delete(ctx context.Context, id interfaces.ID) error {
	tag, err := r.db.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.tableName), id.String())
	if err != nil {
		return wrapError("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every record matching the filters
func (r *Repository) DeleteWhere(ctx context.Context, where *interfaces.Filters) (int64, error) {
	clause, args := r.builder.WhereSQL(where, 0)

	sql := "DELETE FROM " + r.tableName
	if clause != "" {
		sql += " WHERE " + clause
	}

	tag, err := r.db.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, wrapError("delete", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of records matching the query
func (r *Repository) Count(ctx context.Context, q *interfaces.Query) (int64, error) {
	var clause string
	var args []interface{}
	if q != nil {
		clause, args = r.builder.WhereSQL(q.Where, 0)
	}

	sql := "SELECT COUNT(*) FROM " + r.tableName
	if clause != "" {
		sql += " WHERE " + clause
	}

	var count int64
	if err := r.db.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, wrapError("count", err)
	}
	return count, nil
}

// GetSchema returns the schema behind this repository
func (r *Repository) GetSchema() *interfaces.Schema {
	return r.schema
}

// collect materializes rows as records keyed by column name
func (r *Repository) collect(rows pgx.Rows) ([]map[string]interface{}, error) {
	records := []map[string]interface{}{}
	fields := rows.FieldDescriptions()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]interface{}, len(fields))
		for i, field := range fields {
			record[string(field.Name)] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func wrapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", interfaces.ErrUniqueConstraint, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", interfaces.ErrForeignKeyConstraint, pgErr.ConstraintName)
		}
	}
	return &interfaces.DatabaseError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, interfaces.ErrUniqueConstraint)
}
