package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Category is a reference entity attached to posts
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CategorySchema defines the database schema for categories
var CategorySchema = &interfaces.Schema{
	TableName: "categories",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"name": {
			Type:   "string",
			Unique: true,
		},
		"created_at": {
			Type: "time",
		},
		"updated_at": {
			Type: "time",
		},
	},
	Indexes: []interfaces.Index{
		{
			Name:    "idx_categories_name",
			Columns: []string{"name"},
			Unique:  true,
		},
	},
}

// CategoryFromRecord converts a repository record into a Category
func CategoryFromRecord(record map[string]interface{}) *Category {
	return &Category{
		ID:        stringField(record, "id"),
		Name:      stringField(record, "name"),
		CreatedAt: timeField(record, "created_at"),
		UpdatedAt: timeField(record, "updated_at"),
	}
}
