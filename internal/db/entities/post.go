package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Post is the central entity of the service. Deleting the owner cascades to
// the post; deleting the category leaves the post with a null category.
type Post struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	CategoryID *string   `json:"category_id,omitempty" db:"category_id"`
	Preview    *string   `json:"preview,omitempty" db:"preview"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PostSchema defines the database schema for posts
var PostSchema = &interfaces.Schema{
	TableName: "posts",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"title": {
			Type:   "string",
			Unique: true,
		},
		"body": {
			Type:         "string",
			DefaultValue: "",
		},
		"owner_id": {
			Type: "string",
			ForeignKey: &interfaces.ForeignKey{
				Table:    "users",
				Column:   "id",
				OnDelete: interfaces.OnDeleteCascade,
			},
		},
		"category_id": {
			Type:     "string",
			Nullable: true,
			ForeignKey: &interfaces.ForeignKey{
				Table:    "categories",
				Column:   "id",
				OnDelete: interfaces.OnDeleteSetNull,
			},
		},
		"preview": {
			Type:     "string",
			Nullable: true,
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
			Name:    "idx_posts_title",
			Columns: []string{"title"},
			Unique:  true,
		},
		{
			Name:    "idx_posts_owner",
			Columns: []string{"owner_id"},
		},
		{
			Name:    "idx_posts_category",
			Columns: []string{"category_id"},
		},
	},
}

// PostFromRecord converts a repository record into a Post
func PostFromRecord(record map[string]interface{}) *Post {
	return &Post{
		ID:         stringField(record, "id"),
		Title:      stringField(record, "title"),
		Body:       stringField(record, "body"),
		OwnerID:    stringField(record, "owner_id"),
		CategoryID: nullableStringField(record, "category_id"),
		Preview:    nullableStringField(record, "preview"),
		CreatedAt:  timeField(record, "created_at"),
		UpdatedAt:  timeField(record, "updated_at"),
	}
}
