package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// PostImage is an uploaded image attached to a post. Its title is generated
// by the server on upload; deleting the post cascades to its images.
type PostImage struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Path      string    `json:"path" db:"path"`
	PostID    string    `json:"post_id" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PostImageSchema defines the database schema for post images
var PostImageSchema = &interfaces.Schema{
	TableName: "post_images",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"title": {
			Type: "string",
		},
		"path": {
			Type: "string",
		},
		"post_id": {
			Type: "string",
			ForeignKey: &interfaces.ForeignKey{
				Table:    "posts",
				Column:   "id",
				OnDelete: interfaces.OnDeleteCascade,
			},
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
			Name:    "idx_post_images_post",
			Columns: []string{"post_id"},
		},
	},
}

// PostImageFromRecord converts a repository record into a PostImage
func PostImageFromRecord(record map[string]interface{}) *PostImage {
	return &PostImage{
		ID:        stringField(record, "id"),
		Title:     stringField(record, "title"),
		Path:      stringField(record, "path"),
		PostID:    stringField(record, "post_id"),
		CreatedAt: timeField(record, "created_at"),
		UpdatedAt: timeField(record, "updated_at"),
	}
}
