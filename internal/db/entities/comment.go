package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Comment belongs to a post and an owner. Visible to everyone; deletion is
// restricted to the comment author, the post owner, or an administrator.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	PostID    string    `json:"post_id" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CommentSchema defines the database schema for comments
var CommentSchema = &interfaces.Schema{
	TableName: "comments",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"content": {
			Type: "string",
		},
		"owner_id": {
			Type: "string",
			ForeignKey: &interfaces.ForeignKey{
				Table:    "users",
				Column:   "id",
				OnDelete: interfaces.OnDeleteCascade,
			},
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
			Name:    "idx_comments_post",
			Columns: []string{"post_id"},
		},
		{
			Name:    "idx_comments_owner",
			Columns: []string{"owner_id"},
		},
	},
}

// CommentFromRecord converts a repository record into a Comment
func CommentFromRecord(record map[string]interface{}) *Comment {
	return &Comment{
		ID:        stringField(record, "id"),
		Content:   stringField(record, "content"),
		OwnerID:   stringField(record, "owner_id"),
		PostID:    stringField(record, "post_id"),
		CreatedAt: timeField(record, "created_at"),
		UpdatedAt: timeField(record, "updated_at"),
	}
}
