package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Like links a user to a post they liked, at most one per pair.
type Like struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	PostID    string    `json:"post_id" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LikeSchema defines the database schema for likes
var LikeSchema = &interfaces.Schema{
	TableName: "likes",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
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
			Name:    "idx_likes_owner_post",
			Columns: []string{"owner_id", "post_id"},
			Unique:  true,
		},
	},
}

// LikeFromRecord converts a repository record into a Like
func LikeFromRecord(record map[string]interface{}) *Like {
	return &Like{
		ID:        stringField(record, "id"),
		OwnerID:   stringField(record, "owner_id"),
		PostID:    stringField(record, "post_id"),
		CreatedAt: timeField(record, "created_at"),
		UpdatedAt: timeField(record, "updated_at"),
	}
}
