package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Favorite is a bookmark linking a user to a post, at most one per pair.
// The unique (owner_id, post_id) index makes the add operation atomic: a
// second insert for the same pair fails with ErrUniqueConstraint instead of
// racing a separate existence check.
type Favorite struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	PostID    string    `json:"post_id" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FavoriteSchema defines the database schema for favorites
var FavoriteSchema = &interfaces.Schema{
	TableName: "favorites",
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
			Name:    "idx_favorites_owner_post",
			Columns: []string{"owner_id", "post_id"},
			Unique:  true,
		},
	},
}

// FavoriteFromRecord converts a repository record into a Favorite
func FavoriteFromRecord(record map[string]interface{}) *Favorite {
	return &Favorite{
		ID:        stringField(record, "id"),
		OwnerID:   stringField(record, "owner_id"),
		PostID:    stringField(record, "post_id"),
		CreatedAt: timeField(record, "created_at"),
		UpdatedAt: timeField(record, "updated_at"),
	}
}
