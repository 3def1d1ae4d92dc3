package db

import (
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// AllSchemas returns every entity schema in dependency order, so migration
// and seeding can create referenced tables first.
func AllSchemas() []*interfaces.Schema {
	return []*interfaces.Schema{
		entities.UserSchema,
		entities.CategorySchema,
		entities.PostSchema,
		entities.PostImageSchema,
		entities.CommentSchema,
		entities.FavoriteSchema,
		entities.LikeSchema,
	}
}
