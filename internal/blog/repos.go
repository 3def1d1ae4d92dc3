package blog

import (
	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Repositories bundles one repository per entity, all backed by the same
// database.
type Repositories struct {
	Users      interfaces.Repository
	Posts      interfaces.Repository
	PostImages interfaces.Repository
	Comments   interfaces.Repository
	Categories interfaces.Repository
	Favorites  interfaces.Repository
	Likes      interfaces.Repository
}

// NewRepositories opens a repository for every schema
func NewRepositories(database interfaces.Database) *Repositories {
	return &Repositories{
		Users:      database.Repository(entities.UserSchema),
		Posts:      database.Repository(entities.PostSchema),
		PostImages: database.Repository(entities.PostImageSchema),
		Comments:   database.Repository(entities.CommentSchema),
		Categories: database.Repository(entities.CategorySchema),
		Favorites:  database.Repository(entities.FavoriteSchema),
		Likes:      database.Repository(entities.LikeSchema),
	}
}

// eqFilter builds a single-field equality filter
func eqFilter(field string, value interface{}) *interfaces.Filters {
	return &interfaces.Filters{
		Conditions: []interfaces.Filter{
			{Field: field, Value: value},
		},
	}
}

// pairFilter matches records by owner and post, the shape shared by
// favorites and likes.
func pairFilter(ownerID, postID string) *interfaces.Filters {
	return &interfaces.Filters{
		Conditions: []interfaces.Filter{
			{Field: "owner_id", Value: ownerID},
			{Field: "post_id", Value: postID},
		},
	}
}
