package blog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// ReactionService handles likes and favorites. Both are one-row-per-(user,
// post) links; the add path is a single insert whose unique index rejects
// duplicates atomically.
type ReactionService struct {
	repos  *Repositories
	logger *zap.SugaredLogger
}

// NewReactionService creates a reaction service
func NewReactionService(repos *Repositories, logger *zap.SugaredLogger) *ReactionService {
	return &ReactionService{repos: repos, logger: logger}
}

// AddFavorite bookmarks a post for the actor
func (s *ReactionService) AddFavorite(ctx context.Context, actor *entities.User, postID string) (*entities.Favorite, error) {
	record, err := s.addReaction(ctx, s.repos.Favorites, actor, postID, "post already in favorites")
	if err != nil {
		return nil, err
	}
	return entities.FavoriteFromRecord(record), nil
}

// RemoveFavorite drops the actor's bookmark on a post. Removing a bookmark
// that does not exist is a not-found error.
func (s *ReactionService) RemoveFavorite(ctx context.Context, actor *entities.User, postID string) error {
	return s.removeReaction(ctx, s.repos.Favorites, actor, postID, "favorite")
}

// ListFavorites returns the posts the user has bookmarked, oldest bookmark
// first.
func (s *ReactionService) ListFavorites(ctx context.Context, ownerID string) ([]*entities.Post, error) {
	result, err := s.repos.Favorites.FindMany(ctx, &interfaces.Query{
		Where:   eqFilter("owner_id", ownerID),
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
	})
	if err != nil {
		return nil, NewInternal(err)
	}

	posts := make([]*entities.Post, 0, len(result.Data))
	for _, record := range result.Data {
		favorite := entities.FavoriteFromRecord(record)
		postRecord, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(favorite.PostID))
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, NewInternal(err)
		}
		posts = append(posts, entities.PostFromRecord(postRecord))
	}
	return posts, nil
}

// AddLike records the actor's like on a post
func (s *ReactionService) AddLike(ctx context.Context, actor *entities.User, postID string) (*entities.Like, error) {
	record, err := s.addReaction(ctx, s.repos.Likes, actor, postID, "post already liked")
	if err != nil {
		return nil, err
	}
	return entities.LikeFromRecord(record), nil
}

// RemoveLike drops the actor's like on a post
func (s *ReactionService) RemoveLike(ctx context.Context, actor *entities.User, postID string) error {
	return s.removeReaction(ctx, s.repos.Likes, actor, postID, "like")
}

// ListPostLikers returns the users who liked a post
func (s *ReactionService) ListPostLikers(ctx context.Context, postID string) ([]*entities.User, error) {
	if _, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(postID)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}

	result, err := s.repos.Likes.FindMany(ctx, &interfaces.Query{
		Where:   eqFilter("post_id", postID),
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
	})
	if err != nil {
		return nil, NewInternal(err)
	}

	users := make([]*entities.User, 0, len(result.Data))
	for _, record := range result.Data {
		like := entities.LikeFromRecord(record)
		userRecord, err := s.repos.Users.GetByID(ctx, interfaces.StringID(like.OwnerID))
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, NewInternal(err)
		}
		users = append(users, entities.UserFromRecord(userRecord))
	}
	return users, nil
}

func (s *ReactionService) addReaction(ctx context.Context, repo interfaces.Repository, actor *entities.User, postID, conflictMsg string) (map[string]interface{}, error) {
	if actor == nil {
		return nil, NewUnauthenticated("authentication required")
	}

	if _, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(postID)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}

	record, err := repo.Create(ctx, map[string]interface{}{
		"owner_id": actor.ID,
		"post_id":  postID,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrUniqueConstraint) {
			return nil, NewConflict(conflictMsg)
		}
		if errors.Is(err, interfaces.ErrForeignKeyConstraint) {
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}

	return record, nil
}

func (s *ReactionService) removeReaction(ctx context.Context, repo interfaces.Repository, actor *entities.User, postID, resource string) error {
	if actor == nil {
		return NewUnauthenticated("authentication required")
	}

	removed, err := repo.DeleteWhere(ctx, pairFilter(actor.ID, postID))
	if err != nil {
		return NewInternal(err)
	}
	if removed == 0 {
		return NewNotFound(resource)
	}

	return nil
}
