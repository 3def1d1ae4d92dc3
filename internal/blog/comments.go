package blog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// CommentService handles comments on posts
type CommentService struct {
	repos  *Repositories
	logger *zap.SugaredLogger
}

// NewCommentService creates a comment service
func NewCommentService(repos *Repositories, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{repos: repos, logger: logger}
}

// Create attaches a comment to a post. Commenting on a missing post is a
// not-found error, not a validation one.
func (s *CommentService) Create(ctx context.Context, actor *entities.User, postID, content string) (*entities.Comment, error) {
	if actor == nil {
		return nil, NewUnauthenticated("authentication required")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidation(map[string][]string{"content": {"content is required"}})
	}

	if _, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(postID)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}

	record, err := s.repos.Comments.Create(ctx, map[string]interface{}{
		"content":  content,
		"owner_id": actor.ID,
		"post_id":  postID,
	})
	if err != nil {
		return nil, NewInternal(err)
	}

	comment := entities.CommentFromRecord(record)
	s.logger.Infow("comment created", "comment_id", comment.ID, "post_id", postID, "owner_id", actor.ID)
	return comment, nil
}

// Get returns a single comment
func (s *CommentService) Get(ctx context.Context, id string) (*entities.Comment, error) {
	record, err := s.repos.Comments.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("comment")
		}
		return nil, NewInternal(err)
	}
	return entities.CommentFromRecord(record), nil
}

// ListForPost returns a post's comments, oldest first
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]*entities.Comment, error) {
	if _, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(postID)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}

	result, err := s.repos.Comments.FindMany(ctx, &interfaces.Query{
		Where:   eqFilter("post_id", postID),
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
	})
	if err != nil {
		return nil, NewInternal(err)
	}

	comments := make([]*entities.Comment, 0, len(result.Data))
	for _, record := range result.Data {
		comments = append(comments, entities.CommentFromRecord(record))
	}
	return comments, nil
}

// Delete removes a comment. The comment author, the post owner, and
// administrators may delete.
func (s *CommentService) Delete(ctx context.Context, actor *entities.User, id string) error {
	if actor == nil {
		return NewUnauthenticated("authentication required")
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var post *entities.Post
	if record, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(comment.PostID)); err == nil {
		post = entities.PostFromRecord(record)
	}

	if !CanDeleteComment(actor, comment, post) {
		return NewPermissionDenied("not allowed to delete this comment")
	}

	if err := s.repos.Comments.Delete(ctx, interfaces.StringID(id)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return NewNotFound("comment")
		}
		return NewInternal(err)
	}

	s.logger.Infow("comment deleted", "comment_id", id, "actor_id", actor.ID)
	return nil
}
