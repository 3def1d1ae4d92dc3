package blog

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/db/entities"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/media"
)

// PostService handles the post lifecycle and attached images
type PostService struct {
	repos    *Repositories
	storage  *media.Storage
	logger   *zap.SugaredLogger
	pageSize int
}

// NewPostService creates a post service
func NewPostService(repos *Repositories, storage *media.Storage, pageSize int, logger *zap.SugaredLogger) *PostService {
	return &PostService{
		repos:    repos,
		storage:  storage,
		logger:   logger,
		pageSize: pageSize,
	}
}

// PostFilter narrows a post listing
type PostFilter struct {
	Search     string // title substring, case-insensitive
	OwnerID    string
	CategoryID string
}

// PostDetail is a post with its images and reaction counts
type PostDetail struct {
	Post          *entities.Post
	Images        []*entities.PostImage
	LikeCount     int64
	FavoriteCount int64
}

// CreatePostInput carries the fields accepted on post creation
type CreatePostInput struct {
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	CategoryID *string `json:"category_id,omitempty"`
	Preview    *string `json:"preview,omitempty"`
}

// UpdatePostInput carries the fields accepted on post update. Nil fields
// are left untouched.
type UpdatePostInput struct {
	Title      *string `json:"title,omitempty"`
	Body       *string `json:"body,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Preview    *string `json:"preview,omitempty"`
}

// List returns one page of posts ordered oldest first, optionally narrowed
// by title search, owner, and category.
func (s *PostService) List(ctx context.Context, filter PostFilter, page int) ([]*entities.Post, int64, error) {
	var conditions []interfaces.Filter
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, interfaces.Filter{
			Field:    "title",
			Operator: &interfaces.FilterOperator{Like: search},
		})
	}
	if filter.OwnerID != "" {
		conditions = append(conditions, interfaces.Filter{Field: "owner_id", Value: filter.OwnerID})
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, interfaces.Filter{Field: "category_id", Value: filter.CategoryID})
	}

	query := &interfaces.Query{
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
	}
	if len(conditions) > 0 {
		query.Where = &interfaces.Filters{Conditions: conditions}
	}
	limit, offset := pageBounds(page, s.pageSize)
	query.Limit = &limit
	query.Offset = &offset

	result, err := s.repos.Posts.FindMany(ctx, query)
	if err != nil {
		return nil, 0, NewInternal(err)
	}

	posts := make([]*entities.Post, 0, len(result.Data))
	for _, record := range result.Data {
		posts = append(posts, entities.PostFromRecord(record))
	}
	return posts, result.Total, nil
}

// Get returns a post with its images and like/favorite counts
func (s *PostService) Get(ctx context.Context, id string) (*PostDetail, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.Images(ctx, id)
	if err != nil {
		return nil, err
	}

	likeCount, err := s.repos.Likes.Count(ctx, &interfaces.Query{Where: eqFilter("post_id", id)})
	if err != nil {
		return nil, NewInternal(err)
	}
	favoriteCount, err := s.repos.Favorites.Count(ctx, &interfaces.Query{Where: eqFilter("post_id", id)})
	if err != nil {
		return nil, NewInternal(err)
	}

	return &PostDetail{
		Post:          post,
		Images:        images,
		LikeCount:     likeCount,
		FavoriteCount: favoriteCount,
	}, nil
}

// Create inserts a post owned by the actor
func (s *PostService) Create(ctx context.Context, actor *entities.User, input CreatePostInput) (*entities.Post, error) {
	if actor == nil {
		return nil, NewUnauthenticated("authentication required")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, NewValidation(map[string][]string{"title": {"title is required"}})
	}

	data := map[string]interface{}{
		"title":    input.Title,
		"body":     input.Body,
		"owner_id": actor.ID,
	}
	if input.CategoryID != nil {
		data["category_id"] = *input.CategoryID
	}
	if input.Preview != nil {
		data["preview"] = *input.Preview
	}

	record, err := s.repos.Posts.Create(ctx, data)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrUniqueConstraint):
			return nil, NewConflict("a post with this title already exists")
		case errors.Is(err, interfaces.ErrForeignKeyConstraint):
			return nil, NewValidation(map[string][]string{"category_id": {"category does not exist"}})
		}
		return nil, NewInternal(err)
	}

	post := entities.PostFromRecord(record)
	s.logger.Infow("post created", "post_id", post.ID, "owner_id", actor.ID)
	return post, nil
}

// Update modifies a post. Only the owner may edit.
func (s *PostService) Update(ctx context.Context, actor *entities.User, id string, input UpdatePostInput) (*entities.Post, error) {
	if actor == nil {
		return nil, NewUnauthenticated("authentication required")
	}

	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEditPost(actor, post) {
		return nil, NewPermissionDenied("only the owner can edit a post")
	}

	data := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, NewValidation(map[string][]string{"title": {"title is required"}})
		}
		data["title"] = title
	}
	if input.Body != nil {
		data["body"] = *input.Body
	}
	if input.CategoryID != nil {
		data["category_id"] = *input.CategoryID
	}
	if input.Preview != nil {
		data["preview"] = *input.Preview
	}
	if len(data) == 0 {
		return post, nil
	}

	record, err := s.repos.Posts.Update(ctx, interfaces.StringID(id), data)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrUniqueConstraint):
			return nil, NewConflict("a post with this title already exists")
		case errors.Is(err, interfaces.ErrForeignKeyConstraint):
			return nil, NewValidation(map[string][]string{"category_id": {"category does not exist"}})
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}

	return entities.PostFromRecord(record), nil
}

// Delete removes a post and its stored image files. The owner or an
// administrator may delete; comments, images, and reactions cascade away.
func (s *PostService) Delete(ctx context.Context, actor *entities.User, id string) error {
	if actor == nil {
		return NewUnauthenticated("authentication required")
	}

	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeletePost(actor, post) {
		return NewPermissionDenied("only the owner or an administrator can delete a post")
	}

	images, err := s.Images(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repos.Posts.Delete(ctx, interfaces.StringID(id)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return NewNotFound("post")
		}
		return NewInternal(err)
	}

	for _, image := range images {
		if err := s.storage.Remove(image.Path); err != nil {
			s.logger.Warnw("failed to remove image file", "path", image.Path, "error", err)
		}
	}

	s.logger.Infow("post deleted", "post_id", id, "actor_id", actor.ID)
	return nil
}

// Images returns the images attached to a post, oldest first
func (s *PostService) Images(ctx context.Context, postID string) ([]*entities.PostImage, error) {
	result, err := s.repos.PostImages.FindMany(ctx, &interfaces.Query{
		Where:   eqFilter("post_id", postID),
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}},
	})
	if err != nil {
		return nil, NewInternal(err)
	}

	images := make([]*entities.PostImage, 0, len(result.Data))
	for _, record := range result.Data {
		images = append(images, entities.PostImageFromRecord(record))
	}
	return images, nil
}

// AddImage stores an uploaded file and attaches it to the post. Only the
// post owner may attach images; the image title is generated server side.
func (s *PostService) AddImage(ctx context.Context, actor *entities.User, postID string, src io.Reader, originalName string) (*entities.PostImage, error) {
	if actor == nil {
		return nil, NewUnauthenticated("authentication required")
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !CanEditPost(actor, post) {
		return nil, NewPermissionDenied("only the owner can attach images")
	}

	title, relPath, err := s.storage.Save(postID, src, originalName)
	if err != nil {
		return nil, NewInternal(err)
	}

	record, err := s.repos.PostImages.Create(ctx, map[string]interface{}{
		"title":   title,
		"path":    relPath,
		"post_id": postID,
	})
	if err != nil {
		_ = s.storage.Remove(relPath)
		return nil, NewInternal(err)
	}

	image := entities.PostImageFromRecord(record)
	s.logger.Infow("image attached", "post_id", postID, "image_id", image.ID)
	return image, nil
}

func (s *PostService) getPost(ctx context.Context, id string) (*entities.Post, error) {
	record, err := s.repos.Posts.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, NewNotFound("post")
		}
		return nil, NewInternal(err)
	}
	return entities.PostFromRecord(record), nil
}
