package api

import (
	"github.com/inkpost/inkpost-backend/internal/blog"
	"github.com/inkpost/inkpost-backend/internal/db/entities"
)

// ErrorResponse is the uniform error body. Details carries per-field
// validation messages when present.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// PaginatedResponse wraps one page of results
type PaginatedResponse struct {
	Results  interface{} `json:"results"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt int64  `json:"created_at"`
}

type UserDetailDTO struct {
	UserDTO
	Comments []CommentDTO `json:"comments"`
}

type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type PostDTO struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	OwnerID    string  `json:"owner_id"`
	CategoryID *string `json:"category_id"`
	Preview    *string `json:"preview"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

type PostDetailDTO struct {
	PostDTO
	Images        []PostImageDTO `json:"images"`
	LikeCount     int64          `json:"like_count"`
	FavoriteCount int64          `json:"favorite_count"`
}

type PostImageDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	PostID    string `json:"post_id"`
	CreatedAt int64  `json:"created_at"`
}

type CommentDTO struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	OwnerID   string `json:"owner_id"`
	PostID    string `json:"post_id"`
	CreatedAt int64  `json:"created_at"`
}

type FavoriteDTO struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	PostID    string `json:"post_id"`
	CreatedAt int64  `json:"created_at"`
}

type LikeDTO struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	PostID    string `json:"post_id"`
	CreatedAt int64  `json:"created_at"`
}

type CategoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateCommentRequest struct {
	PostID  string `json:"post_id,omitempty"`
	Content string `json:"content"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func toUserDTO(user *entities.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.Unix(),
	}
}

func toPostDTO(post *entities.Post) PostDTO {
	return PostDTO{
		ID:         post.ID,
		Title:      post.Title,
		Body:       post.Body,
		OwnerID:    post.OwnerID,
		CategoryID: post.CategoryID,
		Preview:    post.Preview,
		CreatedAt:  post.CreatedAt.Unix(),
		UpdatedAt:  post.UpdatedAt.Unix(),
	}
}

func toPostDetailDTO(detail *blog.PostDetail, mediaBase string) PostDetailDTO {
	images := make([]PostImageDTO, 0, len(detail.Images))
	for _, image := range detail.Images {
		images = append(images, toPostImageDTO(image, mediaBase))
	}
	return PostDetailDTO{
		PostDTO:       toPostDTO(detail.Post),
		Images:        images,
		LikeCount:     detail.LikeCount,
		FavoriteCount: detail.FavoriteCount,
	}
}

func toPostImageDTO(image *entities.PostImage, mediaBase string) PostImageDTO {
	return PostImageDTO{
		ID:        image.ID,
		Title:     image.Title,
		URL:       mediaBase + "/" + image.Path,
		PostID:    image.PostID,
		CreatedAt: image.CreatedAt.Unix(),
	}
}

func toCommentDTO(comment *entities.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		OwnerID:   comment.OwnerID,
		PostID:    comment.PostID,
		CreatedAt: comment.CreatedAt.Unix(),
	}
}

func toFavoriteDTO(favorite *entities.Favorite) FavoriteDTO {
	return FavoriteDTO{
		ID:        favorite.ID,
		OwnerID:   favorite.OwnerID,
		PostID:    favorite.PostID,
		CreatedAt: favorite.CreatedAt.Unix(),
	}
}

func toLikeDTO(like *entities.Like) LikeDTO {
	return LikeDTO{
		ID:        like.ID,
		OwnerID:   like.OwnerID,
		PostID:    like.PostID,
		CreatedAt: like.CreatedAt.Unix(),
	}
}

func toCategoryDTO(category *entities.Category) CategoryDTO {
	return CategoryDTO{ID: category.ID, Name: category.Name}
}
