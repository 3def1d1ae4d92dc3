package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost-backend/internal/blog"
)

const maxUploadBytes = 10 << 20

// ListPosts returns one page of posts, oldest first. Supports ?search=
// (title substring), ?owner=, and ?category= narrowing.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	filter := blog.PostFilter{
		Search:     r.URL.Query().Get("search"),
		OwnerID:    r.URL.Query().Get("owner"),
		CategoryID: r.URL.Query().Get("category"),
	}

	posts, total, err := h.postSvc.List(r.Context(), filter, page)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]PostDTO, 0, len(posts))
	for _, post := range posts {
		dtos = append(dtos, toPostDTO(post))
	}

	h.writeJSON(w, http.StatusOK, PaginatedResponse{
		Results:  dtos,
		Total:    total,
		Page:     page,
		PageSize: h.config.API.PageSize,
	})
}

// GetPost returns a post with images and reaction counts
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.postSvc.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPostDetailDTO(detail, h.mediaBase()))
}

// CreatePost inserts a post owned by the caller
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input blog.CreatePostInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	post, err := h.postSvc.Create(r.Context(), UserFromContext(r.Context()), input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toPostDTO(post))
}

// UpdatePost modifies a post. Owner only.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input blog.UpdatePostInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	post, err := h.postSvc.Update(r.Context(), UserFromContext(r.Context()), id, input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPostDTO(post))
}

// DeletePost removes a post. Owner or administrator.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.postSvc.Delete(r.Context(), UserFromContext(r.Context()), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPostComments returns a post's comments, oldest first
func (h *Handler) ListPostComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	comments, err := h.commentSvc.ListForPost(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		dtos = append(dtos, toCommentDTO(comment))
	}

	h.writeJSON(w, http.StatusOK, dtos)
}

// CreatePostComment attaches a comment to a post
func (h *Handler) CreatePostComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CreateCommentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentSvc.Create(r.Context(), UserFromContext(r.Context()), id, req.Content)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toCommentDTO(comment))
}

// ListPostLikes returns the users who liked a post
func (h *Handler) ListPostLikes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	users, err := h.reactionSvc.ListPostLikers(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}

	h.writeJSON(w, http.StatusOK, dtos)
}

// LikePost records the caller's like. Liking twice is a 400.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	like, err := h.reactionSvc.AddLike(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toLikeDTO(like))
}

// UnlikePost removes the caller's like. Missing like is a 404.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.reactionSvc.RemoveLike(r.Context(), UserFromContext(r.Context()), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FavoritePost bookmarks a post for the caller. Bookmarking twice is a 400.
func (h *Handler) FavoritePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	favorite, err := h.reactionSvc.AddFavorite(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toFavoriteDTO(favorite))
}

// UnfavoritePost drops the caller's bookmark. Missing bookmark is a 404.
func (h *Handler) UnfavoritePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.reactionSvc.RemoveFavorite(r.Context(), UserFromContext(r.Context()), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPostImage stores a multipart image upload under a server-generated
// name and attaches it to the post.
func (h *Handler) UploadPostImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_UPLOAD", "request is not a valid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_UPLOAD", "missing image field")
		return
	}
	defer file.Close()

	image, err := h.postSvc.AddImage(r.Context(), UserFromContext(r.Context()), id, file, header.Filename)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toPostImageDTO(image, h.mediaBase()))
}
