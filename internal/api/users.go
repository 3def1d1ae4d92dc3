package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListUsers returns one page of users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	users, total, err := h.userSvc.List(r.Context(), page)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}

	h.writeJSON(w, http.StatusOK, PaginatedResponse{
		Results:  dtos,
		Total:    total,
		Page:     page,
		PageSize: h.config.API.PageSize,
	})
}

// GetUser returns a user with the comments they wrote
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, comments, err := h.userSvc.GetDetail(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	commentDTOs := make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		commentDTOs = append(commentDTOs, toCommentDTO(comment))
	}

	h.writeJSON(w, http.StatusOK, UserDetailDTO{
		UserDTO:  toUserDTO(user),
		Comments: commentDTOs,
	})
}

// DeleteUser removes an account
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := UserFromContext(r.Context())

	if err := h.userSvc.Delete(r.Context(), actor, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUserFavorites returns the posts a user bookmarked
func (h *Handler) ListUserFavorites(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.userSvc.GetByID(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	posts, err := h.reactionSvc.ListFavorites(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]PostDTO, 0, len(posts))
	for _, post := range posts {
		dtos = append(dtos, toPostDTO(post))
	}

	h.writeJSON(w, http.StatusOK, dtos)
}

// pageParam reads the 1-based ?page= query parameter
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
