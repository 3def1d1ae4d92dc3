package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost-backend/internal/blog"
)

// CreateComment creates a comment on the post named in the request body
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.PostID == "" {
		h.writeDomainError(w, blog.NewValidation(map[string][]string{
			"post_id": {"post_id is required"},
		}))
		return
	}

	comment, err := h.commentSvc.Create(r.Context(), UserFromContext(r.Context()), req.PostID, req.Content)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toCommentDTO(comment))
}

// GetComment returns a single comment
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	comment, err := h.commentSvc.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCommentDTO(comment))
}

// DeleteComment removes a comment. Author, post owner, or administrator.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.commentSvc.Delete(r.Context(), UserFromContext(r.Context()), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
