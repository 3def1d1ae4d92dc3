package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListCategories returns every category
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categorySvc.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, toCategoryDTO(category))
	}

	h.writeJSON(w, http.StatusOK, dtos)
}

// GetCategory returns a single category
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	category, err := h.categorySvc.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCategoryDTO(category))
}

// CreateCategory adds a category. Administrators only.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categorySvc.Create(r.Context(), UserFromContext(r.Context()), req.Name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toCategoryDTO(category))
}

// DeleteCategory removes a category. Administrators only; posts keep
// existing with a null category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.categorySvc.Delete(r.Context(), UserFromContext(r.Context()), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
