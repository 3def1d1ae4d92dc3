package api

import (
	"net/http"
	"strings"

	"github.com/inkpost/inkpost-backend/internal/blog"
)

// Register creates a new account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input blog.RegisterInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	user, err := h.userSvc.Register(r.Context(), input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// Login checks credentials and opens a session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userSvc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "SESSION_ERROR", "failed to open session")
		return
	}

	h.metrics.SessionOpened(r.Context())
	h.logger.Infow("session opened", "user_id", user.ID)

	h.writeJSON(w, http.StatusOK, SessionDTO{Token: token, User: toUserDTO(user)})
}

// Logout revokes the presented session token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
		return
	}

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.writeError(w, http.StatusInternalServerError, "SESSION_ERROR", "failed to close session")
		return
	}

	h.metrics.SessionClosed(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTO(user))
}
