package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/auth"
	"github.com/inkpost/inkpost-backend/internal/blog"
	"github.com/inkpost/inkpost-backend/internal/config"
	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/metrics"
	"github.com/inkpost/inkpost-backend/internal/store"
)

type Handler struct {
	userSvc     *blog.UserService
	postSvc     *blog.PostService
	commentSvc  *blog.CommentService
	categorySvc *blog.CategoryService
	reactionSvc *blog.ReactionService
	sessions    *auth.SessionManager
	database    interfaces.Database
	cache       *store.Cache
	config      *config.Config
	logger      *zap.SugaredLogger
	metrics     *metrics.Metrics
}

func NewHandler(
	userSvc *blog.UserService,
	postSvc *blog.PostService,
	commentSvc *blog.CommentService,
	categorySvc *blog.CategoryService,
	reactionSvc *blog.ReactionService,
	sessions *auth.SessionManager,
	database interfaces.Database,
	cache *store.Cache,
	cfg *config.Config,
	logger *zap.SugaredLogger,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		userSvc:     userSvc,
		postSvc:     postSvc,
		commentSvc:  commentSvc,
		categorySvc: categorySvc,
		reactionSvc: reactionSvc,
		sessions:    sessions,
		database:    database,
		cache:       cache,
		config:      cfg,
		logger:      logger,
		metrics:     m,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if !h.database.IsHealthy(r.Context()) {
		h.writeError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database is not reachable")
		return
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "cache is not reachable")
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := ErrorResponse{
		Code:    code,
		Message: message,
	}
	json.NewEncoder(w).Encode(err)
}

// writeDomainError maps a domain error to its HTTP shape. Conflicts come
// back as 400 so duplicate favorites and titles read as bad requests.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *blog.Error
	status := http.StatusInternalServerError
	code := "INTERNAL"

	switch blog.KindOf(err) {
	case blog.KindValidation:
		status, code = http.StatusBadRequest, "VALIDATION"
	case blog.KindUnauthenticated:
		status, code = http.StatusUnauthorized, "UNAUTHENTICATED"
	case blog.KindPermissionDenied:
		status, code = http.StatusForbidden, "PERMISSION_DENIED"
	case blog.KindNotFound:
		status, code = http.StatusNotFound, "NOT_FOUND"
	case blog.KindConflict:
		status, code = http.StatusBadRequest, "CONFLICT"
	}

	body := ErrorResponse{Code: code, Message: err.Error()}
	if errors.As(err, &domainErr) {
		body.Message = domainErr.Message
		body.Details = domainErr.Fields
	}

	if status == http.StatusInternalServerError {
		h.logger.Errorw("internal error", "error", err)
		body.Message = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON")
		return false
	}
	return true
}

// mediaBase is the URL prefix under which stored images are served
func (h *Handler) mediaBase() string {
	return "/media"
}
