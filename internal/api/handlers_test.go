package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/auth"
	"github.com/inkpost/inkpost-backend/internal/blog"
	"github.com/inkpost/inkpost-backend/internal/config"
	gdb "github.com/inkpost/inkpost-backend/internal/db"
	"github.com/inkpost/inkpost-backend/internal/media"
	"github.com/inkpost/inkpost-backend/internal/metrics"
	"github.com/inkpost/inkpost-backend/internal/store"
)

var (
	metricsOnce        sync.Once
	testMetrics        *metrics.Metrics
	testMetricsHandler http.Handler
)

// sharedMetrics avoids re-registering the Prometheus collectors per test
func sharedMetrics(t *testing.T) (*metrics.Metrics, http.Handler) {
	t.Helper()
	metricsOnce.Do(func() {
		var err error
		testMetrics, testMetricsHandler, err = metrics.Setup("inkpost-test")
		if err != nil {
			panic(err)
		}
	})
	return testMetrics, testMetricsHandler
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		Env:      "test",
		HTTPAddr: ":0",
		Database: config.DBConfig{Type: "memory"},
		Auth: config.AuthConfig{
			SessionTTL:        time.Hour,
			PasswordMinLength: 8,
		},
		Media: config.MediaConfig{Dir: t.TempDir()},
		API:   config.APIConfig{PageSize: 4},
		Security: config.SecurityConfig{
			RateLimitRPM:       6000,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	logger := zap.NewNop().Sugar()
	m, metricsHandler := sharedMetrics(t)

	database := gdb.NewInMemoryDatabase()
	require.NoError(t, gdb.ConnectAndMigrate(ctx, database, gdb.AllSchemas()))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	cache, err := store.NewCache("", logger, m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	storage, err := media.NewStorage(cfg.Media.Dir, logger)
	require.NoError(t, err)

	repos := blog.NewRepositories(database)
	policy := auth.PasswordPolicy{MinLength: cfg.Auth.PasswordMinLength}

	userSvc := blog.NewUserService(repos, policy, cfg.API.PageSize, logger)
	postSvc := blog.NewPostService(repos, storage, cfg.API.PageSize, logger)
	commentSvc := blog.NewCommentService(repos, logger)
	categorySvc := blog.NewCategoryService(repos, logger)
	reactionSvc := blog.NewReactionService(repos, logger)
	sessions := auth.NewSessionManager(cache, cfg.Auth.SessionTTL)

	handler := NewHandler(userSvc, postSvc, commentSvc, categorySvc, reactionSvc, sessions, database, cache, cfg, logger, m)
	middleware := NewMiddleware(logger, m, sessions, userSvc)

	server := httptest.NewServer(handler.Routes(middleware, metricsHandler, cfg.Media.Dir))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func registerAndLogin(t *testing.T, server *httptest.Server, username string) (string, UserDTO) {
	t.Helper()

	resp, _ := doJSON(t, server, http.MethodPost, "/v1/accounts/register", "", map[string]string{
		"username":              username,
		"email":                 username + "@example.com",
		"first_name":            "Casey",
		"last_name":             "Reed",
		"password":              "tr0ub4dor-and-more",
		"password_confirmation": "tr0ub4dor-and-more",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, server, http.MethodPost, "/v1/accounts/login", "", LoginRequest{
		Username: username,
		Password: "tr0ub4dor-and-more",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session SessionDTO
	require.NoError(t, json.Unmarshal(body, &session))
	require.NotEmpty(t, session.Token)
	return session.Token, session.User
}

func TestRegisterValidationErrors(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, server, http.MethodPost, "/v1/accounts/register", "", map[string]string{
		"username":              "casey",
		"email":                 "not-an-email",
		"first_name":            "casey",
		"password":              "12345",
		"password_confirmation": "54321",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.NotEmpty(t, errResp.Details["email"])
	assert.NotEmpty(t, errResp.Details["first_name"])
	assert.NotEmpty(t, errResp.Details["last_name"])
	assert.NotEmpty(t, errResp.Details["password"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t)
	registerAndLogin(t, server, "casey")

	resp, _ := doJSON(t, server, http.MethodPost, "/v1/accounts/login", "", LoginRequest{
		Username: "casey",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerAndLogin(t, server, "casey")

	resp, _ := doJSON(t, server, http.MethodGet, "/v1/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodPost, "/v1/accounts/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodGet, "/v1/accounts/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodPost, "/v1/posts", "", map[string]string{"title": "anon"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPostLifecycle(t *testing.T) {
	server := newTestServer(t)
	token, user := registerAndLogin(t, server, "casey")

	resp, body := doJSON(t, server, http.MethodPost, "/v1/posts", token, map[string]string{
		"title": "first post",
		"body":  "hello world",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post PostDTO
	require.NoError(t, json.Unmarshal(body, &post))
	assert.Equal(t, user.ID, post.OwnerID)

	resp, body = doJSON(t, server, http.MethodGet, "/v1/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail PostDetailDTO
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, "first post", detail.Title)
	assert.Equal(t, int64(0), detail.LikeCount)

	resp, _ = doJSON(t, server, http.MethodDelete, "/v1/posts/"+post.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodGet, "/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostListPagination(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerAndLogin(t, server, "casey")

	for i := 0; i < 5; i++ {
		resp, _ := doJSON(t, server, http.MethodPost, "/v1/posts", token, map[string]string{
			"title": fmt.Sprintf("post %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, server, http.MethodGet, "/v1/posts?page=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Results []PostDTO `json:"results"`
		Total   int64     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "post 4", page.Results[0].Title)
}

func TestFavoriteConflictAndRemoval(t *testing.T) {
	server := newTestServer(t)
	ownerToken, _ := registerAndLogin(t, server, "owner")
	fanToken, _ := registerAndLogin(t, server, "fan")

	resp, body := doJSON(t, server, http.MethodPost, "/v1/posts", ownerToken, map[string]string{"title": "favorited"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post PostDTO
	require.NoError(t, json.Unmarshal(body, &post))

	resp, body = doJSON(t, server, http.MethodPost, "/v1/posts/"+post.ID+"/favorites", fanToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var favorite FavoriteDTO
	require.NoError(t, json.Unmarshal(body, &favorite))
	assert.Equal(t, post.ID, favorite.PostID)
	assert.NotEmpty(t, favorite.OwnerID)

	// Second add is rejected as a conflict
	resp, body = doJSON(t, server, http.MethodPost, "/v1/posts/"+post.ID+"/favorites", fanToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "CONFLICT", errResp.Code)

	resp, _ = doJSON(t, server, http.MethodDelete, "/v1/posts/"+post.ID+"/favorites", fanToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Removing a missing favorite is a 404
	resp, _ = doJSON(t, server, http.MethodDelete, "/v1/posts/"+post.ID+"/favorites", fanToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentDeleteForbiddenForStranger(t *testing.T) {
	server := newTestServer(t)
	ownerToken, _ := registerAndLogin(t, server, "owner")
	authorToken, _ := registerAndLogin(t, server, "author")
	strangerToken, _ := registerAndLogin(t, server, "stranger")

	resp, body := doJSON(t, server, http.MethodPost, "/v1/posts", ownerToken, map[string]string{"title": "discussion"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post PostDTO
	require.NoError(t, json.Unmarshal(body, &post))

	resp, body = doJSON(t, server, http.MethodPost, "/v1/posts/"+post.ID+"/comments", authorToken, CreateCommentRequest{Content: "a take"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment CommentDTO
	require.NoError(t, json.Unmarshal(body, &comment))

	resp, _ = doJSON(t, server, http.MethodDelete, "/v1/comments/"+comment.ID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodDelete, "/v1/comments/"+comment.ID, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCategoryCreateForbiddenForNonAdmin(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerAndLogin(t, server, "casey")

	resp, _ := doJSON(t, server, http.MethodPost, "/v1/categories", token, CreateCategoryRequest{Name: "Travel"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, server, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, body = doJSON(t, server, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "READY", string(body))
}
