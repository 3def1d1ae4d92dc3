package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes(m *Middleware, metricsHandler http.Handler, mediaDir string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Compress)
	r.Use(m.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(m.CORS(h.config.Security.CORSAllowedOrigins))
	r.Use(m.RateLimit(h.config.Security.RateLimitRPM))
	r.Use(m.Authenticate)

	// Health and metrics endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", metricsHandler)

	// Stored images
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))

	// v1 API routes
	r.Route("/v1", func(r chi.Router) {
		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(m.RequireUser).Post("/logout", h.Logout)
			r.With(m.RequireUser).Get("/me", h.Me)
		})

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.With(m.RequireUser).Delete("/{id}", h.DeleteUser)
			r.Get("/{id}/favorites", h.ListUserFavorites)
		})

		// Posts and nested resources
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.With(m.RequireUser).Post("/", h.CreatePost)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPost)
				r.With(m.RequireUser).Put("/", h.UpdatePost)
				r.With(m.RequireUser).Patch("/", h.UpdatePost)
				r.With(m.RequireUser).Delete("/", h.DeletePost)

				r.Get("/comments", h.ListPostComments)
				r.With(m.RequireUser).Post("/comments", h.CreatePostComment)

				r.Get("/likes", h.ListPostLikes)
				r.With(m.RequireUser).Post("/likes", h.LikePost)
				r.With(m.RequireUser).Delete("/likes", h.UnlikePost)

				r.With(m.RequireUser).Post("/favorites", h.FavoritePost)
				r.With(m.RequireUser).Delete("/favorites", h.UnfavoritePost)

				r.With(m.RequireUser).Post("/images", h.UploadPostImage)
			})
		})

		// Comments
		r.Route("/comments", func(r chi.Router) {
			r.With(m.RequireUser).Post("/", h.CreateComment)
			r.Get("/{id}", h.GetComment)
			r.With(m.RequireUser).Delete("/{id}", h.DeleteComment)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{id}", h.GetCategory)
			r.With(m.RequireUser).Post("/", h.CreateCategory)
			r.With(m.RequireUser).Delete("/{id}", h.DeleteCategory)
		})
	})

	return r
}
