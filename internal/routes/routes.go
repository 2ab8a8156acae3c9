package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/bookstore-api/internal/auth"
	"github.com/inkwell-labs/bookstore-api/internal/handlers"
	"github.com/inkwell-labs/bookstore-api/internal/middleware"
	"github.com/inkwell-labs/bookstore-api/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	bookHandler *handlers.BookHandler,
	categoryHandler *handlers.CategoryHandler,
	commentHandler *handlers.CommentHandler,
	tokenManager *auth.TokenManager,
	accountRepo *repositories.AccountRepository,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	router.Route("/api/accounts", func(r chi.Router) {
		r.Post("/signup/", authHandler.Signup)
		r.Get("/activate/{uid}/{token}/", authHandler.Activate)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/login/", authHandler.Login)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/refresh/", authHandler.Refresh)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/google/", authHandler.GoogleSignIn)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/retrieve-password/", authHandler.RequestPasswordReset)
		r.Post("/reset-password/", authHandler.ConfirmPasswordReset)

		// Logout requires a valid access token, matching the original API.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokenManager))
			r.Post("/logout/", authHandler.Logout)
		})
	})

	router.Route("/api/books", func(r chi.Router) {
		r.Get("/", bookHandler.List)
		r.Get("/{id}", bookHandler.Get)
		r.Get("/{id}/comments", commentHandler.ListByBook)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokenManager))
			r.Post("/{id}/comments", commentHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin(accountRepo))
				r.Post("/", bookHandler.Create)
				r.Put("/{id}", bookHandler.Update)
				r.Delete("/{id}", bookHandler.Delete)
			})
		})
	})

	router.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokenManager))
			r.Use(auth.RequireAdmin(accountRepo))
			r.Post("/", categoryHandler.Create)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})
	})

	router.Route("/api/comments", func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Put("/{id}", commentHandler.Update)
		r.Delete("/{id}", commentHandler.Delete)
	})
}
