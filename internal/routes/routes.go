package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/staynest/staynest-backend/internal/handlers"
	"github.com/staynest/staynest-backend/internal/middleware"
	"github.com/staynest/staynest-backend/internal/models"
)

// SetupRoutes mounts the API surface. The session is resolved once for every
// request; auth and role gates are applied per route group.
func SetupRoutes(r *chi.Mux, h *handlers.Handler, auth *middleware.SessionAuth) {
	r.Use(auth.LoadSession)

	// Auth & account recovery (no session required)
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/current-user", h.CurrentUser)
	r.Post("/reset-password", h.ResetPassword)
	r.Post("/forgot-password/send-otp", h.ForgotPasswordSendOTP)
	r.Post("/forgot-password/verify-otp", h.ForgotPasswordVerifyOTP)

	// External identity providers
	r.Get("/auth/{provider}", h.OAuthBegin)
	r.Get("/auth/{provider}/callback", h.OAuthCallback)

	// Browsing and rating (any authenticated user)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.ListHomes)
		r.Get("/home/{id}", h.GetHome)
		r.Post("/home/{id}/rate", h.RateHome)

		r.Get("/favourite", h.GetFavourites)
		r.Post("/favourite/{id}", h.AddFavourite)
		r.Post("/favourite/remove/{id}", h.RemoveFavourite)
	})

	// Listing management (hosts only)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Use(auth.RequireRole(models.RoleHost))
		r.Get("/host/addhome", h.GetAddHome)
		r.Post("/host/addhome", h.AddHome)
		r.Get("/host/ownhome", h.OwnHomes)
		r.Get("/host/edithome/{id}", h.GetEditHome)
		r.Post("/host/edithome/{id}", h.EditHome)
		r.Post("/host/deletehome/{id}", h.DeleteHome)
	})
}
