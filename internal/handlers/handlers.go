// Package handlers maps the HTTP surface onto the services. Handlers stay
// thin: decode, call one service method, map the result. All configuration
// is injected at construction; there is no package-level mutable state.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/staynest/staynest-backend/internal/config"
	"github.com/staynest/staynest-backend/internal/middleware"
	"github.com/staynest/staynest-backend/internal/services"
)

type Handler struct {
	cfg        *config.Config
	sessions   *services.SessionService
	identity   *services.IdentityService
	otp        *services.OTPService
	listings   *services.ListingService
	favourites *services.FavouritesService
	providers  map[string]*services.OAuthProvider
}

func New(
	cfg *config.Config,
	sessions *services.SessionService,
	identity *services.IdentityService,
	otp *services.OTPService,
	listings *services.ListingService,
	favourites *services.FavouritesService,
	providers map[string]*services.OAuthProvider,
) *Handler {
	return &Handler{
		cfg:        cfg,
		sessions:   sessions,
		identity:   identity,
		otp:        otp,
		listings:   listings,
		favourites: favourites,
		providers:  providers,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// serviceError maps a service-boundary error onto the HTTP taxonomy.
// Unknown errors become a logged 500 with no detail leaked to the client.
func serviceError(w http.ResponseWriter, err error) {
	if ve, ok := services.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": ve.Messages})
		return
	}

	switch {
	case errors.Is(err, services.ErrDuplicateEmail):
		// 400 rather than 409, matching the original API.
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"Email already in use"}})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"errormessage": "Invalid email or password"})
	case errors.Is(err, services.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Access denied"})
	case errors.Is(err, services.ErrSelfRating):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You cannot rate your own home."})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, services.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Account not found with this email"})
	case errors.Is(err, services.ErrInvalidOrExpiredCode):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid or expired OTP. Please request a new one."})
	case errors.Is(err, services.ErrDeliveryFailed):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to send email"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(services.SessionDuration.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
	// Cross-site deployments need SameSite=None, which browsers only accept
	// over a secure transport.
	if h.cfg.CookieCrossSite {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	http.SetCookie(w, c)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cfg.CookieCrossSite {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	http.SetCookie(w, c)
}
