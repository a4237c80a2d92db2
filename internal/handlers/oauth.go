package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staynest/staynest-backend/internal/services"
)

const oauthStateCookie = "oauth_state"

// OAuthBegin redirects to the external provider's consent screen with a
// fresh state token pinned in a short-lived cookie.
func (h *Handler) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((5 * time.Minute).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.Config.AuthCodeURL(state), http.StatusFound)
}

// OAuthCallback completes the external login: state check, code exchange,
// profile fetch, identity resolution, session issue, redirect to the
// frontend. Any failure sends the browser back to the frontend login page.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	loginURL := h.cfg.FrontendURL + "/login"

	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		log.Printf("%s callback: state mismatch", provider.Name)
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	token, err := provider.Config.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("%s callback: code exchange failed: %v", provider.Name, err)
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	profile, err := provider.FetchProfile(r.Context(), token)
	if err != nil {
		log.Printf("%s callback: profile fetch failed: %v", provider.Name, err)
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	u, err := h.identity.ResolveExternal(r.Context(), profile)
	if err != nil {
		log.Printf("%s callback: identity resolution failed: %v", provider.Name, err)
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	sessionToken, err := h.sessions.Create(r.Context(), services.SessionUser{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Usertype: u.Usertype,
	})
	if err != nil {
		log.Printf("%s callback: session create failed: %v", provider.Name, err)
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}
	h.setSessionCookie(w, sessionToken)

	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}
