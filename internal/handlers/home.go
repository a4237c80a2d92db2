package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/staynest/staynest-backend/internal/middleware"
	"github.com/staynest/staynest-backend/internal/services"
)

// pathID parses the {id} URL parameter as an ObjectID.
func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// sessionUserID returns the authenticated user's ObjectID. The auth
// middleware has already gated the route, so a missing or malformed session
// id here is an internal inconsistency.
func sessionUserID(r *http.Request) (primitive.ObjectID, services.SessionUser, bool) {
	user, ok := middleware.SessionUserFrom(r.Context())
	if !ok {
		return primitive.NilObjectID, services.SessionUser{}, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, user, false
	}
	return id, user, true
}

// ListHomes returns every listing plus the current user projection.
func (h *Handler) ListHomes(w http.ResponseWriter, r *http.Request) {
	homes, err := h.listings.ListAll(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}

	user, _ := middleware.SessionUserFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"home": homes,
		"user": user,
	})
}

// GetHome returns a single listing with populated host and rating authors.
func (h *Handler) GetHome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Home not found"})
		return
	}

	view, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	user, _ := middleware.SessionUserFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"home": view,
		"user": user,
	})
}

type rateRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// RateHome upserts the caller's rating on a listing.
func (h *Handler) RateHome(w http.ResponseWriter, r *http.Request) {
	homeID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Home not found"})
		return
	}
	raterID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized. Please log in."})
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	ratings, err := h.listings.SubmitRating(r.Context(), raterID, homeID, req.Stars, req.Comment)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Rating submitted successfully",
		"ratings": ratings,
	})
}
