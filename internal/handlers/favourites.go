package handlers

import (
	"net/http"
)

// GetFavourites lists the caller's favourites as populated listings.
func (h *Handler) GetFavourites(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	homes, err := h.favourites.List(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favourite": homes})
}

// AddFavourite adds a listing to the caller's favourite set; adding an
// already-present listing is a no-op.
func (h *Handler) AddFavourite(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	homeID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Home not found"})
		return
	}

	favs, err := h.favourites.Add(r.Context(), userID, homeID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Home added to favourites",
		"favourite": favs,
	})
}

// RemoveFavourite removes a listing from the caller's favourite set;
// removing an absent listing is a no-op.
func (h *Handler) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	homeID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Home not found"})
		return
	}

	favs, err := h.favourites.Remove(r.Context(), userID, homeID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Home removed from favourites",
		"favourite": favs,
	})
}
