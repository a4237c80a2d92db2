package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/staynest/staynest-backend/internal/services"
)

const (
	maxUploadBytes = 32 << 20 // whole multipart form
	maxImages      = 10
)

// parseListingForm reads the multipart listing form: text fields plus up to
// maxImages "images" files and at most one "rulesfile".
func parseListingForm(r *http.Request) (services.ListingInput, []services.MediaFile, *services.MediaFile, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return services.ListingInput{}, nil, nil, err
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	in := services.ListingInput{
		Homename:    r.FormValue("homename"),
		Price:       price,
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Photo:       r.FormValue("photo"),
	}

	var images []services.MediaFile
	var rulesFile *services.MediaFile
	if r.MultipartForm != nil {
		headers := r.MultipartForm.File["images"]
		if len(headers) > maxImages {
			headers = headers[:maxImages]
		}
		for _, fh := range headers {
			m, err := readMedia(fh)
			if err != nil {
				return in, nil, nil, err
			}
			images = append(images, m)
		}

		if rules := r.MultipartForm.File["rulesfile"]; len(rules) > 0 {
			m, err := readMedia(rules[0])
			if err != nil {
				return in, nil, nil, err
			}
			rulesFile = &m
		}
	}
	return in, images, rulesFile, nil
}

func readMedia(fh *multipart.FileHeader) (services.MediaFile, error) {
	f, err := fh.Open()
	if err != nil {
		return services.MediaFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.MediaFile{}, err
	}
	return services.MediaFile{
		Data:     data,
		Mimetype: fh.Header.Get("Content-Type"),
		Filename: fh.Filename,
	}, nil
}

// GetAddHome exists for route symmetry with the form-based client.
func (h *Handler) GetAddHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API endpoint to add home"})
}

// AddHome creates a listing for the authenticated host.
func (h *Handler) AddHome(w http.ResponseWriter, r *http.Request) {
	hostID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized: login as host required"})
		return
	}

	in, images, rulesFile, err := parseListingForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"})
		return
	}

	home, err := h.listings.Create(r.Context(), hostID, in, images, rulesFile)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Home added successfully",
		"home":    home,
	})
}

// OwnHomes lists the authenticated host's listings.
func (h *Handler) OwnHomes(w http.ResponseWriter, r *http.Request) {
	hostID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	homes, err := h.listings.ListByHost(r.Context(), hostID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"homes": homes})
}

// GetEditHome returns a single listing for the edit form.
func (h *Handler) GetEditHome(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, map[string]any{"home": view})
}

// EditHome updates a listing owned by the authenticated host. New images
// replace the whole image set; omitted media is left untouched.
func (h *Handler) EditHome(w http.ResponseWriter, r *http.Request) {
	homeID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Home not found"})
		return
	}
	hostID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	in, images, rulesFile, err := parseListingForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"})
		return
	}

	home, err := h.listings.Update(r.Context(), hostID, homeID, in, images, rulesFile)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Home updated successfully",
		"home":    home,
	})
}

// DeleteHome removes a listing owned by the authenticated host.
func (h *Handler) DeleteHome(w http.ResponseWriter, r *http.Request) {
	homeID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Home not found"})
		return
	}
	hostID, _, ok := sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	if err := h.listings.Delete(r.Context(), hostID, homeID); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Home deleted successfully"})
}
