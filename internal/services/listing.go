package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/store"
)

const (
	homesFolder = "staynest/homes"
	rulesFolder = "staynest/rules"
)

// MediaFile is an uploaded file buffered in memory.
type MediaFile struct {
	Data     []byte
	Mimetype string
	Filename string
}

// ListingInput carries the listing fields from a create or edit form.
type ListingInput struct {
	Homename    string
	Price       float64
	Description string
	Location    string
	Photo       string
}

// HomeView is a Home with host and rating authors populated, plus the
// computed average rating.
type HomeView struct {
	models.Home
	Host          *models.UserSummary `json:"host,omitempty"`
	Ratings       []models.RatingView `json:"ratings"`
	AverageRating float64             `json:"averageRating"`
}

type ListingService struct {
	homes    store.HomeStore
	users    store.UserStore
	uploader Uploader
}

func NewListingService(homes store.HomeStore, users store.UserStore, uploader Uploader) *ListingService {
	return &ListingService{homes: homes, users: users, uploader: uploader}
}

// uploadImages sends each image to the media store. A single failed upload is
// logged and skipped rather than failing the whole request.
func (s *ListingService) uploadImages(ctx context.Context, images []MediaFile) []string {
	urls := []string{}
	for _, img := range images {
		url, err := s.uploader.UploadBuffer(ctx, img.Data, homesFolder, img.Mimetype)
		if err != nil {
			log.Printf("Image upload failed (%s): %v", img.Filename, err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (s *ListingService) uploadRulesFile(ctx context.Context, rulesFile *MediaFile) string {
	if rulesFile == nil {
		return ""
	}
	url, err := s.uploader.UploadBuffer(ctx, rulesFile.Data, rulesFolder, rulesFile.Mimetype)
	if err != nil {
		log.Printf("Rules file upload failed (%s): %v", rulesFile.Filename, err)
		return ""
	}
	return url
}

func validateListing(in ListingInput) *ValidationError {
	var msgs []string
	if in.Homename == "" || in.Description == "" || in.Location == "" {
		msgs = append(msgs, "all fields are required")
	}
	if in.Price <= 0 {
		msgs = append(msgs, "price must be positive")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// Create adds a new listing owned by hostID. The owner must resolve to a host
// account; the route middleware already gates on role but the invariant is
// enforced here as well.
func (s *ListingService) Create(ctx context.Context, hostID primitive.ObjectID, in ListingInput, images []MediaFile, rulesFile *MediaFile) (*models.Home, error) {
	if ve := validateListing(in); ve != nil {
		return nil, ve
	}

	host, err := s.users.FindByID(ctx, hostID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if host.Usertype != models.RoleHost {
		return nil, ErrForbidden
	}

	imageURLs := s.uploadImages(ctx, images)
	rulesURL := s.uploadRulesFile(ctx, rulesFile)

	photo := in.Photo
	if photo == "" && len(imageURLs) > 0 {
		photo = imageURLs[0]
	}

	h := &models.Home{
		Homename:    in.Homename,
		Price:       in.Price,
		Description: in.Description,
		Location:    in.Location,
		HostID:      hostID,
		Photo:       photo,
		Images:      imageURLs,
		RulesFile:   rulesURL,
	}
	if err := s.homes.Insert(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Update edits an existing listing. Ownership is re-checked against the
// stored hostid. Newly supplied images replace the entire image set; with no
// new images the existing set is untouched. The rules document follows the
// same replace-if-supplied rule independently.
func (s *ListingService) Update(ctx context.Context, hostID, homeID primitive.ObjectID, in ListingInput, images []MediaFile, rulesFile *MediaFile) (*models.Home, error) {
	h, err := s.homes.FindByID(ctx, homeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if h.HostID != hostID {
		return nil, ErrForbidden
	}

	upd := store.HomeUpdate{}
	if in.Homename != "" {
		upd.Homename = &in.Homename
	}
	if in.Description != "" {
		upd.Description = &in.Description
	}
	if in.Location != "" {
		upd.Location = &in.Location
	}
	if in.Photo != "" {
		upd.Photo = &in.Photo
	}
	if in.Price != 0 {
		if in.Price < 0 {
			return nil, &ValidationError{Messages: []string{"price must be positive"}}
		}
		upd.Price = &in.Price
	}

	if len(images) > 0 {
		if urls := s.uploadImages(ctx, images); len(urls) > 0 {
			upd.Images = &urls
		}
	}
	if rulesFile != nil {
		if url := s.uploadRulesFile(ctx, rulesFile); url != "" {
			upd.RulesFile = &url
		}
	}

	updated, err := s.homes.Update(ctx, homeID, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a listing owned by hostID.
func (s *ListingService) Delete(ctx context.Context, hostID, homeID primitive.ObjectID) error {
	h, err := s.homes.FindByID(ctx, homeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if h.HostID != hostID {
		return ErrForbidden
	}

	if err := s.homes.Delete(ctx, homeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *ListingService) ListAll(ctx context.Context) ([]models.Home, error) {
	return s.homes.FindAll(ctx)
}

func (s *ListingService) ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]models.Home, error) {
	return s.homes.FindByHost(ctx, hostID)
}

// GetByID returns the listing with host and rating-author summaries populated.
func (s *ListingService) GetByID(ctx context.Context, homeID primitive.ObjectID) (*HomeView, error) {
	h, err := s.homes.FindByID(ctx, homeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ids := []primitive.ObjectID{h.HostID}
	for _, r := range h.Ratings {
		ids = append(ids, r.User)
	}
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &HomeView{
		Home:          *h,
		Ratings:       ratingsView(h.Ratings, summaries),
		AverageRating: h.AverageRating(),
	}
	if host, ok := summaries[h.HostID]; ok {
		view.Host = &host
	}
	return view, nil
}

func ratingsView(ratings []models.Rating, summaries map[primitive.ObjectID]models.UserSummary) []models.RatingView {
	out := []models.RatingView{}
	for _, r := range ratings {
		view := models.RatingView{
			Stars:     r.Stars,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		}
		if sum, ok := summaries[r.User]; ok {
			view.User = sum
		} else {
			view.User = models.UserSummary{ID: r.User}
		}
		out = append(out, view)
	}
	return out
}

// SubmitRating upserts the rater's rating for a home and returns the
// refreshed rating collection with author summaries populated.
func (s *ListingService) SubmitRating(ctx context.Context, raterID, homeID primitive.ObjectID, stars int, comment string) ([]models.RatingView, error) {
	if stars < 1 || stars > 5 {
		return nil, &ValidationError{Messages: []string{"invalid rating value"}}
	}

	h, err := s.homes.FindByID(ctx, homeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if h.HostID == raterID {
		return nil, ErrSelfRating
	}

	rating := models.Rating{
		User:      raterID,
		Stars:     stars,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.homes.UpsertRating(ctx, homeID, rating); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated, err := s.homes.FindByID(ctx, homeID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(updated.Ratings))
	for _, r := range updated.Ratings {
		ids = append(ids, r.User)
	}
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return ratingsView(updated.Ratings, summaries), nil
}
