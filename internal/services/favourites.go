package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/store"
)

// FavouritesService maintains the per-user favourite set. Both mutations are
// idempotent set operations ($addToSet / $pull on the user document).
type FavouritesService struct {
	users store.UserStore
	homes store.HomeStore
}

func NewFavouritesService(users store.UserStore, homes store.HomeStore) *FavouritesService {
	return &FavouritesService{users: users, homes: homes}
}

// Add puts homeID into the favourite set and returns the updated set.
// Adding an already-present id is a no-op, not an error.
func (s *FavouritesService) Add(ctx context.Context, userID, homeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	favs, err := s.users.AddFavourite(ctx, userID, homeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return favs, nil
}

// Remove takes homeID out of the favourite set and returns the updated set.
// Removing an absent id is a no-op.
func (s *FavouritesService) Remove(ctx context.Context, userID, homeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	favs, err := s.users.RemoveFavourite(ctx, userID, homeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return favs, nil
}

// List returns the user's favourites as populated listings.
func (s *FavouritesService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Home, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.homes.FindByIDs(ctx, u.Favourite)
}
