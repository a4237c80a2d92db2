// Package storetest provides in-memory UserStore and HomeStore
// implementations for tests. They mirror the Mongo stores' semantics,
// including single-document atomicity: every mutation runs under the store
// lock, and the conditional updates (OTP reset, OAuth link, rating upsert)
// check and write in one step.
package storetest

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/store"
)

type MemUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.Favourite = append([]primitive.ObjectID{}, u.Favourite...)
	if u.OTPExpiresAt != nil {
		t := *u.OTPExpiresAt
		cp.OTPExpiresAt = &t
	}
	return &cp
}

func (s *MemUserStore) Insert(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
		if u.Phone != "" && existing.Phone == u.Phone {
			return store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Favourite == nil {
		u.Favourite = []primitive.ObjectID{}
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *MemUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, store.ErrNotFound
}

func (s *MemUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byEmail(email); u != nil {
		return copyUser(u), nil
	}
	return nil, store.ErrNotFound
}

func (s *MemUserStore) byEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *MemUserStore) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (s *MemUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemUserStore) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.EmailOTP = code
	exp := expiresAt.UTC()
	u.OTPExpiresAt = &exp
	return nil
}

func (s *MemUserStore) ResetPasswordWithOTP(ctx context.Context, email, code string, now time.Time, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byEmail(email)
	if u == nil || u.EmailOTP == "" || u.EmailOTP != code {
		return false, nil
	}
	if u.OTPExpiresAt == nil || !u.OTPExpiresAt.After(now.UTC()) {
		return false, nil
	}
	u.Password = hash
	u.EmailOTP = ""
	u.OTPExpiresAt = nil
	return true, nil
}

func (s *MemUserStore) LinkOAuth(ctx context.Context, id primitive.ObjectID, provider, oauthID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	if u.OAuthID != "" {
		return nil
	}
	u.OAuthProvider = provider
	u.OAuthID = oauthID
	return nil
}

func (s *MemUserStore) AddFavourite(ctx context.Context, id, homeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !u.HasFavourite(homeID) {
		u.Favourite = append(u.Favourite, homeID)
	}
	return append([]primitive.ObjectID{}, u.Favourite...), nil
}

func (s *MemUserStore) RemoveFavourite(ctx context.Context, id, homeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	kept := u.Favourite[:0]
	for _, f := range u.Favourite {
		if f != homeID {
			kept = append(kept, f)
		}
	}
	u.Favourite = kept
	return append([]primitive.ObjectID{}, u.Favourite...), nil
}

type MemHomeStore struct {
	mu    sync.Mutex
	homes map[primitive.ObjectID]*models.Home
}

func NewMemHomeStore() *MemHomeStore {
	return &MemHomeStore{homes: make(map[primitive.ObjectID]*models.Home)}
}

func copyHome(h *models.Home) *models.Home {
	cp := *h
	cp.Images = append([]string{}, h.Images...)
	cp.Ratings = append([]models.Rating{}, h.Ratings...)
	return &cp
}

func (s *MemHomeStore) Insert(ctx context.Context, h *models.Home) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	h.ID = primitive.NewObjectID()
	h.CreatedAt = now
	h.UpdatedAt = now
	if h.Images == nil {
		h.Images = []string{}
	}
	if h.Ratings == nil {
		h.Ratings = []models.Rating{}
	}
	s.homes[h.ID] = copyHome(h)
	return nil
}

func (s *MemHomeStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.homes[id]; ok {
		return copyHome(h), nil
	}
	return nil, store.ErrNotFound
}

func (s *MemHomeStore) FindAll(ctx context.Context) ([]models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Home{}
	for _, h := range s.homes {
		out = append(out, *copyHome(h))
	}
	return out, nil
}

func (s *MemHomeStore) FindByHost(ctx context.Context, hostID primitive.ObjectID) ([]models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Home{}
	for _, h := range s.homes {
		if h.HostID == hostID {
			out = append(out, *copyHome(h))
		}
	}
	return out, nil
}

func (s *MemHomeStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Home{}
	for _, id := range ids {
		if h, ok := s.homes[id]; ok {
			out = append(out, *copyHome(h))
		}
	}
	return out, nil
}

func (s *MemHomeStore) Update(ctx context.Context, id primitive.ObjectID, upd store.HomeUpdate) (*models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.homes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Homename != nil {
		h.Homename = *upd.Homename
	}
	if upd.Price != nil {
		h.Price = *upd.Price
	}
	if upd.Description != nil {
		h.Description = *upd.Description
	}
	if upd.Location != nil {
		h.Location = *upd.Location
	}
	if upd.Photo != nil {
		h.Photo = *upd.Photo
	}
	if upd.Images != nil {
		h.Images = append([]string{}, (*upd.Images)...)
	}
	if upd.RulesFile != nil {
		h.RulesFile = *upd.RulesFile
	}
	h.UpdatedAt = time.Now().UTC()
	return copyHome(h), nil
}

func (s *MemHomeStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.homes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.homes, id)
	return nil
}

func (s *MemHomeStore) UpsertRating(ctx context.Context, homeID primitive.ObjectID, r models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.homes[homeID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range h.Ratings {
		if h.Ratings[i].User == r.User {
			h.Ratings[i] = r
			return nil
		}
	}
	h.Ratings = append(h.Ratings, r)
	return nil
}
