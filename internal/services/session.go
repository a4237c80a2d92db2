package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/staynest/staynest-backend/internal/models"
)

const (
	// SessionDuration matches the original deployment's 24-hour cookie.
	SessionDuration = 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions.
	SessionKeyPrefix = "session:"
)

// SessionUser is the projection recorded at login. It is a snapshot: a later
// role change on the account does not refresh active sessions.
type SessionUser struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Usertype models.Role `json:"usertype"`
}

// SessionService owns session state exclusively; nothing else reads or
// writes the session keys, and session churn never touches the user store.
type SessionService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{rdb: rdb, ttl: SessionDuration}
}

// Create issues a new opaque token bound to the given user projection.
func (s *SessionService) Create(ctx context.Context, user SessionUser) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	payload, err := json.Marshal(user)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, SessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get validates a token and returns the bound projection.
// An empty, unknown, or expired token yields ok=false without error.
func (s *SessionService) Get(ctx context.Context, token string) (SessionUser, bool, error) {
	if token == "" {
		return SessionUser{}, false, nil
	}

	payload, err := s.rdb.Get(ctx, SessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return SessionUser{}, false, nil
	}
	if err != nil {
		return SessionUser{}, false, err
	}

	var user SessionUser
	if err := json.Unmarshal(payload, &user); err != nil {
		return SessionUser{}, false, err
	}
	return user, true, nil
}

// Destroy removes a session. Idempotent: destroying an absent session is not
// an error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, SessionKeyPrefix+token).Err()
}
