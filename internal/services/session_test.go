package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/staynest-backend/internal/models"
)

func newSessionFixture(t *testing.T) (*SessionService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSessionService(rdb), mr
}

func TestSessionCreateAndGet(t *testing.T) {
	sessions, _ := newSessionFixture(t)

	user := SessionUser{ID: "u-1", Email: "a@x.com", Usertype: models.RoleHost}
	token, err := sessions.Create(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, ok, err := sessions.Get(context.Background(), token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestSessionTokensAreUnique(t *testing.T) {
	sessions, _ := newSessionFixture(t)

	user := SessionUser{ID: "u-1", Email: "a@x.com", Usertype: models.RoleGuest}
	t1, err := sessions.Create(context.Background(), user)
	require.NoError(t, err)
	t2, err := sessions.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestSessionGetUnknownToken(t *testing.T) {
	sessions, _ := newSessionFixture(t)

	_, ok, err := sessions.Get(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = sessions.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	sessions, mr := newSessionFixture(t)

	token, err := sessions.Create(context.Background(), SessionUser{ID: "u-1", Email: "a@x.com", Usertype: models.RoleGuest})
	require.NoError(t, err)

	mr.FastForward(SessionDuration + 1)

	_, ok, err := sessions.Get(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionDestroyIsIdempotent(t *testing.T) {
	sessions, _ := newSessionFixture(t)

	token, err := sessions.Create(context.Background(), SessionUser{ID: "u-1", Email: "a@x.com", Usertype: models.RoleGuest})
	require.NoError(t, err)

	require.NoError(t, sessions.Destroy(context.Background(), token))
	_, ok, err := sessions.Get(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Destroying again (or destroying nothing) still succeeds.
	assert.NoError(t, sessions.Destroy(context.Background(), token))
	assert.NoError(t, sessions.Destroy(context.Background(), ""))
}
