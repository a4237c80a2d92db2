package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/store/storetest"
)

type favouritesFixture struct {
	svc     *FavouritesService
	guestID primitive.ObjectID
	homeA   primitive.ObjectID
	homeB   primitive.ObjectID
}

func newFavouritesFixture(t *testing.T) *favouritesFixture {
	t.Helper()
	users := storetest.NewMemUserStore()
	homes := storetest.NewMemHomeStore()

	guest := &models.User{Firstname: "Gus", Lastname: "Guest", Email: "guest@x.com", Usertype: models.RoleGuest}
	require.NoError(t, users.Insert(context.Background(), guest))

	a := &models.Home{Homename: "Cabin", Price: 100, Description: "d", Location: "Hills", HostID: primitive.NewObjectID()}
	require.NoError(t, homes.Insert(context.Background(), a))
	b := &models.Home{Homename: "Loft", Price: 80, Description: "d", Location: "Town", HostID: primitive.NewObjectID()}
	require.NoError(t, homes.Insert(context.Background(), b))

	return &favouritesFixture{
		svc:     NewFavouritesService(users, homes),
		guestID: guest.ID,
		homeA:   a.ID,
		homeB:   b.ID,
	}
}

func TestFavouritesAddIdempotent(t *testing.T) {
	f := newFavouritesFixture(t)

	favs, err := f.svc.Add(context.Background(), f.guestID, f.homeA)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.homeA}, favs)

	// Adding again must not duplicate the entry.
	favs, err = f.svc.Add(context.Background(), f.guestID, f.homeA)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.homeA}, favs)
}

func TestFavouritesRemove(t *testing.T) {
	f := newFavouritesFixture(t)

	_, err := f.svc.Add(context.Background(), f.guestID, f.homeA)
	require.NoError(t, err)
	_, err = f.svc.Add(context.Background(), f.guestID, f.homeB)
	require.NoError(t, err)

	favs, err := f.svc.Remove(context.Background(), f.guestID, f.homeA)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.homeB}, favs)

	// Removing an absent id is a no-op.
	favs, err = f.svc.Remove(context.Background(), f.guestID, f.homeA)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.homeB}, favs)
}

func TestFavouritesList(t *testing.T) {
	f := newFavouritesFixture(t)

	homes, err := f.svc.List(context.Background(), f.guestID)
	require.NoError(t, err)
	assert.Empty(t, homes)

	_, err = f.svc.Add(context.Background(), f.guestID, f.homeB)
	require.NoError(t, err)

	homes, err = f.svc.List(context.Background(), f.guestID)
	require.NoError(t, err)
	require.Len(t, homes, 1)
	assert.Equal(t, "Loft", homes[0].Homename)
}

func TestFavouritesUnknownUser(t *testing.T) {
	f := newFavouritesFixture(t)

	_, err := f.svc.Add(context.Background(), primitive.NewObjectID(), f.homeA)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.List(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
