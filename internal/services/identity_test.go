package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/store/storetest"
)

func validSignup() SignupInput {
	return SignupInput{
		Firstname:       "Ada",
		Lastname:        "Lovelace",
		Email:           "Ada@X.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Usertype:        "host",
		Terms:           true,
	}
}

func TestRegisterLocal(t *testing.T) {
	svc := NewIdentityService(storetest.NewMemUserStore())

	u, err := svc.RegisterLocal(context.Background(), validSignup())
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", u.Email, "email should be normalized")
	assert.Equal(t, models.RoleHost, u.Usertype)
	assert.NotEmpty(t, u.Password)
	assert.NotEqual(t, "secret1", u.Password, "password must be stored hashed")
	assert.False(t, u.EmailVerified)
}

func TestRegisterLocalDefaultsToGuest(t *testing.T) {
	svc := NewIdentityService(storetest.NewMemUserStore())

	in := validSignup()
	in.Usertype = ""
	u, err := svc.RegisterLocal(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, u.Usertype)
}

func TestRegisterLocalValidation(t *testing.T) {
	svc := NewIdentityService(storetest.NewMemUserStore())

	tests := []struct {
		name   string
		mutate func(*SignupInput)
	}{
		{"missing first name", func(in *SignupInput) { in.Firstname = "" }},
		{"missing last name", func(in *SignupInput) { in.Lastname = "" }},
		{"bad email", func(in *SignupInput) { in.Email = "nope" }},
		{"short password", func(in *SignupInput) { in.Password = "abc"; in.ConfirmPassword = "abc" }},
		{"password mismatch", func(in *SignupInput) { in.ConfirmPassword = "different" }},
		{"bad usertype", func(in *SignupInput) { in.Usertype = "admin" }},
		{"terms not accepted", func(in *SignupInput) { in.Terms = false }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignup()
			tc.mutate(&in)
			_, err := svc.RegisterLocal(context.Background(), in)
			_, isValidation := AsValidation(err)
			assert.True(t, isValidation, "expected validation error, got %v", err)
		})
	}
}

func TestRegisterLocalDuplicateEmail(t *testing.T) {
	users := storetest.NewMemUserStore()
	svc := NewIdentityService(users)

	first, err := svc.RegisterLocal(context.Background(), validSignup())
	require.NoError(t, err)

	// Same email in different case; the second signup must fail and the
	// first record stay intact.
	in := validSignup()
	in.Email = "ADA@x.com"
	in.Firstname = "Impostor"
	_, err = svc.RegisterLocal(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	stored, err := users.FindByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Ada", stored.Firstname)
}

func TestAuthenticate(t *testing.T) {
	svc := NewIdentityService(storetest.NewMemUserStore())

	_, err := svc.RegisterLocal(context.Background(), validSignup())
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "ada@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleHost, u.Usertype)

	_, err = svc.Authenticate(context.Background(), "ada@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error as a wrong password.
	_, err = svc.Authenticate(context.Background(), "unknown@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsOAuthOnlyAccount(t *testing.T) {
	users := storetest.NewMemUserStore()
	svc := NewIdentityService(users)

	_, err := svc.ResolveExternal(context.Background(), ExternalProfile{
		Provider: "google", ExternalID: "g-1", Email: "b@x.com", Firstname: "Bea",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "b@x.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc := NewIdentityService(storetest.NewMemUserStore())

	_, err := svc.RegisterLocal(context.Background(), validSignup())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "ada@x.com", "secret1", "newsecret")
	require.NoError(t, err)

	// The old password stops working immediately.
	_, err = svc.Authenticate(context.Background(), "ada@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ada@x.com", "newsecret")
	assert.NoError(t, err)
}

func TestChangePasswordWrongOld(t *testing.T) {
	svc := NewIdentityService(storetest.NewMemUserStore())

	_, err := svc.RegisterLocal(context.Background(), validSignup())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "ada@x.com", "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), "ghost@x.com", "secret1", "newsecret")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResolveExternalCreatesGuest(t *testing.T) {
	users := storetest.NewMemUserStore()
	svc := NewIdentityService(users)

	u, err := svc.ResolveExternal(context.Background(), ExternalProfile{
		Provider: "google", ExternalID: "g-42", Email: "B@X.com", Firstname: "Bea", Lastname: "Wu",
	})
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", u.Email)
	assert.Equal(t, models.RoleGuest, u.Usertype)
	assert.True(t, u.EmailVerified, "provider-verified email is trusted")
	assert.Empty(t, u.Password, "no local password for a pure-OAuth account")
	assert.Equal(t, "google", u.OAuthProvider)
	assert.Equal(t, "g-42", u.OAuthID)
}

func TestResolveExternalLinksExistingLocalAccount(t *testing.T) {
	users := storetest.NewMemUserStore()
	svc := NewIdentityService(users)

	local, err := svc.RegisterLocal(context.Background(), validSignup())
	require.NoError(t, err)

	linked, err := svc.ResolveExternal(context.Background(), ExternalProfile{
		Provider: "github", ExternalID: "gh-7", Email: "ada@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, linked.ID, "must resolve to the existing account")

	stored, err := users.FindByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, "github", stored.OAuthProvider)
	assert.Equal(t, "gh-7", stored.OAuthID)
	assert.Equal(t, models.RoleHost, stored.Usertype, "role is untouched by linking")
}

func TestResolveExternalFirstLinkedProviderWins(t *testing.T) {
	users := storetest.NewMemUserStore()
	svc := NewIdentityService(users)

	first, err := svc.ResolveExternal(context.Background(), ExternalProfile{
		Provider: "google", ExternalID: "g-1", Email: "b@x.com",
	})
	require.NoError(t, err)

	second, err := svc.ResolveExternal(context.Background(), ExternalProfile{
		Provider: "github", ExternalID: "gh-9", Email: "b@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same email resolves to the same identity")

	stored, err := users.FindByEmail(context.Background(), "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "google", stored.OAuthProvider, "still linked only to the first provider")
	assert.Equal(t, "g-1", stored.OAuthID)
}
