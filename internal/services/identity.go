package services

import (
	"context"
	"errors"
	"strings"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/store"
	"github.com/staynest/staynest-backend/pkg/utils"
)

// IdentityService handles local signup, local authentication, and external
// identity resolution. Email is the identity key across providers.
type IdentityService struct {
	users store.UserStore
}

func NewIdentityService(users store.UserStore) *IdentityService {
	return &IdentityService{users: users}
}

// SignupInput is the local registration profile.
type SignupInput struct {
	Firstname       string `json:"firstname"`
	Middlename      string `json:"middlename"`
	Lastname        string `json:"lastname"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
	Usertype        string `json:"usertype"`
	Terms           bool   `json:"terms"`
}

// NormalizeEmail lowercases and trims an email address. All store lookups go
// through this so the unique index sees one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(in SignupInput) *ValidationError {
	var msgs []string
	if strings.TrimSpace(in.Firstname) == "" {
		msgs = append(msgs, "first name is required")
	}
	if strings.TrimSpace(in.Lastname) == "" {
		msgs = append(msgs, "last name is required")
	}
	if !strings.Contains(in.Email, "@") {
		msgs = append(msgs, "enter a valid email")
	}
	if len(in.Password) < 6 {
		msgs = append(msgs, "password must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		msgs = append(msgs, "passwords do not match")
	}
	if in.Usertype != "" && !models.Role(in.Usertype).Valid() {
		msgs = append(msgs, "select guest or host")
	}
	if !in.Terms {
		msgs = append(msgs, "you must accept terms and conditions")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// RegisterLocal validates the profile, hashes the password and persists a new
// account. The role defaults to guest unless explicitly host.
func (s *IdentityService) RegisterLocal(ctx context.Context, in SignupInput) (*models.User, error) {
	if ve := validateSignup(in); ve != nil {
		return nil, ve
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := models.Role(in.Usertype)
	if role == "" {
		role = models.RoleGuest
	}

	u := &models.User{
		Firstname:  strings.TrimSpace(in.Firstname),
		Middlename: strings.TrimSpace(in.Middlename),
		Lastname:   strings.TrimSpace(in.Lastname),
		Email:      NormalizeEmail(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Password:   hash,
		Usertype:   role,
	}

	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// Authenticate verifies email and password. Unknown email, an account with no
// local password (pure OAuth), and a wrong password all surface the same
// ErrInvalidCredentials.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Password == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ExternalProfile is what an OAuth provider callback yields.
type ExternalProfile struct {
	Provider   string
	ExternalID string
	Email      string
	Firstname  string
	Lastname   string
}

// ResolveExternal finds or creates the account for an external login.
//
// The provider's email verification is trusted: a fresh account is created
// pre-verified and without a local password. An existing unlinked account is
// linked silently; an account already linked stays as it is, even when the
// new login comes from a different provider (first-linked-provider wins).
func (s *IdentityService) ResolveExternal(ctx context.Context, p ExternalProfile) (*models.User, error) {
	email := NormalizeEmail(p.Email)

	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if u.OAuthID == "" {
			if err := s.users.LinkOAuth(ctx, u.ID, p.Provider, p.ExternalID); err != nil {
				return nil, err
			}
			u.OAuthProvider = p.Provider
			u.OAuthID = p.ExternalID
		}
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	firstname := strings.TrimSpace(p.Firstname)
	if firstname == "" && p.Provider != "" {
		firstname = strings.ToUpper(p.Provider[:1]) + p.Provider[1:]
	}
	lastname := strings.TrimSpace(p.Lastname)
	if lastname == "" {
		lastname = "User"
	}

	u = &models.User{
		Firstname:     firstname,
		Lastname:      lastname,
		Email:         email,
		Usertype:      models.RoleGuest,
		EmailVerified: true,
		OAuthProvider: p.Provider,
		OAuthID:       p.ExternalID,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race with a concurrent first login for the same email.
			return s.users.FindByEmail(ctx, email)
		}
		return nil, err
	}
	return u, nil
}

// ChangePassword sets a new password for a known account after verifying the
// old one. Sessions are untouched; the new password takes effect immediately
// for future logins.
func (s *IdentityService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return &ValidationError{Messages: []string{"new password must be at least 6 characters"}}
	}

	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if u.Password == "" {
		return ErrInvalidCredentials
	}

	ok, err := utils.VerifyPassword(oldPassword, u.Password)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, u.ID, hash)
}
