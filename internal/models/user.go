package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account type. There are exactly two roles and no hierarchy:
// a host is not a superset of a guest or vice versa.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleHost || r == RoleGuest
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Firstname  string `bson:"firstname" json:"firstname"`
	Middlename string `bson:"middlename,omitempty" json:"middlename,omitempty"`
	Lastname   string `bson:"lastname" json:"lastname"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Password   string `bson:"password,omitempty" json:"-"` // argon2id hash; empty for pure-OAuth accounts
	Usertype   Role   `bson:"usertype" json:"usertype"`

	Favourite []primitive.ObjectID `bson:"favourite" json:"favourite"`

	EmailVerified bool `bson:"email_verified" json:"email_verified"`
	PhoneVerified bool `bson:"phone_verified" json:"phone_verified"`

	// Transient password-recovery state. Set on send-otp, overwritten on
	// re-issue, cleared on a successful verify. Stale values are never swept;
	// expiry is enforced by timestamp comparison at verification time.
	EmailOTP     string     `bson:"email_otp,omitempty" json:"-"`
	OTPExpiresAt *time.Time `bson:"otp_expires_at,omitempty" json:"-"`

	// Set together when the account is linked to an external provider,
	// never one without the other.
	OAuthProvider string `bson:"oauth_provider,omitempty" json:"oauth_provider,omitempty"`
	OAuthID       string `bson:"oauth_id,omitempty" json:"-"`
}

// UserSummary is the projection embedded in listing responses
// (host info, rating authors) and never carries credentials.
type UserSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Firstname string             `bson:"firstname" json:"firstname"`
	Lastname  string             `bson:"lastname" json:"lastname"`
	Email     string             `bson:"email" json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname, Email: u.Email}
}

// HasFavourite reports whether homeID is in the favourite set.
func (u *User) HasFavourite(homeID primitive.ObjectID) bool {
	for _, id := range u.Favourite {
		if id == homeID {
			return true
		}
	}
	return false
}
