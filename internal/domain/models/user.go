// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. Authorization compares these as exact strings; there is no hierarchy.
const (
	RoleUser    = "user"
	RoleOfficer = "officer"
	RoleAdmin   = "admin"
)

// LegacyUnlinkedExternalID is the marker older records carry in external_id
// for accounts created through local signup. It is read as "not linked" and
// never written by this service.
const LegacyUnlinkedExternalID = "***"

// Profile holds descriptive, user-editable fields.
type Profile struct {
	FirstName string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Age       int    `bson:"age,omitempty" json:"age,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}

// User is a person who can sign in, either with a local password, a linked
// Google account, or both.
//
// A local account is in exactly one of two states: verified (IsVerified true,
// no VerificationToken) or pending (IsVerified false, VerificationToken set).
// Secrets never leave the service; they are excluded from JSON.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"-"` // folded for case-insensitive lookup
	Email      string             `bson:"email" json:"email"`   // lowercased, unique
	Role       string             `bson:"role" json:"role"`     // user | officer | admin

	// Local credential. Both empty means the account is federated-only.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	PasswordSalt string `bson:"password_salt,omitempty" json:"-"`

	// Federated credential (Google subject id).
	ExternalID *string `bson:"external_id,omitempty" json:"-"`

	IsVerified               bool       `bson:"is_verified" json:"is_verified"`
	VerificationToken        *string    `bson:"verification_token,omitempty" json:"-"`
	VerificationTokenExpires *time.Time `bson:"verification_token_expires,omitempty" json:"-"`

	ResetToken        *string    `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpires *time.Time `bson:"reset_token_expires,omitempty" json:"-"`

	Profile Profile `bson:"profile" json:"profile"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasLocalCredential reports whether a password has been set for the user.
func (u *User) HasLocalCredential() bool {
	return u.PasswordHash != "" && u.PasswordSalt != ""
}

// IsLinked reports whether the user has a federated identity attached.
func (u *User) IsLinked() bool {
	return u.ExternalID != nil && *u.ExternalID != "" && *u.ExternalID != LegacyUnlinkedExternalID
}
