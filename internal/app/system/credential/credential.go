// Package credential derives, stores and checks local passwords.
//
// Passwords are stretched with PBKDF2-HMAC-SHA512 using a per-user random
// salt. Only the hex-encoded salt and derived key are kept on the user.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dalemusser/venuehub/internal/domain/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltBytes  = 16
	Iterations = 10000
	KeyBytes   = 64
)

// ErrInvalidCredentials covers unknown usernames, wrong passwords and
// accounts that have no local password. Callers must not distinguish them.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Set generates a fresh salt, derives the key for plain and stores both on u.
// Any previous credential is replaced. Nothing is persisted. Set imposes no
// password policy; it fails only when the salt cannot be generated.
func Set(u *models.User, plain string) error {
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	u.PasswordSalt = hex.EncodeToString(salt)
	u.PasswordHash = hex.EncodeToString(derive(plain, salt))
	return nil
}

// Validate re-derives the key from plain with the stored salt and compares it
// in constant time. A user without a local credential never validates.
func Validate(u *models.User, plain string) bool {
	if u == nil || !u.HasLocalCredential() {
		return false
	}
	salt, err := hex.DecodeString(u.PasswordSalt)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(u.PasswordHash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derive(plain, salt), want) == 1
}

func derive(plain string, salt []byte) []byte {
	return pbkdf2.Key([]byte(plain), salt, Iterations, KeyBytes, sha512.New)
}

// Lookup finds a user by username. It returns (nil, nil) when there is no
// such user.
type Lookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Verify checks a username/password pair against the given lookup. It has no
// side effects. On success the matching user is returned; every rejection is
// ErrInvalidCredentials. Verification state is not checked here.
func Verify(ctx context.Context, users Lookup, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !Validate(u, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
