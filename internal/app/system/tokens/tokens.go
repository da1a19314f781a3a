// Package tokens issues and consumes the single-use tokens behind email
// verification and password reset.
//
// Verification tokens are opaque random strings stored on the user with an
// expiry. Reset tokens are HS256 JWTs that can be checked without the
// database and are also stored on the user, so only the newest one issued
// can be consumed and only once.
package tokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/credential"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	verificationBytes = 32
	resetIssuer       = "venuehub"
	resetAudience     = "password-reset"

	DefaultVerifyTTL = 24 * time.Hour
	DefaultResetTTL  = time.Hour
)

var (
	// ErrInvalidToken is returned when a verification token does not match
	// an unverified account (wrong, reused, or expired).
	ErrInvalidToken = errors.New("invalid verification token")
	// ErrInvalidOrExpiredToken is returned for any reset token that fails
	// signature, expiry, or the stored single-use check.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
)

// Store is the slice of the user store the issuer needs.
type Store interface {
	SetVerificationToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error
	ConsumeVerificationToken(ctx context.Context, username, token string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, id primitive.ObjectID, token string, now time.Time, passwordHash, passwordSalt string) (*models.User, error)
}

// Config configures an Issuer. Zero TTLs take the defaults; Now defaults to
// time.Now.
type Config struct {
	Secret    []byte
	VerifyTTL time.Duration
	ResetTTL  time.Duration
	Now       func() time.Time
}

// Issuer issues and consumes tokens against a Store.
type Issuer struct {
	store     Store
	secret    []byte
	verifyTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

// NewIssuer returns an Issuer. The secret signs reset tokens and must not be empty.
func NewIssuer(store Store, cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("tokens: empty signing secret")
	}
	i := &Issuer{
		store:     store,
		secret:    cfg.Secret,
		verifyTTL: cfg.VerifyTTL,
		resetTTL:  cfg.ResetTTL,
		now:       cfg.Now,
	}
	if i.verifyTTL <= 0 {
		i.verifyTTL = DefaultVerifyTTL
	}
	if i.resetTTL <= 0 {
		i.resetTTL = DefaultResetTTL
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Email verification                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// NewVerificationToken returns a fresh token and its expiry without storing
// it. Signup uses this to insert the user with the token already in place.
func (i *Issuer) NewVerificationToken() (token string, expires time.Time, err error) {
	b := make([]byte, verificationBytes)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(b), i.now().UTC().Add(i.verifyTTL), nil
}

// IssueVerificationToken replaces the token on an unverified user and
// returns it. A verified or missing user yields userstore.ErrNotFound.
func (i *Issuer) IssueVerificationToken(ctx context.Context, u *models.User) (string, error) {
	token, expires, err := i.NewVerificationToken()
	if err != nil {
		return "", err
	}
	if err := i.store.SetVerificationToken(ctx, u.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeVerificationToken verifies the account named by username if token
// is its current, unexpired token. Concurrent calls with the same token
// succeed at most once.
func (i *Issuer) ConsumeVerificationToken(ctx context.Context, username, token string) (*models.User, error) {
	if username == "" || token == "" {
		return nil, ErrInvalidToken
	}
	u, err := i.store.ConsumeVerificationToken(ctx, username, token, i.now())
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Password reset                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// IssuePasswordResetToken signs a reset token for u, stores it with its
// expiry (superseding any earlier one), and returns it.
func (i *Issuer) IssuePasswordResetToken(ctx context.Context, u *models.User) (string, error) {
	now := i.now()
	expires := now.Add(i.resetTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    resetIssuer,
		Subject:   u.ID.Hex(),
		Audience:  jwt.ClaimStrings{resetAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	if err := i.store.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumePasswordResetToken checks the token's signature and expiry, then
// atomically clears it on the referenced user while writing newPassword's
// credential. The token is only touched once the new credential is derived.
func (i *Issuer) ConsumePasswordResetToken(ctx context.Context, token, newPassword string) (*models.User, error) {
	var scratch models.User
	if err := credential.Set(&scratch, newPassword); err != nil {
		return nil, err
	}

	userID, err := i.parseReset(token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	u, err := i.store.ConsumeResetToken(ctx, userID, token, i.now(), scratch.PasswordHash, scratch.PasswordSalt)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// parseReset validates a reset JWT and returns the user id it names.
func (i *Issuer) parseReset(token string) (primitive.ObjectID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(resetIssuer),
		jwt.WithAudience(resetAudience),
	)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(claims.Subject)
}
