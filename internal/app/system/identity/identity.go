// Package identity reconciles a federated login with the user collection so
// that one email address always maps to one account.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/domain/models"
)

// maxAttempts bounds the re-read loop when concurrent logins race on the
// same email.
const maxAttempts = 3

var (
	// ErrMissingEmail means the provider did not share an email address. The
	// caller should send the browser to the "supply your email" step.
	ErrMissingEmail = errors.New("identity provider returned no email")

	errMissingSubject = errors.New("identity provider returned no user id")
)

// Assertion is what the provider told us about the person signing in.
type Assertion struct {
	Provider       string
	ProviderUserID string
	Email          string
	GivenName      string
	FamilyName     string
	AvatarURL      string
}

// Outcome says which branch Unify took.
type Outcome int

const (
	// Existing: the account was already linked and is returned unchanged.
	Existing Outcome = iota
	// Linked: an existing local account was linked to the provider identity.
	Linked
	// Created: a new verified account was created.
	Created
)

func (o Outcome) String() string {
	switch o {
	case Linked:
		return "linked"
	case Created:
		return "created"
	default:
		return "existing"
	}
}

// Store is the slice of the user store Unify needs.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	LinkExternal(ctx context.Context, current *models.User, externalID string, fill models.Profile) (*models.User, error)
}

func (a Assertion) profile() models.Profile {
	return models.Profile{
		FirstName: strings.TrimSpace(a.GivenName),
		LastName:  strings.TrimSpace(a.FamilyName),
		AvatarURL: strings.TrimSpace(a.AvatarURL),
	}
}

// Unify returns the single account for the asserted email:
//   - an already linked account is returned as-is (local profile edits win);
//   - an unlinked account is linked, verified, and has empty profile fields
//     backfilled from the assertion;
//   - otherwise a verified account is created with the email as username.
//
// When another request creates or links the same account first, the unique
// email index or the conditional link fails and Unify re-reads the winner.
func Unify(ctx context.Context, store Store, a Assertion) (*models.User, Outcome, error) {
	email := normalize.Email(a.Email)
	if email == "" {
		return nil, Existing, ErrMissingEmail
	}
	if strings.TrimSpace(a.ProviderUserID) == "" {
		return nil, Existing, errMissingSubject
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		u, err := store.FindByEmail(ctx, email)
		if err != nil {
			return nil, Existing, fmt.Errorf("find user by email: %w", err)
		}

		if u != nil {
			if u.IsLinked() {
				return u, Existing, nil
			}
			linked, err := store.LinkExternal(ctx, u, a.ProviderUserID, a.profile())
			switch {
			case err == nil:
				return linked, Linked, nil
			case errors.Is(err, userstore.ErrNotFound):
				continue // linked concurrently; re-read
			default:
				return nil, Existing, fmt.Errorf("link external identity: %w", err)
			}
		}

		created, err := createFederated(ctx, store, email, a)
		switch {
		case err == nil:
			return created, Created, nil
		case errors.Is(err, userstore.ErrDuplicateEmail):
			continue // created concurrently; re-read
		default:
			return nil, Existing, err
		}
	}
	return nil, Existing, fmt.Errorf("unify %s identity: gave up after %d attempts", a.Provider, maxAttempts)
}

// createFederated inserts a verified account. The username defaults to the
// email; if some other account already uses that string as its username a
// numbered variant is tried.
func createFederated(ctx context.Context, store Store, email string, a Assertion) (*models.User, error) {
	externalID := a.ProviderUserID
	for n := 0; n < maxAttempts; n++ {
		username := email
		if n > 0 {
			username = fmt.Sprintf("%s-%d", email, n+1)
		}
		u, err := store.Create(ctx, models.User{
			Username:   username,
			Email:      email,
			Role:       models.RoleUser,
			IsVerified: true,
			ExternalID: &externalID,
			Profile:    a.profile(),
		})
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, userstore.ErrDuplicateUsername) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("create federated user: %w", userstore.ErrDuplicateUsername)
}
