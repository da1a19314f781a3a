// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	hotelstore "github.com/dalemusser/venuehub/internal/app/store/hotels"
	itemstore "github.com/dalemusser/venuehub/internal/app/store/items"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/booking"
	"github.com/dalemusser/venuehub/internal/app/system/credential"
	"github.com/dalemusser/venuehub/internal/app/system/identity"
	"github.com/dalemusser/venuehub/internal/app/system/tokens"
)

// Mapping is the wire form of a domain error.
type Mapping struct {
	Status  int
	Code    string
	Message string
}

// table maps each sentinel to one status and one stable code. Order matters
// only when an error wraps more than one sentinel; the first match wins.
var table = []struct {
	err error
	m   Mapping
}{
	{credential.ErrInvalidCredentials, Mapping{http.StatusUnauthorized, "invalid_credentials", "Invalid username or password."}},
	{auth.ErrUnverified, Mapping{http.StatusUnauthorized, "unverified", "Please verify your email address before signing in."}},
	{authz.ErrUnauthorized, Mapping{http.StatusUnauthorized, "unauthorized", "Please sign in to continue."}},
	{authz.ErrForbidden, Mapping{http.StatusForbidden, "forbidden", "You don't have permission to do that."}},
	{tokens.ErrInvalidToken, Mapping{http.StatusBadRequest, "invalid_token", "This verification link is invalid or has expired."}},
	{tokens.ErrInvalidOrExpiredToken, Mapping{http.StatusBadRequest, "invalid_or_expired_token", "This reset link is invalid or has expired."}},
	{userstore.ErrDuplicateEmail, Mapping{http.StatusBadRequest, "duplicate_email", "That email address is already in use."}},
	{userstore.ErrDuplicateUsername, Mapping{http.StatusBadRequest, "duplicate_username", "That username is already taken."}},
	{userstore.ErrDuplicateExternalID, Mapping{http.StatusConflict, "duplicate_external_id", "That external account is already linked."}},
	{identity.ErrMissingEmail, Mapping{http.StatusBadRequest, "missing_email", "The provider did not share an email address."}},
	{booking.ErrItemNotFound, Mapping{http.StatusNotFound, "item_not_found", "Item not found."}},
	{booking.ErrInvalidDateRange, Mapping{http.StatusBadRequest, "invalid_date_range", "Start date must not be after end date."}},
	{booking.ErrInvalidPersons, Mapping{http.StatusBadRequest, "invalid_persons", "Number of persons must not be negative."}},
	{itemstore.ErrNotFound, Mapping{http.StatusNotFound, "item_not_found", "Item not found."}},
	{itemstore.ErrInvalid, Mapping{http.StatusBadRequest, "invalid_item", ""}},
	{hotelstore.ErrNotFound, Mapping{http.StatusNotFound, "hotel_not_found", "Hotel not found."}},
	{hotelstore.ErrInvalid, Mapping{http.StatusBadRequest, "invalid_hotel", ""}},
}

// ValidationError is a request the handler rejected before any domain call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid returns a *ValidationError for msg.
func Invalid(msg string) error { return &ValidationError{Msg: msg} }

// StatusFor maps err to its wire form. ok is false for unexpected errors.
// Store validation errors (ErrInvalid) carry their detail in the wrapped
// message, so that text is surfaced instead of a canned one.
func StatusFor(err error) (Mapping, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return Mapping{http.StatusBadRequest, "validation", ve.Msg}, true
	}
	for _, e := range table {
		if stderrors.Is(err, e.err) {
			m := e.m
			if m.Message == "" {
				m.Message = err.Error()
			}
			return m, true
		}
	}
	return Mapping{}, false
}
