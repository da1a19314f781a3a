// internal/app/system/authz/authz.go
package authz

import (
	"errors"
	"net/http"

	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUnauthorized means the request carries no principal.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the principal's role is not allowed.
	ErrForbidden = errors.New("insufficient role")
)

// CheckAuthenticated fails with ErrUnauthorized when there is no principal.
func CheckAuthenticated(u *auth.SessionUser) error {
	if u == nil {
		return ErrUnauthorized
	}
	return nil
}

// CheckRole implies CheckAuthenticated and then requires u.Role to equal one
// of roles exactly. There is no hierarchy: admin does not satisfy "officer"
// unless both are listed.
func CheckRole(u *auth.SessionUser, roles ...string) error {
	if err := CheckAuthenticated(u); err != nil {
		return err
	}
	for _, role := range roles {
		if u.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// UserCtx returns the principal's role, name, ObjectID and a found flag.
// A malformed id is treated as no principal.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "", "", primitive.NilObjectID, false
	}
	return user.Role, user.Name, userID, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn rejects anonymous requests with 401 before next runs.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.CurrentUser(r)
		if err := CheckAuthenticated(u); err != nil {
			deny(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and principals whose role
// is not listed with 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := auth.CurrentUser(r)
			if err := CheckRole(u, roles...); err != nil {
				deny(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrForbidden) {
		httpjson.Error(w, http.StatusForbidden, "forbidden", "You do not have access to this resource.")
		return
	}
	httpjson.Error(w, http.StatusUnauthorized, "unauthorized", "Please sign in.")
}
