// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(authz.RequireSignedIn).Get("/", h.ServeProfile)
	return r
}
