// internal/app/features/reservations/routes.go
package reservations

import (
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /reservation.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireSignedIn)
	r.Post("/{itemId}", h.HandleCreate)
	return r
}

// MineRoutes is mounted at /reservations.
func MineRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireSignedIn)
	r.Get("/", h.ServeMine)
	return r
}
