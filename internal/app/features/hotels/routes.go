// internal/app/features/hotels/routes.go
package hotels

import (
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /hotels.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)
	r.With(authz.RequireRole(models.RoleOfficer, models.RoleAdmin)).Post("/", h.HandleCreate)
	return r
}

// Register adds POST /addHotel.
func Register(r chi.Router, h *Handler) {
	r.With(authz.RequireRole(models.RoleOfficer, models.RoleAdmin)).Post("/addHotel", h.HandleCreate)
}
