// internal/app/features/items/routes.go
package items

import (
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

var staffOnly = authz.RequireRole(models.RoleOfficer, models.RoleAdmin)

// Routes is mounted at /items.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.With(staffOnly).Post("/", h.HandleCreate)
	r.With(staffOnly).Put("/{id}", h.HandleUpdate)
	return r
}

// Register adds the top-level aliases: POST /add, PUT /updateItem/{id}
// and GET /viewDetail.
func Register(r chi.Router, h *Handler) {
	r.With(staffOnly).Post("/add", h.HandleCreate)
	r.With(staffOnly).Put("/updateItem/{id}", h.HandleUpdate)
	r.Get("/viewDetail", h.ServeDetail)
	r.Get("/viewDetail/{id}", h.ServeDetail)
}
