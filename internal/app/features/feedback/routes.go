// internal/app/features/feedback/routes.go
package feedback

import (
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /feedback.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(authz.RequireRole(models.RoleAdmin)).Get("/", h.ServeRecent)
	return r
}

// Register adds POST /addFeedback.
func Register(r chi.Router, h *Handler) {
	r.Post("/addFeedback", h.HandleCreate)
}
