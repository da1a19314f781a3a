// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/audit" from bootstrap). Admins only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	r.Get("/categories", h.ServeCategories)
	return r
}
