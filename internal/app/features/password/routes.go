// internal/app/features/password/routes.go
package password

import "github.com/go-chi/chi/v5"

// ForgotRoutes is mounted at /forgot-password.
func ForgotRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleForgot)
	return r
}

// ResetRoutes is mounted at /reset-password.
func ResetRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{token}", h.HandleReset)
	return r
}
