// internal/app/features/signup/routes.go
package signup

import "github.com/go-chi/chi/v5"

// Routes returns the router mounted at /signup.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSignup)
	return r
}

// Register adds the top-level verification endpoints that sit beside /signup.
func Register(r chi.Router, h *Handler) {
	r.Get("/verify-email", h.ServeVerifyEmail)
	r.Post("/resend-verification", h.HandleResend)
}
