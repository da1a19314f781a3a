// internal/app/features/authgoogle/handler.go
package authgoogle

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - ExternalID / external_id: Google's stable subject id for the person

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/venuehub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/identity"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// stateTTL bounds how long a user may sit on the consent screen.
const stateTTL = 10 * time.Minute

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	StateStore *oauthstate.Store
	Users      *userstore.Store
	Provider   Provider // nil when Google sign-in is not configured

	// FrontendURL is where the browser lands after the flow ("" = same origin).
	FrontendURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	stateStore *oauthstate.Store,
	users *userstore.Store,
	provider Provider,
	frontendURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:         logger,
		SessionMgr:  sessionMgr,
		AuditLog:    audit,
		StateStore:  stateStore,
		Users:       users,
		Provider:    provider,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.Provider != nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Starts the flow: stores state + PKCE verifier, redirects to Google.          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToLogin(w, r, "google_not_configured")
		return
	}

	st := oauthstate.State{
		State:     oauth2.GenerateVerifier(),
		Verifier:  oauth2.GenerateVerifier(),
		ReturnURL: query.Get(r, "return"),
		ExpiresAt: time.Now().UTC().Add(stateTTL),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, st); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	http.Redirect(w, r, h.Provider.AuthCodeURL(st.State, st.Verifier), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/secrets                                                     |
| Provider callback: validate state, exchange code, unify identity, log in.    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.redirectToLogin(w, r, "google_not_configured")
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectToLogin(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Single use: a replayed callback finds nothing.
	st, ok, err := h.StateStore.Consume(ctx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}
	if !ok {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	assertion, err := h.Provider.Assertion(ctx, code, st.Verifier)
	if err != nil {
		h.Log.Error("Google OAuth exchange failed", zap.Error(err))
		h.redirectToLogin(w, r, "token_exchange")
		return
	}

	u, outcome, err := identity.Unify(ctx, h.Users, assertion)
	if errors.Is(err, identity.ErrMissingEmail) {
		metrics.ObserveAuth("federated_login", "missing_email")
		http.Redirect(w, r, h.FrontendURL+"/email-form", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.Log.Error("identity unification failed", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	if _, err := h.SessionMgr.Login(w, r, u); err != nil {
		h.Log.Error("open session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.redirectToLogin(w, r, "session")
		return
	}

	metrics.ObserveAuth("federated_login", outcome.String())
	h.AuditLog.FederatedLogin(ctx, r, u.ID, assertion.Provider, outcome == identity.Linked)
	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", u.ID.Hex()),
		zap.String("outcome", outcome.String()))

	http.Redirect(w, r, h.FrontendURL+urlutil.SafeReturn(st.ReturnURL, "", "/"), http.StatusSeeOther)
}

// redirectToLogin sends the browser to the frontend login page with an error code.
func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, h.FrontendURL+"/login?"+url.Values{"error": {errorCode}}.Encode(), http.StatusSeeOther)
}
