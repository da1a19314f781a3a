// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username / username: The human-readable string users type to log in (matched case-insensitively)

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/credential"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/app/system/ratelimit"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"go.uber.org/zap"
)

const retryAfterSeconds = 60

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLoginPost checks a username/password pair and opens a session.
//
// Order: rate limit, credential, verification. Wrong passwords for pending
// accounts therefore look like any other bad credential.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxCredentialsBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}
	username := normalize.Username(req.Username)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, scope := h.Limiter.Check(r, username); !ok {
			metrics.ObserveRateLimited("login_" + string(scope))
			h.AuditLog.LoginFailedRateLimit(ctx, r, username, string(scope))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
			httpjson.Error(w, http.StatusTooManyRequests, "rate_limited", scope.Message())
			return
		}
	}

	/*── credential ─────────────────────────────────────────────────────────*/

	u, err := credential.Verify(ctx, h.Users, username, req.Password)
	if err != nil {
		if errors.Is(err, credential.ErrInvalidCredentials) {
			metrics.ObserveAuth("login", "invalid_credentials")
			h.AuditLog.LoginFailed(ctx, r, username)
			h.ErrLog.Respond(w, r, err)
			return
		}
		h.ErrLog.LogServerError(w, r, "login lookup failed", err, "A server error occurred.")
		return
	}

	/*── session ────────────────────────────────────────────────────────────*/

	if _, err := h.SessionMgr.Login(w, r, u); err != nil {
		if errors.Is(err, auth.ErrUnverified) {
			metrics.ObserveAuth("login", "unverified")
			h.AuditLog.LoginFailedUnverified(ctx, r, u.ID, u.Username)
			h.ErrLog.Respond(w, r, err)
			return
		}
		h.ErrLog.LogServerError(w, r, "open session failed", err, "Unable to create session. Please try again.")
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetUser(r, username)
	}
	metrics.ObserveAuth("login", "success")
	h.AuditLog.LoginSuccess(ctx, r, u.ID, "password", u.Username)
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))

	httpjson.Write(w, http.StatusOK, loginResponse{Message: "Logged in.", User: u})
}
