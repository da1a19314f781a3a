// internal/app/features/password/handler.go
package password

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/store/sessions"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/inputval"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/app/system/tokens"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const forgotAccepted = "If an account exists for that address, a reset link has been sent."

type Handler struct {
	Users    *userstore.Store
	Sessions *sessions.Store
	Tokens   *tokens.Issuer
	Mail     mailer.Notifier
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	FrontendURL string // reset links point at the frontend's reset page
	SiteName    string
	ResetTTL    time.Duration

	// RevealUnknownEmail restores the legacy 404 for unknown addresses.
	RevealUnknownEmail bool
}

// Options carries the non-dependency settings for NewHandler.
type Options struct {
	FrontendURL        string
	SiteName           string
	ResetTTL           time.Duration
	RevealUnknownEmail bool
}

func NewHandler(
	users *userstore.Store,
	sessStore *sessions.Store,
	issuer *tokens.Issuer,
	mail mailer.Notifier,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	opts Options,
	logger *zap.Logger,
) *Handler {
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = tokens.DefaultResetTTL
	}
	return &Handler{
		Users:              users,
		Sessions:           sessStore,
		Tokens:             issuer,
		Mail:               mail,
		AuditLog:           audit,
		ErrLog:             errLog,
		Log:                logger,
		FrontendURL:        strings.TrimRight(opts.FrontendURL, "/"),
		SiteName:           opts.SiteName,
		ResetTTL:           opts.ResetTTL,
		RevealUnknownEmail: opts.RevealUnknownEmail,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /forgot-password                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type forgotRequest struct {
	Email string `json:"email"`
}

// HandleForgot issues a reset token and mails the link. Unless
// RevealUnknownEmail is set the reply is identical for known and unknown
// addresses, and mail failures are logged rather than surfaced.
func (h *Handler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxCredentialsBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}
	email := normalize.Email(req.Email)
	if !inputval.IsValidEmail(email) {
		uierrors.RenderBadRequest(w, "Please enter a valid email address.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find user for reset", err, "Please try again later.")
		return
	}
	if u == nil {
		h.AuditLog.PasswordResetRequested(ctx, r, nil)
		if h.RevealUnknownEmail {
			uierrors.RenderNotFound(w, "No account with that email address exists.")
			return
		}
		httpjson.Message(w, http.StatusOK, forgotAccepted)
		return
	}

	token, err := h.Tokens.IssuePasswordResetToken(ctx, u)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue reset token", err, "Please try again later.")
		return
	}
	h.AuditLog.PasswordResetRequested(ctx, r, &u.ID)

	msg := mailer.BuildPasswordResetEmail(u.Email, mailer.PasswordResetEmailData{
		SiteName:  h.SiteName,
		Link:      h.FrontendURL + "/reset-password/" + token,
		ExpiresIn: mailer.FormatExpiry(h.ResetTTL),
	})

	mailCtx, mailCancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer mailCancel()
	sendErr := h.Mail.Send(mailCtx, msg)
	metrics.ObserveEmail("password_reset", sendErr)
	if sendErr != nil {
		h.Log.Warn("password reset email failed", zap.String("user_id", u.ID.Hex()), zap.Error(sendErr))
	}

	httpjson.Message(w, http.StatusOK, forgotAccepted)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /reset-password/{token}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type resetRequest struct {
	Password string `json:"password"`
}

// HandleReset sets a new password from a reset token and signs the user out
// everywhere.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxCredentialsBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}

	if req.Password == "" {
		uierrors.RenderBadRequest(w, "Password is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Tokens.ConsumePasswordResetToken(ctx, token, req.Password)
	if err != nil {
		if errors.Is(err, tokens.ErrInvalidOrExpiredToken) {
			h.AuditLog.PasswordResetFailed(ctx, r, "invalid_or_expired_token")
		}
		h.ErrLog.Respond(w, r, err)
		return
	}

	var revoked int64
	if h.Sessions != nil {
		revoked, err = h.Sessions.CloseAllForUser(ctx, u.ID.Hex())
		if err != nil {
			// The password is already changed; report success but keep a trace.
			h.Log.Error("revoke sessions after reset", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
	}
	metrics.ObserveAuth("password_reset", "success")
	h.AuditLog.PasswordResetCompleted(ctx, r, u.ID, revoked)

	httpjson.Message(w, http.StatusOK, "Your password has been reset. Please sign in.")
}
