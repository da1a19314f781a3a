// internal/app/features/signup/handler.go
package signup

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username / username: The human-readable string users type to log in (matched case-insensitively)

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/credential"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/inputval"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/app/system/tokens"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type Handler struct {
	Users     *userstore.Store
	Tokens    *tokens.Issuer
	Mail      mailer.Notifier
	AuditLog  *auditlog.Logger
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
	BaseURL   string // public origin used in verification links
	SiteName  string
	VerifyTTL time.Duration
}

func NewHandler(
	users *userstore.Store,
	issuer *tokens.Issuer,
	mail mailer.Notifier,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	baseURL, siteName string,
	verifyTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	if verifyTTL <= 0 {
		verifyTTL = tokens.DefaultVerifyTTL
	}
	return &Handler{
		Users:     users,
		Tokens:    issuer,
		Mail:      mail,
		AuditLog:  audit,
		ErrLog:    errLog,
		Log:       logger,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SiteName:  siteName,
		VerifyTTL: verifyTTL,
	}
}

type signupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

type signupResponse struct {
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSignup creates a pending local account and mails its verification link.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxFormBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}

	username := normalize.Username(req.Username)
	email := normalize.Email(req.Email)
	if email == "" {
		// Accounts that sign up with an address as their username may omit email.
		email = normalize.Email(username)
	}
	switch {
	case !inputval.IsValidUsername(username):
		uierrors.RenderBadRequest(w, "Please choose a username without spaces.")
		return
	case req.Password == "":
		uierrors.RenderBadRequest(w, "Password is required.")
		return
	case !inputval.IsValidEmail(email):
		uierrors.RenderBadRequest(w, "Please enter a valid email address.")
		return
	case req.Age < 0:
		uierrors.RenderBadRequest(w, "Age must not be negative.")
		return
	}

	token, expires, err := h.Tokens.NewVerificationToken()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate verification token", err, "Could not create your account.")
		return
	}

	u := models.User{
		Username:                 username,
		Email:                    email,
		Role:                     models.RoleUser,
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
		Profile: models.Profile{
			FirstName: normalize.Name(req.FirstName),
			LastName:  normalize.Name(req.LastName),
			Age:       req.Age,
			Address:   strings.TrimSpace(req.Address),
			Phone:     strings.TrimSpace(req.Phone),
		},
	}
	if err := credential.Set(&u, req.Password); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, u)
	if err != nil {
		metrics.ObserveAuth("signup", "rejected")
		h.ErrLog.Respond(w, r, err)
		return
	}
	metrics.ObserveAuth("signup", "success")
	h.AuditLog.Signup(ctx, r, created.ID, created.Username)

	sent := h.sendVerification(r, &created, token)

	httpjson.Write(w, http.StatusOK, signupResponse{
		Message:   "Account created. Check your email for a verification link.",
		EmailSent: sent,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /verify-email?token=...&username=...                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeVerifyEmail consumes a verification token.
func (h *Handler) ServeVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")
	username := normalize.Username(query.Get(r, "username"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Tokens.ConsumeVerificationToken(ctx, username, token)
	if err != nil {
		if errors.Is(err, tokens.ErrInvalidToken) {
			metrics.ObserveAuth("verify_email", "invalid")
			h.AuditLog.VerificationFailed(ctx, r, username)
		}
		h.ErrLog.Respond(w, r, err)
		return
	}

	metrics.ObserveAuth("verify_email", "success")
	h.AuditLog.EmailVerified(ctx, r, u.ID)
	httpjson.Message(w, http.StatusOK, "Email verified. You can now sign in.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /resend-verification                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type resendRequest struct {
	Email string `json:"email"`
}

const resendAccepted = "If that address belongs to an unverified account, a new link is on its way."

// HandleResend issues a fresh verification token. The response is the same
// whether or not a matching pending account exists.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxFormBody); err != nil {
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
		h.ErrLog.LogServerError(w, r, "find user for resend", err, "Please try again later.")
		return
	}
	if u != nil && !u.IsVerified && u.HasLocalCredential() {
		token, err := h.Tokens.IssueVerificationToken(ctx, u)
		switch {
		case err == nil:
			h.sendVerification(r, u, token)
		case errors.Is(err, userstore.ErrNotFound):
			// verified concurrently
		default:
			h.ErrLog.LogServerError(w, r, "issue verification token", err, "Please try again later.")
			return
		}
	}

	httpjson.Message(w, http.StatusOK, resendAccepted)
}

// sendVerification mails the link and reports whether delivery succeeded.
// Failures are logged; the account stays pending and can ask for a resend.
func (h *Handler) sendVerification(r *http.Request, u *models.User, token string) bool {
	link := h.BaseURL + "/verify-email?" + url.Values{
		"token":    {token},
		"username": {u.Username},
	}.Encode()

	msg := mailer.BuildVerificationEmail(u.Email, mailer.VerificationEmailData{
		SiteName:  h.SiteName,
		Username:  u.Username,
		Link:      link,
		ExpiresIn: mailer.FormatExpiry(h.VerifyTTL),
	})

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := h.Mail.Send(ctx, msg)
	metrics.ObserveEmail("verification", err)
	if err != nil {
		h.Log.Warn("verification email failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	h.AuditLog.VerificationSent(ctx, r, u.ID, err == nil)
	return err == nil
}
