// internal/app/features/logout/handler.go
package logout

import (
	"net/http"
	"strings"

	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger

	// FrontendURL hosts the login page ("" = same origin).
	FrontendURL string
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, frontendURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		SessionMgr:  sessionMgr,
		AuditLog:    audit,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// ServeLogout handles GET /logout. It is safe to hit without a session; the
// response is always a redirect to the frontend login page.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID)
		metrics.ObserveAuth("logout", "success")
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	http.Redirect(w, r, h.FrontendURL+"/login", http.StatusSeeOther)
}
