// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}

// ServeProfile handles GET /profile: the signed-in user's record, without secrets.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, authz.ErrUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Deleted between session resolution and now.
		h.ErrLog.Respond(w, r, authz.ErrUnauthorized)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile", err, "Could not load your profile.")
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}
