// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Events *audit.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an Audit Log feature handler reading from events.
func NewHandler(events *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
		ErrLog: errLog,
	}
}
