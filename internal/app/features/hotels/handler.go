// internal/app/features/hotels/handler.go
package hotels

import (
	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	hotelstore "github.com/dalemusser/venuehub/internal/app/store/hotels"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

type Handler struct {
	Hotels   *hotelstore.Store
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(hotels *hotelstore.Store, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hotels:   hotels,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
