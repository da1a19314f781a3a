// internal/app/features/items/handler.go
package items

import (
	"time"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	hotelstore "github.com/dalemusser/venuehub/internal/app/store/hotels"
	itemstore "github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/cache"
	"go.uber.org/zap"
)

// ListTTL bounds how stale a cached item list can be.
const ListTTL = 5 * time.Minute

type Handler struct {
	Items    *itemstore.Store
	Hotels   *hotelstore.Store
	Cache    *cache.Cache // nil disables caching
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(items *itemstore.Store, hotels *hotelstore.Store, c *cache.Cache, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Items:    items,
		Hotels:   hotels,
		Cache:    c,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
