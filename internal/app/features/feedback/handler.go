// internal/app/features/feedback/handler.go
package feedback

import (
	"context"
	"net/http"
	"strconv"
	"unicode/utf8"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	feedbackstore "github.com/dalemusser/venuehub/internal/app/store/feedback"
	"github.com/dalemusser/venuehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/app/system/ratelimit"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const maxRunes = 2000

type Handler struct {
	Feedback *feedbackstore.Store
	Limiter  ratelimit.Store // per-IP; nil means unlimited
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(store *feedbackstore.Store, limiter ratelimit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Feedback: store,
		Limiter:  limiter,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type createRequest struct {
	Feedback string `json:"feedback"`
}

// HandleCreate stores an anonymous note.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil && !h.Limiter.Allow(ctx, ip) {
		metrics.ObserveRateLimited("feedback")
		w.Header().Set("Retry-After", "60")
		httpjson.Error(w, http.StatusTooManyRequests, "rate_limited", "Too many submissions. Please try again later.")
		return
	}

	var req createRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxFormBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}
	text := htmlsanitize.PlainText(req.Feedback)
	if text == "" {
		uierrors.RenderBadRequest(w, "Feedback cannot be empty.")
		return
	}
	if utf8.RuneCountInString(text) > maxRunes {
		uierrors.RenderBadRequest(w, "Feedback is too long.")
		return
	}

	f, err := h.Feedback.Create(ctx, text, ip)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "store feedback", err, "Please try again later.")
		return
	}
	httpjson.Write(w, http.StatusCreated, f)
}

// ServeRecent lists the newest notes for admins. ?limit= caps the count.
func (h *Handler) ServeRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(query.Get(r, "limit"), 10, 64)
	if limit > 200 {
		limit = 200
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Feedback.Recent(ctx, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list feedback", err, "Please try again later.")
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}
