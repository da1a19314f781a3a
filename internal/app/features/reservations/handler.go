// internal/app/features/reservations/handler.go
package reservations

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/booking"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const mailWarning = "Your reservation was saved, but we could not send the confirmation email."

type Handler struct {
	Booking  *booking.Workflow
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(wf *booking.Workflow, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Booking:  wf,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type createRequest struct {
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	NumberOfPersons int    `json:"number_of_persons"`
	SpecialRequests string `json:"special_requests"`
}

type createResponse struct {
	Reservation models.Reservation `json:"reservation"`
	EmailSent   bool               `json:"email_sent"`
	Warning     string             `json:"warning,omitempty"`
}

// HandleCreate books /reservation/{itemId} for the signed-in user.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req createRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxFormBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		uierrors.RenderBadRequest(w, "start_date must be a date (YYYY-MM-DD).")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		uierrors.RenderBadRequest(w, "end_date must be a date (YYYY-MM-DD).")
		return
	}

	// Long covers the confirmation email as well as the insert.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Booking.Create(ctx, u, booking.Request{
		ItemID:          chi.URLParam(r, "itemId"),
		StartDate:       start,
		EndDate:         end,
		NumberOfPersons: req.NumberOfPersons,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if userID, err := primitive.ObjectIDFromHex(u.ID); err == nil {
		h.AuditLog.ReservationCreated(ctx, r, userID, res.Reservation.Reference, res.Item.ID.Hex(), res.Notified)
	}

	out := createResponse{Reservation: res.Reservation, EmailSent: res.Notified}
	if !res.Notified {
		out.Warning = mailWarning
	}
	httpjson.Write(w, http.StatusCreated, out)
}

// ServeMine lists the signed-in user's reservations, newest first.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Booking.ListMine(ctx, u)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

var errEmptyDate = errors.New("empty date")

// parseDate accepts a calendar date or a full RFC 3339 timestamp. Dates
// are taken as UTC midnight.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
