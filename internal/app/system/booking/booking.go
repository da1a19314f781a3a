// Package booking is the reservation workflow: validate a request against the
// catalogue, persist it, then tell the guest. The notification leg never
// undoes a saved reservation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxSpecialRequests caps the stored special-requests text, in runes.
const MaxSpecialRequests = 1000

const dateLayout = "Mon 2 Jan 2006"

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidPersons   = errors.New("number of persons must not be negative")
)

// Items is the catalogue lookup the workflow needs.
type Items interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Item, error)
}

// Reservations persists and lists bookings.
type Reservations interface {
	Create(ctx context.Context, r models.Reservation) (models.Reservation, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error)
}

// Request is one booking attempt as received from a client.
type Request struct {
	ItemID          string
	StartDate       time.Time
	EndDate         time.Time
	NumberOfPersons int
	SpecialRequests string
}

// Result is a persisted reservation plus the outcome of the confirmation
// email. Notified is false when NotifyErr is set.
type Result struct {
	Reservation models.Reservation
	Item        models.Item
	Notified    bool
	NotifyErr   error
}

// Workflow runs reservation requests.
type Workflow struct {
	items        Items
	reservations Reservations
	notifier     mailer.Notifier
	siteName     string
	log          *zap.Logger
}

// New wires a Workflow. A nil logger is replaced with a no-op logger.
func New(items Items, reservations Reservations, notifier mailer.Notifier, siteName string, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		items:        items,
		reservations: reservations,
		notifier:     notifier,
		siteName:     siteName,
		log:          logger,
	}
}

// Create validates req, stores a pending reservation for u, then emails u.
// A returned error means nothing was stored.
func (w *Workflow) Create(ctx context.Context, u *auth.SessionUser, req Request) (Result, error) {
	if err := authz.CheckAuthenticated(u); err != nil {
		return Result{}, err
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Result{}, authz.ErrUnauthorized
	}

	item, err := w.lookupItem(ctx, req.ItemID)
	if err != nil {
		return Result{}, err
	}
	if req.StartDate.After(req.EndDate) {
		return Result{}, ErrInvalidDateRange
	}
	if req.NumberOfPersons < 0 {
		return Result{}, ErrInvalidPersons
	}

	res, err := w.reservations.Create(ctx, models.Reservation{
		UserID:          userID,
		ItemID:          item.ID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		NumberOfPersons: req.NumberOfPersons,
		SpecialRequests: cleanRequests(req.SpecialRequests),
	})
	if err != nil {
		return Result{}, fmt.Errorf("store reservation: %w", err)
	}
	metrics.ObserveReservation()

	out := Result{Reservation: res, Item: item}
	out.NotifyErr = w.notify(ctx, u, item, res)
	out.Notified = out.NotifyErr == nil
	return out, nil
}

// ListMine returns the principal's reservations, newest first.
func (w *Workflow) ListMine(ctx context.Context, u *auth.SessionUser) ([]models.Reservation, error) {
	if err := authz.CheckAuthenticated(u); err != nil {
		return nil, err
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, authz.ErrUnauthorized
	}
	return w.reservations.ListByUser(ctx, userID)
}

func (w *Workflow) lookupItem(ctx context.Context, hexID string) (models.Item, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return models.Item{}, ErrItemNotFound
	}
	item, err := w.items.GetByID(ctx, id)
	if errors.Is(err, itemstore.ErrNotFound) {
		return models.Item{}, ErrItemNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("load item: %w", err)
	}
	return item, nil
}

func (w *Workflow) notify(ctx context.Context, u *auth.SessionUser, item models.Item, res models.Reservation) error {
	if u.Email == "" {
		err := errors.New("principal has no email address")
		metrics.ObserveEmail("reservation", err)
		return err
	}
	name := u.Name
	if name == "" {
		name = u.Username
	}
	email := mailer.BuildReservationEmail(u.Email, mailer.ReservationEmailData{
		SiteName:        w.siteName,
		Name:            name,
		ItemName:        item.Name,
		Reference:       res.Reference,
		StartDate:       res.StartDate.Format(dateLayout),
		EndDate:         res.EndDate.Format(dateLayout),
		NumberOfPersons: res.NumberOfPersons,
		SpecialRequests: res.SpecialRequests,
	})
	err := w.notifier.Send(ctx, email)
	metrics.ObserveEmail("reservation", err)
	if err != nil {
		w.log.Warn("reservation saved but confirmation email failed",
			zap.String("reference", res.Reference),
			zap.String("user_id", u.ID),
			zap.Error(err))
	}
	return err
}

func cleanRequests(s string) string {
	s = htmlsanitize.PlainText(s)
	if utf8.RuneCountInString(s) <= MaxSpecialRequests {
		return s
	}
	return string([]rune(s)[:MaxSpecialRequests])
}
