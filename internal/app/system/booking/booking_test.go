package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeItems map[primitive.ObjectID]models.Item

func (f fakeItems) GetByID(_ context.Context, id primitive.ObjectID) (models.Item, error) {
	it, ok := f[id]
	if !ok {
		return models.Item{}, itemstore.ErrNotFound
	}
	return it, nil
}

type fakeReservations struct {
	saved []models.Reservation
	err   error
}

func (f *fakeReservations) Create(_ context.Context, r models.Reservation) (models.Reservation, error) {
	if f.err != nil {
		return models.Reservation{}, f.err
	}
	r.ID = primitive.NewObjectID()
	r.Reference = "ref-" + r.ID.Hex()
	r.Status = models.ReservationPending
	r.ReservationDate = time.Now().UTC()
	f.saved = append(f.saved, r)
	return r, nil
}

func (f *fakeReservations) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	out := []models.Reservation{}
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].UserID == userID {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

type fixture struct {
	wf    *Workflow
	res   *fakeReservations
	mail  *mailer.Recorder
	item  models.Item
	guest *auth.SessionUser
}

func newFixture() *fixture {
	item := models.Item{ID: primitive.NewObjectID(), Name: "Lisbon Fado Night"}
	res := &fakeReservations{}
	rec := &mailer.Recorder{}
	return &fixture{
		wf:   New(fakeItems{item.ID: item}, res, rec, "VenueHub", nil),
		res:  res,
		mail: rec,
		item: item,
		guest: &auth.SessionUser{
			ID:       primitive.NewObjectID().Hex(),
			Username: "ana",
			Name:     "Ana",
			Email:    "ana@example.com",
			Role:     models.RoleUser,
		},
	}
}

func (f *fixture) request() Request {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return Request{
		ItemID:          f.item.ID.Hex(),
		StartDate:       start,
		EndDate:         start.Add(48 * time.Hour),
		NumberOfPersons: 2,
	}
}

func TestCreate_PersistsAndNotifies(t *testing.T) {
	f := newFixture()

	out, err := f.wf.Create(context.Background(), f.guest, f.request())
	require.NoError(t, err)

	assert.True(t, out.Notified)
	assert.NoError(t, out.NotifyErr)
	assert.Equal(t, models.ReservationPending, out.Reservation.Status)
	assert.Equal(t, f.item.ID, out.Reservation.ItemID)
	assert.Equal(t, f.guest.ID, out.Reservation.UserID.Hex())
	require.Len(t, f.res.saved, 1)

	sent, ok := f.mail.Last()
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", sent.To)
	assert.Contains(t, sent.TextBody, "Lisbon Fado Night")
	assert.Contains(t, sent.TextBody, out.Reservation.Reference)
}

func TestCreate_NotifyFailureKeepsReservation(t *testing.T) {
	f := newFixture()
	f.mail.Err = mailer.ErrSMTPDown

	out, err := f.wf.Create(context.Background(), f.guest, f.request())
	require.NoError(t, err)

	assert.False(t, out.Notified)
	assert.ErrorIs(t, out.NotifyErr, mailer.ErrSMTPDown)
	assert.Len(t, f.res.saved, 1, "reservation must not be rolled back")
}

func TestCreate_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		user    func(*fixture) *auth.SessionUser
		mutate  func(*fixture, *Request)
		wantErr error
	}{
		{
			name:    "anonymous",
			user:    func(*fixture) *auth.SessionUser { return nil },
			mutate:  func(*fixture, *Request) {},
			wantErr: authz.ErrUnauthorized,
		},
		{
			name:    "anonymous beats unknown item",
			user:    func(*fixture) *auth.SessionUser { return nil },
			mutate:  func(_ *fixture, r *Request) { r.ItemID = primitive.NewObjectID().Hex() },
			wantErr: authz.ErrUnauthorized,
		},
		{
			name:    "unknown item",
			mutate:  func(_ *fixture, r *Request) { r.ItemID = primitive.NewObjectID().Hex() },
			wantErr: ErrItemNotFound,
		},
		{
			name:    "malformed item id",
			mutate:  func(_ *fixture, r *Request) { r.ItemID = "not-an-id" },
			wantErr: ErrItemNotFound,
		},
		{
			name:    "start after end",
			mutate:  func(_ *fixture, r *Request) { r.StartDate, r.EndDate = r.EndDate, r.StartDate },
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "negative persons",
			mutate:  func(_ *fixture, r *Request) { r.NumberOfPersons = -1 },
			wantErr: ErrInvalidPersons,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			u := f.guest
			if tt.user != nil {
				u = tt.user(f)
			}
			req := f.request()
			tt.mutate(f, &req)

			_, err := f.wf.Create(context.Background(), u, req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.res.saved)
			assert.Empty(t, f.mail.Sent)
		})
	}
}

func TestCreate_SameDayAndZeroPersonsAllowed(t *testing.T) {
	f := newFixture()
	req := f.request()
	req.EndDate = req.StartDate
	req.NumberOfPersons = 0

	_, err := f.wf.Create(context.Background(), f.guest, req)
	assert.NoError(t, err)
}

func TestCreate_SanitisesAndCapsSpecialRequests(t *testing.T) {
	f := newFixture()
	req := f.request()
	req.SpecialRequests = `<script>alert(1)</script>Window seat <b>please</b>`

	out, err := f.wf.Create(context.Background(), f.guest, req)
	require.NoError(t, err)
	assert.NotContains(t, out.Reservation.SpecialRequests, "<")
	assert.Contains(t, out.Reservation.SpecialRequests, "Window seat")

	req.SpecialRequests = strings.Repeat("é", MaxSpecialRequests+50)
	out, err = f.wf.Create(context.Background(), f.guest, req)
	require.NoError(t, err)
	assert.Equal(t, MaxSpecialRequests, len([]rune(out.Reservation.SpecialRequests)))
}

func TestCreate_StoreFailure(t *testing.T) {
	f := newFixture()
	f.res.err = errors.New("mongo down")

	_, err := f.wf.Create(context.Background(), f.guest, f.request())
	require.Error(t, err)
	assert.Empty(t, f.mail.Sent)
}

func TestListMine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.wf.ListMine(ctx, nil)
	assert.ErrorIs(t, err, authz.ErrUnauthorized)

	mine, err := f.wf.ListMine(ctx, f.guest)
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	_, err = f.wf.Create(ctx, f.guest, f.request())
	require.NoError(t, err)
	other := *f.guest
	other.ID = primitive.NewObjectID().Hex()
	_, err = f.wf.Create(ctx, &other, f.request())
	require.NoError(t, err)

	mine, err = f.wf.ListMine(ctx, f.guest)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
