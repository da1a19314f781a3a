package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/venuehub/internal/app/store/audit"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "password", "alice")
	logger.Logout(ctx, req, "")
	logger.PasswordResetRequested(ctx, req, nil)
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "off", Booking: "off"})
	req := httptest.NewRequest("POST", "/login", nil)

	logger.LoginSuccess(ctx, req, userID, "password", "alice")
	logger.ReservationCreated(ctx, req, userID, "ref", "item", true)

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events when config is 'off', got %d", len(events))
	}
}

func TestLogger_Log_ConfigLogOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "log"})
	logger.EmailVerified(ctx, httptest.NewRequest("GET", "/verify-email", nil), userID)

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected nothing in the DB for 'log', got %d", len(events))
	}
}

func TestLogger_AuthEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db", Booking: "db"})
	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	logger.Signup(ctx, req, userID, "alice")
	logger.LoginFailedUnverified(ctx, req, userID, "alice")
	logger.FederatedLogin(ctx, req, userID, "google", true)
	logger.PasswordResetCompleted(ctx, req, userID, 2)

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	byType := map[string]audit.Event{}
	for _, e := range events {
		byType[e.EventType] = e
		if e.IP != "203.0.113.9" {
			t.Errorf("%s: IP = %q, want client address", e.EventType, e.IP)
		}
	}
	if e := byType[audit.EventLoginFailedUnverified]; e.Success || e.FailureReason == "" {
		t.Errorf("unverified login should be a failure with reason: %+v", e)
	}
	if _, ok := byType[audit.EventFederatedLinked]; !ok {
		t.Error("expected federated_linked event")
	}
	if got := byType[audit.EventPasswordResetCompleted].Details["sessions_revoked"]; got != "2" {
		t.Errorf("sessions_revoked = %q, want 2", got)
	}
}

func TestLogger_BookingEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "off", Booking: "db"})
	req := httptest.NewRequest("POST", "/reservation/x", nil)

	logger.ReservationCreated(ctx, req, userID, "ref-1", "item-1", false)

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryBooking})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 booking event, got %d", len(events))
	}
	if events[0].Details["email_sent"] != "false" {
		t.Errorf("email_sent = %q, want false", events[0].Details["email_sent"])
	}
}
