// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username / username: The human-readable string users type to log in

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/venuehub/internal/app/store/audit"
	"github.com/dalemusser/venuehub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (signup, login, logout, reset, verification).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Booking controls logging for reservation and listing events.
	// Same values as Auth.
	Booking string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers under test can omit it.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryBooking:
		setting = l.config.Booking
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, userID *primitive.ObjectID, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		UserID:    userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Signup & verification                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Signup logs a new local account.
func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	e := authEvent(r, audit.EventSignup, &userID, true)
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// VerificationSent logs a verification email attempt.
func (l *Logger) VerificationSent(ctx context.Context, r *http.Request, userID primitive.ObjectID, delivered bool) {
	e := authEvent(r, audit.EventVerificationSent, &userID, delivered)
	if !delivered {
		e.FailureReason = "mail delivery failed"
	}
	l.Log(ctx, e)
}

// EmailVerified logs a consumed verification token.
func (l *Logger) EmailVerified(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, authEvent(r, audit.EventEmailVerified, &userID, true))
}

// VerificationFailed logs a rejected verification token.
func (l *Logger) VerificationFailed(ctx context.Context, r *http.Request, username string) {
	e := authEvent(r, audit.EventVerificationFailed, nil, false)
	e.FailureReason = "invalid token"
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Login & logout                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// LoginSuccess logs an established session.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, username string) {
	e := authEvent(r, audit.EventLoginSuccess, &userID, true)
	e.Details = map[string]string{"auth_method": authMethod, "username": username}
	l.Log(ctx, e)
}

// LoginFailed logs bad credentials. Unknown users and wrong passwords are
// recorded the same way.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedUsername string) {
	e := authEvent(r, audit.EventLoginFailed, nil, false)
	e.FailureReason = "invalid credentials"
	e.Details = map[string]string{"attempted_username": attemptedUsername}
	l.Log(ctx, e)
}

// LoginFailedUnverified logs a correct password on an unverified account.
func (l *Logger) LoginFailedUnverified(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	e := authEvent(r, audit.EventLoginFailedUnverified, &userID, false)
	e.FailureReason = "email not verified"
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a throttled login attempt.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedUsername, limitType string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, nil, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_username": attemptedUsername, "limit_type": limitType}
	l.Log(ctx, e)
}

// Logout logs a session end. userIDStr may be empty for anonymous logouts.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, authEvent(r, audit.EventLogout, userID, true))
}

// FederatedLogin logs a provider sign-in. linked reports whether an existing
// local account was linked on this login.
func (l *Logger) FederatedLogin(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string, linked bool) {
	eventType := audit.EventFederatedLogin
	if linked {
		eventType = audit.EventFederatedLinked
	}
	e := authEvent(r, eventType, &userID, true)
	e.Details = map[string]string{"provider": provider}
	l.Log(ctx, e)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Password reset                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// PasswordResetRequested logs a forgot-password request. userID is nil when
// the email matched no account.
func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, userID *primitive.ObjectID) {
	e := authEvent(r, audit.EventPasswordResetRequested, userID, userID != nil)
	if userID == nil {
		e.FailureReason = "unknown email"
	}
	l.Log(ctx, e)
}

// PasswordResetCompleted logs a consumed reset token.
func (l *Logger) PasswordResetCompleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, sessionsRevoked int64) {
	e := authEvent(r, audit.EventPasswordResetCompleted, &userID, true)
	e.Details = map[string]string{"sessions_revoked": strconv.FormatInt(sessionsRevoked, 10)}
	l.Log(ctx, e)
}

// PasswordResetFailed logs a rejected reset attempt.
func (l *Logger) PasswordResetFailed(ctx context.Context, r *http.Request, reason string) {
	e := authEvent(r, audit.EventPasswordResetFailed, nil, false)
	e.FailureReason = reason
	l.Log(ctx, e)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Booking                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func bookingEvent(r *http.Request, eventType string, userID primitive.ObjectID, details map[string]string) audit.Event {
	return audit.Event{
		Category:  audit.CategoryBooking,
		EventType: eventType,
		UserID:    &userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	}
}

// ReservationCreated logs a stored reservation and whether its confirmation mail went out.
func (l *Logger) ReservationCreated(ctx context.Context, r *http.Request, userID primitive.ObjectID, reference, itemID string, emailSent bool) {
	l.Log(ctx, bookingEvent(r, audit.EventReservationCreated, userID, map[string]string{
		"reference":  reference,
		"item_id":    itemID,
		"email_sent": strconv.FormatBool(emailSent),
	}))
}

// ItemCreated logs a new listing.
func (l *Logger) ItemCreated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, itemID, name string) {
	l.Log(ctx, bookingEvent(r, audit.EventItemCreated, actorID, map[string]string{
		"item_id": itemID,
		"name":    name,
	}))
}

// ItemUpdated logs an edit to a listing.
func (l *Logger) ItemUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, itemID, name string) {
	l.Log(ctx, bookingEvent(r, audit.EventItemUpdated, actorID, map[string]string{
		"item_id": itemID,
		"name":    name,
	}))
}

// HotelCreated logs a new hotel.
func (l *Logger) HotelCreated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, hotelID, name string) {
	l.Log(ctx, bookingEvent(r, audit.EventHotelCreated, actorID, map[string]string{
		"hotel_id": hotelID,
		"name":     name,
	}))
}
