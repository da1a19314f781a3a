// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth    = "auth"
	CategoryBooking = "booking"
)

// Auth event types
const (
	EventSignup                  = "signup"
	EventVerificationSent        = "verification_sent"
	EventEmailVerified           = "email_verified"
	EventVerificationFailed      = "verification_failed"
	EventLoginSuccess            = "login_success"
	EventLoginFailed             = "login_failed"
	EventLoginFailedUnverified   = "login_failed_unverified"
	EventLoginFailedRateLimit    = "login_failed_rate_limit"
	EventLogout                  = "logout"
	EventFederatedLogin          = "federated_login"
	EventFederatedLinked         = "federated_linked"
	EventPasswordResetRequested  = "password_reset_requested"
	EventPasswordResetCompleted  = "password_reset_completed"
	EventPasswordResetFailed     = "password_reset_failed"
)

// Booking event types
const (
	EventReservationCreated = "reservation_created"
	EventItemCreated        = "item_created"
	EventItemUpdated        = "item_updated"
	EventHotelCreated       = "hotel_created"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who
	UserID *primitive.ObjectID `bson:"user_id,omitempty"`

	// Context
	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	Category  string
	EventType string
	Success   *bool
	Since     *time.Time
	Until     *time.Time
	Limit     int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter counts events matching filter. Limit is ignored.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, buildQuery(filter))
}

func buildQuery(filter QueryFilter) bson.M {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = filter.UserID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Success != nil {
		query["success"] = *filter.Success
	}
	if filter.Since != nil || filter.Until != nil {
		ts := bson.M{}
		if filter.Since != nil {
			ts["$gte"] = *filter.Since
		}
		if filter.Until != nil {
			ts["$lte"] = *filter.Until
		}
		query["timestamp"] = ts
	}
	return query
}

// GetByUser retrieves recent audit events for a specific user.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{UserID: &userID, Limit: limit})
}

// GetFailedLogins retrieves recent failed auth events.
func (s *Store) GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]Event, error) {
	failed := false
	return s.Query(ctx, QueryFilter{
		Category: CategoryAuth,
		Success:  &failed,
		Since:    &since,
		Limit:    limit,
	})
}
