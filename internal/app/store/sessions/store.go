// internal/app/store/sessions/store.go
package sessions

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) hex of the user record
//   - SessionID / session_id: The random id stored in the signed session cookie

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Session is a server-side login session. The cookie carries only ID.
type Session struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	IP        string    `bson:"ip,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty"`
}

// Store persists sessions. Mongo's TTL index on expires_at removes stale
// records eventually; Resolve also checks the expiry so a record past its
// deadline never resolves.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions"), now: func() time.Time { return time.Now().UTC() }}
}

// Open records a new session for userID and returns its id.
func (s *Store) Open(ctx context.Context, userID, ip, userAgent string, expiresAt time.Time) (string, error) {
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
		ExpiresAt: expiresAt.UTC(),
		IP:        ip,
		UserAgent: userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Resolve returns the user id bound to a live session. Lookup errors are
// reported as "no session".
func (s *Store) Resolve(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}
	var sess Session
	err := s.c.FindOne(ctx, bson.M{
		"_id":        sessionID,
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&sess)
	if err != nil {
		return "", false
	}
	return sess.UserID, true
}

// Close removes a session. Closing an unknown session is not an error.
func (s *Store) Close(ctx context.Context, sessionID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// CloseAllForUser removes every session of a user (used after a password reset).
func (s *Store) CloseAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountForUser returns how many live sessions a user holds.
func (s *Store) CountForUser(ctx context.Context, userID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": s.now()},
	})
}

// CleanupExpired deletes sessions whose expiry has passed. The TTL monitor
// runs about once a minute; the cleanup job calls this to keep counts exact.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": s.now()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
