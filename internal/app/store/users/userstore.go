// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username / username_ci: The human-readable name users type to log in (folded copy for lookups)

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index names referenced when classifying duplicate-key errors. They must
// match the definitions in system/indexes.
const (
	IndexEmail      = "uniq_users_email"
	IndexUsername   = "uniq_users_username_ci"
	IndexExternalID = "uniq_users_external_id"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	// ErrDuplicateExternalID is returned when a federated identity is already linked to another user.
	ErrDuplicateExternalID = errors.New("this external identity is already linked")
	// ErrNotFound is returned by conditional updates that matched no user.
	ErrNotFound = errors.New("no matching user")

	errBadRole = errors.New(`role must be "user"|"officer"|"admin"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail is GetByEmail with a nil user instead of an error when
// nothing matches.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return u, err
}

// FindByUsername looks up a user by case-insensitive username and returns
// (nil, nil) when nothing matches.
func (s *Store) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"username_ci": normalize.UsernameCI(username)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// Uniqueness of email, username and external id is enforced by indexes and
// reported as ErrDuplicateEmail, ErrDuplicateUsername or ErrDuplicateExternalID.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = normalize.UsernameCI(u.Username)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	switch u.Role {
	case models.RoleUser, models.RoleOfficer, models.RoleAdmin:
	default:
		return models.User{}, errBadRole
	}
	if u.ExternalID != nil && *u.ExternalID == models.LegacyUnlinkedExternalID {
		u.ExternalID = nil
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, classifyDup(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// classifyDup maps a duplicate-key error to the sentinel for the index that
// rejected the write.
func classifyDup(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, IndexUsername), strings.Contains(msg, "username_ci"):
		return ErrDuplicateUsername
	case strings.Contains(msg, IndexExternalID), strings.Contains(msg, "external_id"):
		return ErrDuplicateExternalID
	default:
		return ErrDuplicateEmail
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Email verification                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// SetVerificationToken stores a new pending-verification token on an
// unverified user, replacing any previous one. Returns ErrNotFound if the
// user does not exist or is already verified.
func (s *Store) SetVerificationToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_verified": false},
		bson.M{"$set": bson.M{
			"verification_token":         token,
			"verification_token_expires": expires.UTC(),
			"updated_at":                 time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken marks the user verified and clears the token in a
// single find-and-modify. Only an unverified user whose username and
// unexpired token both match is updated, so a token works at most once.
// Returns ErrNotFound when nothing matched.
func (s *Store) ConsumeVerificationToken(ctx context.Context, username, token string, now time.Time) (*models.User, error) {
	filter := bson.M{
		"username_ci":        normalize.UsernameCI(username),
		"verification_token": token,
		"is_verified":        false,
		"$or": bson.A{
			bson.M{"verification_token_expires": bson.M{"$exists": false}},
			bson.M{"verification_token_expires": bson.M{"$gt": now.UTC()}},
		},
	}
	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": now.UTC()},
		"$unset": bson.M{"verification_token": "", "verification_token_expires": ""},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Password reset                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// SetResetToken records the outstanding reset token and its expiry,
// superseding any earlier one.
func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"reset_token":         token,
			"reset_token_expires": expires.UTC(),
			"updated_at":          time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken writes the new credential and clears the reset token in
// one find-and-modify, but only while the stored token equals token and has
// not expired. Returns ErrNotFound when nothing matched.
func (s *Store) ConsumeResetToken(ctx context.Context, id primitive.ObjectID, token string, now time.Time, passwordHash, passwordSalt string) (*models.User, error) {
	filter := bson.M{
		"_id":                 id,
		"reset_token":         token,
		"reset_token_expires": bson.M{"$gt": now.UTC()},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"password_salt": passwordSalt,
			"updated_at":    now.UTC(),
		},
		"$unset": bson.M{"reset_token": "", "reset_token_expires": ""},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

// ClearExpiredResetTokens removes reset tokens whose expiry has passed.
func (s *Store) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"reset_token_expires": bson.M{"$lt": now.UTC()}},
		bson.M{"$unset": bson.M{"reset_token": "", "reset_token_expires": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetRole changes a user's role. Returns ErrNotFound when no user has id.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	switch role {
	case models.RoleUser, models.RoleOfficer, models.RoleAdmin:
	default:
		return nil, errBadRole
	}
	return s.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}},
	)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Federated identity                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// LinkExternal attaches externalID to a user that is not yet linked. Profile
// fields from fill are written only where the stored profile is empty. The
// account becomes verified and any pending verification token is dropped.
//
// The update is conditional on the user still being unlinked; if another
// request linked it first, ErrNotFound is returned and the caller should
// re-read.
func (s *Store) LinkExternal(ctx context.Context, current *models.User, externalID string, fill models.Profile) (*models.User, error) {
	now := time.Now().UTC()
	set := bson.M{
		"external_id": externalID,
		"is_verified": true,
		"updated_at":  now,
	}
	for field, v := range profileBackfill(current.Profile, fill) {
		set["profile."+field] = v
	}

	filter := bson.M{
		"_id": current.ID,
		"$or": bson.A{
			bson.M{"external_id": bson.M{"$exists": false}},
			bson.M{"external_id": ""},
			bson.M{"external_id": models.LegacyUnlinkedExternalID},
		},
	}
	update := bson.M{
		"$set":   set,
		"$unset": bson.M{"verification_token": "", "verification_token_expires": ""},
	}
	u, err := s.findOneAndUpdate(ctx, filter, update)
	if err != nil && wafflemongo.IsDup(err) {
		return nil, ErrDuplicateExternalID
	}
	return u, err
}

// profileBackfill returns the bson field names (under profile.) that are
// empty in have and non-empty in fill.
func profileBackfill(have, fill models.Profile) map[string]any {
	out := map[string]any{}
	if have.FirstName == "" && fill.FirstName != "" {
		out["first_name"] = fill.FirstName
	}
	if have.LastName == "" && fill.LastName != "" {
		out["last_name"] = fill.LastName
	}
	if have.AvatarURL == "" && fill.AvatarURL != "" {
		out["avatar_url"] = fill.AvatarURL
	}
	if have.Address == "" && fill.Address != "" {
		out["address"] = fill.Address
	}
	if have.Phone == "" && fill.Phone != "" {
		out["phone"] = fill.Phone
	}
	if have.Age == 0 && fill.Age != 0 {
		out["age"] = fill.Age
	}
	return out
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
