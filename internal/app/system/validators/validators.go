// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/venuehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Accounts and the catalogue
	ensure("users", usersSchema())
	ensure("items", itemsSchema())
	ensure("hotels", hotelsSchema())

	// Bookings and visitor notes
	ensure("reservations", reservationsSchema())
	ensure("feedback", feedbackSchema())

	// Short-lived or append-only records; no validators.
	ensure("sessions", nil)
	ensure("oauth_states", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer  = bson.A{"int", "long"}
)

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "email", "role", "is_verified"},
			"properties": bson.M{
				"username":           nonBlank,
				"username_ci":        nonBlank,
				"email":              bson.M{"bsonType": "string"},
				"role":               bson.M{"enum": bson.A{models.RoleUser, models.RoleOfficer, models.RoleAdmin}},
				"is_verified":        bson.M{"bsonType": "bool"},
				"password_hash":      bson.M{"bsonType": "string"},
				"password_salt":      bson.M{"bsonType": "string"},
				"external_id":        bson.M{"bsonType": "string"},
				"verification_token": bson.M{"bsonType": "string"},
				"reset_token":        bson.M{"bsonType": "string"},
				"profile":            bson.M{"bsonType": "object"},
			},
		},
	}
}

func itemsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "latitude", "longitude"},
			"properties": bson.M{
				"name":      nonBlank,
				"name_ci":   nonBlank,
				"latitude":  bson.M{"bsonType": "number", "minimum": -90, "maximum": 90},
				"longitude": bson.M{"bsonType": "number", "minimum": -180, "maximum": 180},
				"category":  bson.M{"bsonType": "string"},
				"special_date": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"day":   bson.M{"bsonType": integer, "minimum": 0, "maximum": 31},
						"month": bson.M{"bsonType": integer, "minimum": 0, "maximum": 12},
					},
				},
				"images":    bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"hotel_ids": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

func hotelsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "address"},
			"properties": bson.M{
				"name":      nonBlank,
				"name_ci":   nonBlank,
				"address":   nonBlank,
				"rating":    bson.M{"bsonType": "number", "minimum": 0, "maximum": 5},
				"amenities": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func reservationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"reference", "user_id", "item_id", "start_date", "end_date", "status", "reservation_date"},
			"properties": bson.M{
				"reference":         nonBlank,
				"user_id":           bson.M{"bsonType": "objectId"},
				"item_id":           bson.M{"bsonType": "objectId"},
				"start_date":        bson.M{"bsonType": "date"},
				"end_date":          bson.M{"bsonType": "date"},
				"reservation_date":  bson.M{"bsonType": "date"},
				"status":            bson.M{"enum": bson.A{models.ReservationPending, models.ReservationConfirmed, models.ReservationCancelled}},
				"number_of_persons": bson.M{"bsonType": integer, "minimum": 0},
				"special_requests":  bson.M{"bsonType": "string"},
			},
		},
	}
}

func feedbackSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"text", "created_at"},
			"properties": bson.M{
				"text":       nonBlank,
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
