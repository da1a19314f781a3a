// internal/domain/models/reservation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reservation statuses. New reservations always start as pending.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation is a user's booking of an item for a date range.
type Reservation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference       string             `bson:"reference" json:"reference"` // human-quotable booking reference
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ItemID          primitive.ObjectID `bson:"item_id" json:"item_id"`
	ReservationDate time.Time          `bson:"reservation_date" json:"reservation_date"`
	StartDate       time.Time          `bson:"start_date" json:"start_date"`
	EndDate         time.Time          `bson:"end_date" json:"end_date"`
	Status          string             `bson:"status" json:"status"`
	NumberOfPersons int                `bson:"number_of_persons" json:"number_of_persons"`
	SpecialRequests string             `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
}
