// internal/domain/models/item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpecialDate is a recurring day of the year an item is known for
// (a festival, a holiday).
type SpecialDate struct {
	Day   int `bson:"day" json:"day"`     // 1..31
	Month int `bson:"month" json:"month"` // 1..12
}

// Item is a bookable place or event.
type Item struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	ShortDetail string               `bson:"short_detail,omitempty" json:"short_detail,omitempty"`
	Detail      string               `bson:"detail,omitempty" json:"detail,omitempty"`
	Latitude    float64              `bson:"latitude" json:"latitude"`
	Longitude   float64              `bson:"longitude" json:"longitude"`
	Address     string               `bson:"address,omitempty" json:"address,omitempty"`
	PlaceID     string               `bson:"place_id,omitempty" json:"place_id,omitempty"`
	Category    string               `bson:"category" json:"category"`
	SpecialDate SpecialDate          `bson:"special_date" json:"special_date"`
	Images      []string             `bson:"images,omitempty" json:"images,omitempty"`
	HotelIDs    []primitive.ObjectID `bson:"hotel_ids,omitempty" json:"hotel_ids,omitempty"`

	CreatedBy primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
