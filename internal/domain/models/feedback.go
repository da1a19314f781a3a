// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is an anonymous note left by a visitor.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text      string             `bson:"text" json:"feedback"`
	IP        string             `bson:"ip,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
