// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/venuehub/internal/app/store/audit"
)

// listItem is a single audit event as returned to the client.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// listData is the response body for GET /audit.
type listData struct {
	Items []listItem `json:"items"`
	Total int64      `json:"total"`
}

// categoryOption describes one category and the event types recorded under it.
type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"event_types"`
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", EventTypes: eventTypesForCategory(audit.CategoryAuth)},
		{Value: audit.CategoryBooking, Label: "Bookings and catalogue", EventTypes: eventTypesForCategory(audit.CategoryBooking)},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventSignup,
		audit.EventVerificationSent,
		audit.EventEmailVerified,
		audit.EventVerificationFailed,
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginFailedUnverified,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventFederatedLogin,
		audit.EventFederatedLinked,
		audit.EventPasswordResetRequested,
		audit.EventPasswordResetCompleted,
		audit.EventPasswordResetFailed,
	}

	bookingEvents := []string{
		audit.EventReservationCreated,
		audit.EventItemCreated,
		audit.EventItemUpdated,
		audit.EventHotelCreated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryBooking:
		return bookingEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(bookingEvents))
		all = append(all, authEvents...)
		all = append(all, bookingEvents...)
		return all
	default:
		return nil
	}
}
