// internal/app/features/hotels/create.go
package hotels

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/inputval"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
)

const maxAmenities = 50

// createRequest keeps contact details flat, as the booking frontend posts them.
type createRequest struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Rating    *float64 `json:"rating"`
	Amenities []string `json:"amenities"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Website   string   `json:"website"`
}

// HandleCreate stores a new hotel. The route is gated to officers and admins.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req createRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxFormBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}

	hotel, msg := req.toHotel()
	if msg != "" {
		uierrors.RenderBadRequest(w, msg)
		return
	}
	hotel.CreatedBy = actorID

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Hotels.Create(ctx, hotel)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.AuditLog.HotelCreated(ctx, r, actorID, created.ID.Hex(), created.Name)

	httpjson.Write(w, http.StatusCreated, created)
}

// toHotel cleans the request. A non-empty message describes the first
// field that failed.
func (req createRequest) toHotel() (models.Hotel, string) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return models.Hotel{}, "Coordinates are out of range."
	}
	if len(req.Amenities) > maxAmenities {
		return models.Hotel{}, "Too many amenities."
	}

	email := normalize.Email(req.Email)
	if email != "" && !inputval.IsValidEmail(email) {
		return models.Hotel{}, "Contact email is not valid."
	}
	website := strings.TrimSpace(req.Website)
	if website != "" && !isHTTPURL(website) {
		return models.Hotel{}, "Website must be an http or https URL."
	}

	amenities := make([]string, 0, len(req.Amenities))
	for _, a := range req.Amenities {
		if a = htmlsanitize.PlainText(a); a != "" {
			amenities = append(amenities, a)
		}
	}

	return models.Hotel{
		Name:      htmlsanitize.PlainText(req.Name),
		Address:   htmlsanitize.PlainText(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Rating:    req.Rating,
		Amenities: amenities,
		Contact: models.Contact{
			Phone:   htmlsanitize.PlainText(req.Phone),
			Email:   email,
			Website: website,
		},
	}, ""
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
