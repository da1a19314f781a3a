// internal/app/features/items/create.go
package items

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxImages = 7

type createRequest struct {
	Name        string             `json:"name"`
	ShortDetail string             `json:"short_detail"`
	Detail      string             `json:"detail"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Address     string             `json:"address"`
	PlaceID     string             `json:"place_id"`
	Category    string             `json:"category"`
	SpecialDate models.SpecialDate `json:"special_date"`
	Images      []string           `json:"images"`
	HotelIDs    []string           `json:"hotel_ids"`
}

// HandleCreate stores a new item. The route is gated to officers and admins.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req createRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxItemBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}
	if len(req.Images) > maxImages {
		uierrors.RenderBadRequest(w, "An item can have at most 7 images.")
		return
	}
	hotelIDs, ok := parseIDs(req.HotelIDs)
	if !ok {
		uierrors.RenderBadRequest(w, "hotel_ids must be valid ids.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if len(hotelIDs) > 0 {
		found, err := h.Hotels.GetByIDs(ctx, hotelIDs)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "load hotels for item", err, "Please try again later.")
			return
		}
		if len(found) != len(hotelIDs) {
			uierrors.RenderBadRequest(w, "One or more hotels do not exist.")
			return
		}
	}

	it := models.Item{
		Name:        htmlsanitize.PlainText(req.Name),
		ShortDetail: htmlsanitize.PlainText(req.ShortDetail),
		Detail:      htmlsanitize.Sanitize(req.Detail),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     htmlsanitize.PlainText(req.Address),
		PlaceID:     strings.TrimSpace(req.PlaceID),
		Category:    htmlsanitize.PlainText(req.Category),
		SpecialDate: req.SpecialDate,
		Images:      cleanImages(req.Images),
		HotelIDs:    hotelIDs,
		CreatedBy:   actorID,
	}

	created, err := h.Items.Create(ctx, it)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.invalidateLists(ctx, created.Category)
	h.AuditLog.ItemCreated(ctx, r, actorID, created.ID.Hex(), created.Name)

	httpjson.Write(w, http.StatusCreated, created)
}

// invalidateLists drops the unfiltered list and the new item's category.
func (h *Handler) invalidateLists(ctx context.Context, category string) {
	if err := h.Cache.Delete(ctx, listKey(""), listKey(category)); err != nil {
		h.Log.Warn("item list cache invalidation failed", zap.Error(err))
	}
}

// parseIDs converts hex ids, dropping duplicates. Any malformed id fails
// the whole list.
func parseIDs(hexes []string) ([]primitive.ObjectID, bool) {
	seen := make(map[primitive.ObjectID]bool, len(hexes))
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, s := range hexes {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return nil, false
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, true
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
