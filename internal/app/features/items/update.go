// internal/app/features/items/update.go
package items

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	itemstore "github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/app/system/authz"
	"github.com/dalemusser/venuehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/limits"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// updateRequest carries the editable fields. Absent fields stay as stored.
type updateRequest struct {
	Name    *string   `json:"name"`
	Detail  *string   `json:"detail"`
	Address *string   `json:"address"`
	Images  *[]string `json:"images"`
}

// HandleUpdate edits name, detail, address or images of an item.
// The route is gated to officers and admins.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		uierrors.RenderNotFound(w, "Item not found.")
		return
	}

	var req updateRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxItemBody); err != nil {
		uierrors.RenderBadRequest(w, "Invalid request body.")
		return
	}

	var p itemstore.Patch
	if req.Name != nil {
		v := htmlsanitize.PlainText(*req.Name)
		p.Name = &v
	}
	if req.Detail != nil {
		v := htmlsanitize.Sanitize(*req.Detail)
		p.Detail = &v
	}
	if req.Address != nil {
		v := htmlsanitize.PlainText(*req.Address)
		p.Address = &v
	}
	if req.Images != nil {
		if len(*req.Images) > maxImages {
			uierrors.RenderBadRequest(w, "An item can have at most 7 images.")
			return
		}
		v := cleanImages(*req.Images)
		p.Images = &v
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Items.Update(ctx, id, p)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.invalidateLists(ctx, updated.Category)
	h.AuditLog.ItemUpdated(ctx, r, actorID, updated.ID.Hex(), updated.Name)

	httpjson.Write(w, http.StatusOK, updated)
}
