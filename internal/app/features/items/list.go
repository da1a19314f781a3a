// internal/app/features/items/list.go
package items

import (
	"context"
	"net/http"
	"strings"

	itemstore "github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func listKey(category string) string {
	return "items:list:" + strings.TrimSpace(category)
}

// ServeList returns items ordered by name, optionally filtered by
// ?category=. Results are served from the cache when one is configured.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(query.Get(r, "category"))
	key := listKey(category)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var out []models.Item
	hit, err := h.Cache.GetJSON(ctx, key, &out)
	if err != nil {
		h.Log.Warn("item list cache read failed", zap.Error(err))
	}
	if hit {
		httpjson.Write(w, http.StatusOK, out)
		return
	}

	out, err = h.Items.List(ctx, category)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list items", err, "Please try again later.")
		return
	}
	if err := h.Cache.SetJSON(ctx, key, out, ListTTL); err != nil {
		h.Log.Warn("item list cache write failed", zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, out)
}

// detail is an item with its hotels expanded.
type detail struct {
	models.Item
	Hotels []models.Hotel `json:"hotels"`
}

// ServeDetail returns one item by /viewDetail/{id}. The older
// /viewDetail?item_id= form is also accepted.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		idStr = query.Get(r, "item_id")
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		h.ErrLog.Respond(w, r, itemstore.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	hotels, err := h.Hotels.GetByIDs(ctx, it.HotelIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load item hotels", err, "Please try again later.")
		return
	}

	httpjson.Write(w, http.StatusOK, detail{Item: it, Hotels: hotels})
}
