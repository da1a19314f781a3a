// internal/app/features/hotels/list.go
package hotels

import (
	"context"
	"net/http"

	hotelstore "github.com/dalemusser/venuehub/internal/app/store/hotels"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList returns every hotel ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Hotels.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list hotels", err, "Please try again later.")
		return
	}
	httpjson.Write(w, http.StatusOK, rows)
}

// ServeDetail returns one hotel by id.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, hotelstore.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, hotel)
}
