// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/store/audit"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ServeList handles GET /audit: audit events newest first, filtered by
// category, event_type, user_id, start_date and end_date (YYYY-MM-DD, UTC),
// capped at ?limit= rows. Total counts every match.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))

	limit := defaultLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = min(n, maxLimit)
	}

	if category != "" && eventTypesForCategory(category) == nil {
		uierrors.RenderBadRequest(w, "Unknown category.")
		return
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     int64(limit),
	}

	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			uierrors.RenderBadRequest(w, "Invalid user_id.")
			return
		}
		filter.UserID = &oid
	}
	if startDate != "" {
		t, err := time.Parse(time.DateOnly, startDate)
		if err != nil {
			uierrors.RenderBadRequest(w, "start_date must be YYYY-MM-DD.")
			return
		}
		filter.Since = &t
	}
	if endDate != "" {
		t, err := time.Parse(time.DateOnly, endDate)
		if err != nil {
			uierrors.RenderBadRequest(w, "end_date must be YYYY-MM-DD.")
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.Until = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events", err, "A database error occurred.")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events", err, "A database error occurred.")
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.UserID != nil {
			item.UserID = e.UserID.Hex()
		}
		items = append(items, item)
	}

	httpjson.Write(w, http.StatusOK, listData{
		Items: items,
		Total: total,
	})
}

// ServeCategories handles GET /audit/categories: the filter vocabulary.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, allCategories())
}
