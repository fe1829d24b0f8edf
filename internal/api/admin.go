package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

const defaultNotificationLimit = 100

// AdminHandler serves health, the notification journal and the manual sweep
// trigger.
type AdminHandler struct {
	Journal *store.Notifications
	Sweep   *rental.Sweep
}

// Health handles GET /api/health.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ok",
		"sweep":  h.Sweep.State().String(),
	})
}

// Notifications handles GET /api/notifications?limit=n.
func (h *AdminHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	notifications, err := h.Journal.List(r.Context(), limit)
	if err != nil {
		writeError(w, err, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, notifications)
}

// RunSweep handles POST /api/sweep.
func (h *AdminHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.Sweep.RunOnce(r.Context())
	if err != nil {
		writeError(w, err, "overdue sweep failed")
		return
	}
	jsonResponse(w, http.StatusOK, report)
}
