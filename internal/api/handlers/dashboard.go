package handlers

import (
	"net/http"

	"github.com/bigkaa/odontoforense/internal/notify"
)

// Dashboard — сводка по делам, жертвам, уликам и заключениям.
func (h *APIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Summarize(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Notifications — последние уведомления, от новых к старым.
func (h *APIHandler) Notifications(w http.ResponseWriter, _ *http.Request) {
	items := []notify.Notification{}
	if h.notifications != nil {
		items = h.notifications.Recent()
	}
	writeJSON(w, http.StatusOK, items)
}
