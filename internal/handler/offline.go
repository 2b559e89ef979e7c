package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/terminal/internal/model"
)

// OfflineQueue defines the sync-queue methods needed by the offline
// endpoints. Satisfied by *syncqueue.Manager.
type OfflineQueue interface {
	Statistics(ctx context.Context) (model.QueueStats, error)
	ForceSyncNow(ctx context.Context) bool
}

// OnlineReporter exposes the connectivity snapshot.
// Satisfied by *connectivity.Monitor.
type OnlineReporter interface {
	IsOnline() bool
}

// OfflineHandler exposes the offline queue's status and the manual sync
// trigger shown on the terminal's status bar.
type OfflineHandler struct {
	queue   OfflineQueue
	monitor OnlineReporter
}

// NewOfflineHandler creates a new OfflineHandler.
func NewOfflineHandler(queue OfflineQueue, monitor OnlineReporter) *OfflineHandler {
	return &OfflineHandler{queue: queue, monitor: monitor}
}

// RegisterRoutes registers the offline status endpoint. The forced-sync
// route is registered separately behind a role check.
func (h *OfflineHandler) RegisterRoutes(r chi.Router) {
	r.Get("/offline/stats", h.Stats)
}

type statsResponse struct {
	Online bool             `json:"online"`
	Stats  model.QueueStats `json:"stats"`
}

type forceSyncResponse struct {
	Completed bool             `json:"completed"`
	Stats     model.QueueStats `json:"stats"`
}

// Stats reports the queue statistics and the connectivity flag.
func (h *OfflineHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Statistics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read queue statistics"})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Online: h.monitor.IsOnline(), Stats: stats})
}

// ForceSync runs a replay pass that includes stalled orders, then reports
// the resulting statistics.
func (h *OfflineHandler) ForceSync(w http.ResponseWriter, r *http.Request) {
	completed := h.queue.ForceSyncNow(r.Context())

	stats, err := h.queue.Statistics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read queue statistics"})
		return
	}
	writeJSON(w, http.StatusOK, forceSyncResponse{Completed: completed, Stats: stats})
}
