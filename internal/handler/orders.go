package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/model"
	"github.com/comanda-pos/terminal/internal/store"
)

// OrderStore defines the store methods needed by order endpoints.
// Satisfied by *store.Store.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]*model.PendingOrder, error)
	GetOrder(ctx context.Context, id string) (*model.PendingOrder, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
}

// StatusPropagator pushes a workflow change to the backend for a synced
// order. Satisfied by *gateway.Client.
type StatusPropagator interface {
	UpdateOrderStatus(ctx context.Context, remoteID, status string) error
}

// OrderHandler serves the local order list and workflow status changes.
type OrderHandler struct {
	store      OrderStore
	propagator StatusPropagator

	// onStatus, when set, announces the change to the kitchen feed.
	onStatus func(orderID, status string)
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(st OrderStore, propagator StatusPropagator) *OrderHandler {
	return &OrderHandler{store: st, propagator: propagator}
}

// OnStatus sets the hook invoked after a status change is stored.
func (h *OrderHandler) OnStatus(fn func(orderID, status string)) {
	h.onStatus = fn
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

type ordersResponse struct {
	Orders []*model.PendingOrder `json:"orders"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// List returns every locally stored order, oldest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []*model.PendingOrder{}
	}
	writeJSON(w, http.StatusOK, ordersResponse{Orders: orders})
}

// Get returns one order by local id.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load order"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus stores a workflow change locally and, for synced orders,
// pushes it to the backend on a best-effort basis. A failed push never
// fails the request; the order keeps serving from the local copy.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	id := chi.URLParam(r, "id")
	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load order"})
		return
	}

	if err := h.store.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update order"})
		return
	}

	if order.Synced && order.RemoteID != nil {
		if err := h.propagator.UpdateOrderStatus(r.Context(), *order.RemoteID, req.Status); err != nil {
			slog.Warn("status propagation failed",
				"order_id", id, "remote_id", *order.RemoteID, "error", err)
		}
	}

	if h.onStatus != nil {
		h.onStatus(id, req.Status)
	}

	order.Status = req.Status
	writeJSON(w, http.StatusOK, order)
}

func validOrderStatus(status string) bool {
	switch status {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady,
		enum.OrderStatusDelivered, enum.OrderStatusCancelled:
		return true
	}
	return false
}
