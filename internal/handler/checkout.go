package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/terminal/internal/model"
	"github.com/comanda-pos/terminal/internal/syncqueue"
)

// CheckoutQueue defines the sync-queue methods needed by checkout.
// Satisfied by *syncqueue.Manager.
type CheckoutQueue interface {
	EnqueueOrder(ctx context.Context, items []model.OrderItem, payment model.PaymentInfo, customer *model.CustomerInfo) (string, error)
}

// CheckoutHandler accepts orders. Checkout always succeeds while offline;
// only validation and local storage failures reject it.
type CheckoutHandler struct {
	queue CheckoutQueue

	// onQueued, when set, announces the new order to the kitchen feed.
	onQueued func(orderID string)
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(queue CheckoutQueue) *CheckoutHandler {
	return &CheckoutHandler{queue: queue}
}

// OnQueued sets the hook invoked after a successful checkout.
func (h *CheckoutHandler) OnQueued(fn func(orderID string)) {
	h.onQueued = fn
}

// RegisterRoutes registers checkout endpoints on the given Chi router.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.Checkout)
}

type checkoutRequest struct {
	Items    []model.OrderItem   `json:"items"`
	Payment  model.PaymentInfo   `json:"payment"`
	Customer *model.CustomerInfo `json:"customer,omitempty"`
}

type checkoutResponse struct {
	OrderID string `json:"order_id"`
}

// Checkout validates and queues an order for synchronization.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	orderID, err := h.queue.EnqueueOrder(r.Context(), req.Items, req.Payment, req.Customer)
	if err != nil {
		if errors.Is(err, syncqueue.ErrEmptyItems) || errors.Is(err, syncqueue.ErrInvalidQuantity) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store order"})
		return
	}

	if h.onQueued != nil {
		h.onQueued(orderID)
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{OrderID: orderID})
}
