package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/terminal/internal/gateway"
	"github.com/comanda-pos/terminal/internal/model"
)

// MenuStore defines the store methods needed by the menu endpoints.
// Satisfied by *store.Store.
type MenuStore interface {
	ListProducts(ctx context.Context) ([]model.CachedProduct, error)
}

// MenuRefresher pulls the catalog from the backend into the cache.
// Satisfied by *syncqueue.Manager.
type MenuRefresher interface {
	RefreshProductCache(ctx context.Context) error
}

// MenuHandler serves the cached product catalog. The menu renders from the
// cache even with the backend down.
type MenuHandler struct {
	store     MenuStore
	refresher MenuRefresher
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, refresher MenuRefresher) *MenuHandler {
	return &MenuHandler{store: store, refresher: refresher}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Post("/menu/refresh", h.Refresh)
}

type menuResponse struct {
	Products []model.CachedProduct `json:"products"`
}

// List returns the cached catalog.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read product cache"})
		return
	}
	if products == nil {
		products = []model.CachedProduct{}
	}
	writeJSON(w, http.StatusOK, menuResponse{Products: products})
}

// Refresh pulls the catalog from the backend into the cache.
func (h *MenuHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.RefreshProductCache(r.Context()); err != nil {
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": gwErr.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to refresh product cache"})
		return
	}
	h.List(w, r)
}
