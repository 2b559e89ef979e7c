package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/comanda-pos/terminal/internal/config"
	"github.com/comanda-pos/terminal/internal/connectivity"
	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/gateway"
	"github.com/comanda-pos/terminal/internal/handler"
	mw "github.com/comanda-pos/terminal/internal/middleware"
	"github.com/comanda-pos/terminal/internal/pos"
	"github.com/comanda-pos/terminal/internal/store"
	"github.com/comanda-pos/terminal/internal/syncqueue"
	"github.com/comanda-pos/terminal/internal/ws"
)

// Deps carries everything the HTTP surface talks to.
type Deps struct {
	Config  *config.Config
	Store   *store.Store
	Manager *syncqueue.Manager
	Monitor *connectivity.Monitor
	Gateway *gateway.Client
	Board   *pos.TableBoard
	Feed    *pos.OrderFeed
	Hub     *ws.Hub
}

// New creates a Chi router with all terminal routes wired up.
// Applies authentication and role-based middleware as needed.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration. The UI is served from the terminal itself or the
	// dev server; both count as cross-origin against this port.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(d.Store, d.Config.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, d.Config.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(d.Config.JWTSecret))

		checkoutHandler := handler.NewCheckoutHandler(d.Manager)
		checkoutHandler.OnQueued(func(orderID string) {
			order, err := d.Store.GetOrder(context.Background(), orderID)
			if err != nil {
				slog.Warn("queued order not found for feed", "order_id", orderID, "error", err)
				return
			}
			d.Feed.RecordLocal(order)
		})
		checkoutHandler.RegisterRoutes(r)

		offlineHandler := handler.NewOfflineHandler(d.Manager, d.Monitor)
		offlineHandler.RegisterRoutes(r)

		menuHandler := handler.NewMenuHandler(d.Store, d.Manager)
		menuHandler.RegisterRoutes(r)

		orderHandler := handler.NewOrderHandler(d.Store, d.Gateway)
		orderHandler.OnStatus(func(orderID, status string) {
			d.Feed.SetStatus(orderID, status)
		})
		orderHandler.RegisterRoutes(r)

		tableHandler := handler.NewTableHandler(d.Board)
		tableHandler.RegisterRoutes(r)

		// Manager-only: forced sync bypasses the retry ceiling.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleManager))
			r.Post("/offline/sync", offlineHandler.ForceSync)
		})
	})

	return r
}
