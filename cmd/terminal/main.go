package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comanda-pos/terminal/internal/config"
	"github.com/comanda-pos/terminal/internal/connectivity"
	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/gateway"
	"github.com/comanda-pos/terminal/internal/model"
	"github.com/comanda-pos/terminal/internal/pos"
	"github.com/comanda-pos/terminal/internal/router"
	"github.com/comanda-pos/terminal/internal/store"
	"github.com/comanda-pos/terminal/internal/syncqueue"
	"github.com/comanda-pos/terminal/internal/ws"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	gw := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey, logger)
	if !gw.IsConfigured() {
		logger.Warn("gateway not configured, orders will queue locally until it is")
	}

	monitor := connectivity.NewMonitor(gw, cfg.ProbeInterval, cfg.SettleDelay, logger)

	manager := syncqueue.NewManager(st, gw, monitor, syncqueue.Config{
		ReplayDelay:       cfg.ReplayDelay,
		RetentionAge:      cfg.RetentionAge,
		RetentionInterval: cfg.RetentionInterval,
	}, logger)

	hub := ws.NewHub()
	go hub.Run()

	feed := pos.NewOrderFeed()
	feed.OnChange(func(row pos.FeedOrder) {
		typ := ws.EventOrderUpdated
		switch {
		case !row.Synced:
			typ = ws.EventOrderQueued
		case row.Status == enum.OrderStatusPending:
			typ = ws.EventOrderSynced
		}
		event, err := ws.NewEvent(typ, row)
		if err != nil {
			logger.Error("failed to encode order event", "error", err)
			return
		}
		hub.Broadcast(event)
	})

	manager.OnSynced(func(order *model.PendingOrder, remoteID string) {
		feed.RecordSynced(order.ID, remoteID)
	})

	board := pos.NewTableBoard(defaultFloorPlan())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go monitor.Run(ctx)

	transitions, cancelSub := monitor.Subscribe()
	defer cancelSub()
	go manager.Run(ctx, transitions)

	if gw.IsConfigured() {
		go consumeRemoteEvents(ctx, gw, manager, feed, logger)
		go func() {
			// Warm the menu cache once at startup; the cache keeps serving
			// the previous catalog if this fails.
			warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := manager.RefreshProductCache(warmCtx); err != nil {
				logger.Warn("initial product cache refresh failed", "error", err)
			}
		}()
	}

	r := router.New(router.Deps{
		Config:  cfg,
		Store:   st,
		Manager: manager,
		Monitor: monitor,
		Gateway: gw,
		Board:   board,
		Feed:    feed,
		Hub:     hub,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("terminal listening", "port", cfg.Port, "data_dir", cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// consumeRemoteEvents keeps a subscription to the backend's order stream
// open, folding remote-origin changes into the local store and the feed.
// The stream is at-most-once, so a dropped connection just re-subscribes.
func consumeRemoteEvents(ctx context.Context, gw *gateway.Client, manager *syncqueue.Manager, feed *pos.OrderFeed, logger *slog.Logger) {
	for {
		sub, err := gw.Subscribe(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(15 * time.Second):
				continue
			}
		}

		for ev := range sub.Events {
			if ev.Type == gateway.EventOrderUpdated {
				if _, err := manager.ApplyRemoteStatus(ctx, ev.Payload.ID, ev.Payload.Status); err != nil {
					logger.Error("failed to apply remote status", "remote_id", ev.Payload.ID, "error", err)
				}
			}
			feed.ApplyRemote(ev)
		}
		sub.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// defaultFloorPlan is the built-in table layout used until the terminal is
// configured with a real one.
func defaultFloorPlan() []model.Table {
	tables := make([]model.Table, 0, 12)
	for n := 1; n <= 12; n++ {
		capacity := 4
		section := "main"
		if n > 8 {
			capacity = 6
			section = "patio"
		}
		tables = append(tables, model.Table{
			Number:   n,
			Capacity: capacity,
			Status:   enum.TableStatusAvailable,
			Section:  section,
		})
	}
	return tables
}
