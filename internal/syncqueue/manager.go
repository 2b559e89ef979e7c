// Package syncqueue owns the lifecycle of locally created orders: persist
// when the backend is unreachable, publish when it is, and replay the
// backlog when connectivity returns.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/connectivity"
	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/gateway"
	"github.com/comanda-pos/terminal/internal/model"
)

// maxSyncAttempts is the automatic-retry ceiling. An order that fails this
// many times is left stalled and only retried via ForceSyncNow.
const maxSyncAttempts = 3

// Validation errors, rejected synchronously and never persisted.
var (
	ErrEmptyItems      = errors.New("items are required")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
)

// OrderGateway is the remote-backend surface the manager needs.
// Satisfied by *gateway.Client.
type OrderGateway interface {
	IsConfigured() bool
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (string, error)
	ListProducts(ctx context.Context) ([]gateway.ProductPayload, error)
}

// Connectivity is the reachability snapshot the manager consults at
// checkout time. Satisfied by *connectivity.Monitor.
type Connectivity interface {
	IsOnline() bool
}

// OrderStore is the durable-store surface the manager needs.
// Satisfied by *store.Store.
type OrderStore interface {
	AddOrder(ctx context.Context, o *model.PendingOrder) error
	ListUnsynced(ctx context.Context) ([]*model.PendingOrder, error)
	RecordSyncAttempt(ctx context.Context, id string, at time.Time) error
	MarkSynced(ctx context.Context, id, remoteID string, at time.Time) error
	MarkSyncError(ctx context.Context, id, message string) error
	UpdateStatusByRemoteID(ctx context.Context, remoteID, status string) (bool, error)
	DeleteSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (model.QueueStats, error)
	ReplaceProducts(ctx context.Context, products []model.Product, at time.Time) error
}

// Config tunes the manager's timing.
type Config struct {
	ReplayDelay       time.Duration // delay before the post-checkout replay
	RetentionAge      time.Duration // synced orders older than this are swept
	RetentionInterval time.Duration // sweep period
}

// DefaultConfig returns the timing used in production.
func DefaultConfig() Config {
	return Config{
		ReplayDelay:       time.Second,
		RetentionAge:      30 * 24 * time.Hour,
		RetentionInterval: 6 * time.Hour,
	}
}

// Manager is the sync queue manager.
type Manager struct {
	store   OrderStore
	gw      OrderGateway
	monitor Connectivity
	cfg     Config
	logger  *slog.Logger

	// replayMu serializes replay passes. Automatic triggers use TryLock and
	// skip when a pass is already in flight, so overlapping invocations
	// never double-submit an order.
	replayMu sync.Mutex

	// onSynced, when set, is called after each successful publish.
	onSynced func(order *model.PendingOrder, remoteID string)
}

// NewManager wires the manager to its collaborators. Non-positive timing
// values fall back to the defaults; the retention ticker in Run cannot
// take a zero period.
func NewManager(st OrderStore, gw OrderGateway, monitor Connectivity, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.ReplayDelay <= 0 {
		cfg.ReplayDelay = def.ReplayDelay
	}
	if cfg.RetentionAge <= 0 {
		cfg.RetentionAge = def.RetentionAge
	}
	if cfg.RetentionInterval <= 0 {
		cfg.RetentionInterval = def.RetentionInterval
	}
	return &Manager{store: st, gw: gw, monitor: monitor, cfg: cfg, logger: logger}
}

// OnSynced registers a callback invoked after an order is accepted by the
// backend (kitchen feed announcements). Must be set before Run.
func (m *Manager) OnSynced(fn func(order *model.PendingOrder, remoteID string)) {
	m.onSynced = fn
}

// EnqueueOrder validates and persists a checkout, returning the local order
// id. No network I/O happens on this path: if the terminal is online and
// the gateway configured, a replay is scheduled after a short delay so the
// write path never waits on network latency.
func (m *Manager) EnqueueOrder(ctx context.Context, items []model.OrderItem, payment model.PaymentInfo, customer *model.CustomerInfo) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyItems
	}
	total := decimal.Zero
	for i, item := range items {
		if item.Quantity <= 0 {
			return "", fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		total = total.Add(item.LineTotal())
	}

	order := &model.PendingOrder{
		ID:        model.NewOrderID(),
		Items:     items,
		Total:     total,
		Payment:   payment,
		Customer:  customer,
		Status:    enum.OrderStatusPending,
		Synced:    false,
		CreatedAt: time.Now(),
	}

	if err := m.store.AddOrder(ctx, order); err != nil {
		return "", fmt.Errorf("persist order: %w", err)
	}

	m.logger.Info("order queued locally",
		"order_id", order.ID, "total", total.String(), "online", m.monitor.IsOnline())

	if m.monitor.IsOnline() && m.gw.IsConfigured() {
		time.AfterFunc(m.cfg.ReplayDelay, func() {
			if err := m.ReplayPending(context.Background()); err != nil {
				m.logger.Error("post-checkout replay failed", "error", err)
			}
		})
	}

	return order.ID, nil
}

// ReplayPending publishes every retryable unsynced order, oldest first.
// Safe to invoke concurrently: if a pass is already running this call
// returns immediately without touching the queue. Gateway failures are
// recorded per order and never abort the pass; storage failures do.
func (m *Manager) ReplayPending(ctx context.Context) error {
	if !m.replayMu.TryLock() {
		return nil
	}
	defer m.replayMu.Unlock()
	return m.replay(ctx, false)
}

// ForceSyncNow runs a replay pass that ignores the attempt ceiling,
// waiting for any in-flight pass to finish first. Returns whether the pass
// completed; individual per-order failures do not fail the call.
func (m *Manager) ForceSyncNow(ctx context.Context) bool {
	m.replayMu.Lock()
	defer m.replayMu.Unlock()
	if err := m.replay(ctx, true); err != nil {
		m.logger.Error("forced sync failed", "error", err)
		return false
	}
	return true
}

func (m *Manager) replay(ctx context.Context, includeStalled bool) error {
	if !m.gw.IsConfigured() {
		m.logger.Debug("replay skipped: gateway not configured")
		return nil
	}

	orders, err := m.store.ListUnsynced(ctx)
	if err != nil {
		return fmt.Errorf("load unsynced orders: %w", err)
	}
	if len(orders) == 0 {
		return nil
	}

	m.logger.Info("replaying pending orders", "count", len(orders), "forced", includeStalled)

	for _, order := range orders {
		if !includeStalled && order.SyncAttempts >= maxSyncAttempts {
			continue
		}

		now := time.Now()
		if err := m.store.RecordSyncAttempt(ctx, order.ID, now); err != nil {
			return fmt.Errorf("record attempt for %s: %w", order.ID, err)
		}

		remoteID, err := m.gw.CreateOrder(ctx, buildCreateRequest(order))
		if err != nil {
			m.logger.Warn("order publish failed",
				"order_id", order.ID, "attempt", order.SyncAttempts+1, "error", err)
			if serr := m.store.MarkSyncError(ctx, order.ID, err.Error()); serr != nil {
				return fmt.Errorf("record sync error for %s: %w", order.ID, serr)
			}
			continue
		}

		if err := m.store.MarkSynced(ctx, order.ID, remoteID, time.Now()); err != nil {
			return fmt.Errorf("mark synced %s: %w", order.ID, err)
		}
		m.logger.Info("order synced", "order_id", order.ID, "remote_id", remoteID)
		if m.onSynced != nil {
			m.onSynced(order, remoteID)
		}
	}

	return nil
}

// buildCreateRequest maps a pending order to the gateway wire shape. The
// local order id rides along as the idempotency key.
func buildCreateRequest(o *model.PendingOrder) gateway.CreateOrderRequest {
	req := gateway.CreateOrderRequest{
		ClientOrderID: o.ID,
		Payment: gateway.PaymentPayload{
			Method:   o.Payment.Method,
			Amount:   o.Payment.Amount.String(),
			CardType: o.Payment.CardType,
			PixCode:  o.Payment.PixCode,
		},
	}
	if o.Payment.Change != nil {
		req.Payment.Change = o.Payment.Change.String()
	}
	for _, item := range o.Items {
		req.Items = append(req.Items, gateway.OrderItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			Notes:       item.Notes,
		})
	}
	if o.Customer != nil {
		req.Customer = &gateway.CustomerPayload{
			Name:        o.Customer.Name,
			Phone:       o.Customer.Phone,
			TableNumber: o.Customer.TableNumber,
			OrderType:   o.Customer.OrderType,
			GuestCount:  o.Customer.GuestCount,
		}
	}
	return req
}

// Statistics is a pure read over the durable store.
func (m *Manager) Statistics(ctx context.Context) (model.QueueStats, error) {
	return m.store.Stats(ctx)
}

// CacheProducts overwrites the offline product cache wholesale.
func (m *Manager) CacheProducts(ctx context.Context, products []model.Product) error {
	return m.store.ReplaceProducts(ctx, products, time.Now())
}

// RefreshProductCache pulls the catalog from the gateway into the cache so
// the menu stays renderable offline.
func (m *Manager) RefreshProductCache(ctx context.Context) error {
	payloads, err := m.gw.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	products := make([]model.Product, 0, len(payloads))
	for _, p := range payloads {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("parse price for product %s: %w", p.ID, err)
		}
		products = append(products, model.Product{
			ID:                 p.ID,
			Name:               p.Name,
			Description:        p.Description,
			Price:              price,
			Category:           p.Category,
			ImageURL:           p.ImageURL,
			Available:          p.Available,
			PreparationMinutes: p.PreparationMinutes,
		})
	}
	return m.CacheProducts(ctx, products)
}

// ApplyRemoteStatus overwrites the local copy of a synced order when the
// backend announces a workflow change. Returns whether a local order
// matched; other terminals' orders simply don't.
func (m *Manager) ApplyRemoteStatus(ctx context.Context, remoteID, status string) (bool, error) {
	return m.store.UpdateStatusByRemoteID(ctx, remoteID, status)
}

// CleanupOldOrders deletes synced orders older than the retention age.
func (m *Manager) CleanupOldOrders(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-m.cfg.RetentionAge)
	n, err := m.store.DeleteSyncedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.Info("retention sweep removed synced orders", "count", n)
	}
	return n, nil
}

// Run reacts to connectivity transitions and runs the periodic retention
// sweep until ctx is done. Offline->online transitions trigger a replay.
func (m *Manager) Run(ctx context.Context, transitions <-chan connectivity.Transition) {
	retention := time.NewTicker(m.cfg.RetentionInterval)
	defer retention.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tr, ok := <-transitions:
			if !ok {
				return
			}
			if tr.Online {
				if err := m.ReplayPending(ctx); err != nil {
					m.logger.Error("replay after reconnect failed", "error", err)
				}
			}
		case <-retention.C:
			if _, err := m.CleanupOldOrders(ctx); err != nil {
				m.logger.Error("retention sweep failed", "error", err)
			}
		}
	}
}
