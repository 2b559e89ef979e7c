package pos

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/gateway"
	"github.com/comanda-pos/terminal/internal/model"
)

// Order origins in the feed.
const (
	OriginLocal  = "local"
	OriginRemote = "remote"
)

// FeedOrder is one row of the merged order feed shown on kitchen and
// waiter screens.
type FeedOrder struct {
	ID          string          `json:"id"`
	RemoteID    string          `json:"remote_id,omitempty"`
	Origin      string          `json:"origin"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	TableNumber string          `json:"table_number,omitempty"`
	OrderType   string          `json:"order_type,omitempty"`
	Synced      bool            `json:"synced"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderFeed merges locally queued orders with remote-origin order events
// into one stream. Changes are pushed to the publish hook (the kitchen
// display hub) as they land.
type OrderFeed struct {
	mu       sync.Mutex
	orders   map[string]*FeedOrder // keyed by feed id
	byRemote map[string]string     // remote id -> feed id
	publish  func(FeedOrder)
}

// NewOrderFeed returns an empty feed.
func NewOrderFeed() *OrderFeed {
	return &OrderFeed{
		orders:   make(map[string]*FeedOrder),
		byRemote: make(map[string]string),
	}
}

// OnChange sets the hook invoked for every feed mutation. Must be set
// before the feed starts receiving orders.
func (f *OrderFeed) OnChange(fn func(FeedOrder)) {
	f.publish = fn
}

// RecordLocal adds or refreshes a locally queued order in the feed.
func (f *OrderFeed) RecordLocal(o *model.PendingOrder) {
	f.mu.Lock()

	row, ok := f.orders[o.ID]
	if !ok {
		row = &FeedOrder{ID: o.ID, Origin: OriginLocal, CreatedAt: o.CreatedAt}
		f.orders[o.ID] = row
	}
	row.Status = o.Status
	row.Total = o.Total
	row.Synced = o.Synced
	row.UpdatedAt = time.Now()
	if o.Customer != nil {
		row.TableNumber = o.Customer.TableNumber
		row.OrderType = o.Customer.OrderType
	}
	if o.RemoteID != nil {
		row.RemoteID = *o.RemoteID
		f.byRemote[*o.RemoteID] = o.ID
	}
	snapshot := *row
	f.mu.Unlock()

	f.notify(snapshot)
}

// RecordSynced marks a local order as accepted by the backend and indexes
// it under its remote id so later remote events reach it.
func (f *OrderFeed) RecordSynced(localID, remoteID string) {
	f.mu.Lock()
	row, ok := f.orders[localID]
	if !ok {
		f.mu.Unlock()
		return
	}
	row.Synced = true
	row.RemoteID = remoteID
	row.UpdatedAt = time.Now()
	f.byRemote[remoteID] = localID
	snapshot := *row
	f.mu.Unlock()

	f.notify(snapshot)
}

// ApplyRemote folds a backend order event into the feed. Events for a
// synced local order update that row; anything else becomes a
// remote-origin row (another terminal's order, visible to the kitchen).
func (f *OrderFeed) ApplyRemote(ev gateway.OrderEvent) {
	f.mu.Lock()

	id, ok := f.byRemote[ev.Payload.ID]
	if !ok {
		id = ev.Payload.ID
	}
	row, ok := f.orders[id]
	if !ok {
		row = &FeedOrder{
			ID:        id,
			RemoteID:  ev.Payload.ID,
			Origin:    OriginRemote,
			Synced:    true,
			CreatedAt: time.Now(),
		}
		f.orders[id] = row
		f.byRemote[ev.Payload.ID] = id
	}
	if ev.Payload.Status != "" {
		row.Status = ev.Payload.Status
	}
	if total, err := decimal.NewFromString(ev.Payload.Total); err == nil {
		row.Total = total
	}
	if ev.Payload.TableNumber != "" {
		row.TableNumber = ev.Payload.TableNumber
	}
	if ev.Payload.OrderType != "" {
		row.OrderType = ev.Payload.OrderType
	}
	row.UpdatedAt = time.Now()
	snapshot := *row
	f.mu.Unlock()

	f.notify(snapshot)
}

// SetStatus updates one feed row's status, by local or remote id.
func (f *OrderFeed) SetStatus(id, status string) bool {
	f.mu.Lock()
	key := id
	if mapped, ok := f.byRemote[id]; ok {
		key = mapped
	}
	row, ok := f.orders[key]
	if !ok {
		f.mu.Unlock()
		return false
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	snapshot := *row
	f.mu.Unlock()

	f.notify(snapshot)
	return true
}

// Snapshot returns every feed row, newest first.
func (f *OrderFeed) Snapshot() []FeedOrder {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FeedOrder, 0, len(f.orders))
	for _, row := range f.orders {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *OrderFeed) notify(row FeedOrder) {
	if f.publish != nil {
		f.publish(row)
	}
}
