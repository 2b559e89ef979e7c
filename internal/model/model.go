package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as served by the backend and cached locally
// for offline menu rendering.
type Product struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	ImageURL           string          `json:"image_url,omitempty"`
	Available          bool            `json:"available"`
	PreparationMinutes int             `json:"preparation_minutes"`
}

// CachedProduct is a Product plus the time it was written to the local cache.
type CachedProduct struct {
	Product
	LastUpdated time.Time `json:"last_updated"`
}

// OrderItem is a single line of an order: a product reference, a quantity
// and an optional per-item note. Unit price is captured at checkout time so
// later menu edits do not change a queued order's total.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Notes       string          `json:"notes,omitempty"`
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentInfo describes how an order was (or will be) paid.
type PaymentInfo struct {
	Method   string           `json:"method"`
	Amount   decimal.Decimal  `json:"amount"`
	Change   *decimal.Decimal `json:"change,omitempty"`
	CardType string           `json:"card_type,omitempty"`
	PixCode  string           `json:"pix_code,omitempty"`
}

// CustomerInfo is optional checkout metadata: who the order is for and
// where they are sitting.
type CustomerInfo struct {
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	TableNumber string `json:"table_number,omitempty"`
	OrderType   string `json:"order_type,omitempty"`
	GuestCount  int    `json:"guest_count,omitempty"`
}

// PendingOrder is a locally created order awaiting confirmation from the
// remote backend. Synced == true implies RemoteID != nil and SyncError == nil.
type PendingOrder struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Payment         PaymentInfo     `json:"payment"`
	Customer        *CustomerInfo   `json:"customer,omitempty"`
	Status          string          `json:"status"`
	Synced          bool            `json:"synced"`
	SyncAttempts    int             `json:"sync_attempts"`
	LastSyncAttempt *time.Time      `json:"last_sync_attempt,omitempty"`
	SyncedAt        *time.Time      `json:"synced_at,omitempty"`
	RemoteID        *string         `json:"remote_id,omitempty"`
	SyncError       *string         `json:"sync_error,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewOrderID generates a locally unique order identifier.
func NewOrderID() string {
	return uuid.NewString()
}

// QueueStats is the read-only statistics surface exposed to presentation
// components.
type QueueStats struct {
	TotalOrders    int             `json:"total_orders"`
	UnsyncedOrders int             `json:"unsynced_orders"`
	SyncErrorCount int             `json:"sync_error_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
	LastSync       *time.Time      `json:"last_sync,omitempty"`
}

// Operator is a terminal user who can log in with a PIN.
type Operator struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	PinHash   string     `json:"-"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// Table is one physical table on the floor plan.
type Table struct {
	Number     int        `json:"number"`
	Capacity   int        `json:"capacity"`
	Status     string     `json:"status"`
	OrderID    string     `json:"order_id,omitempty"`
	ReservedBy string     `json:"reserved_by,omitempty"`
	ReservedAt *time.Time `json:"reserved_at,omitempty"`
	OccupiedAt *time.Time `json:"occupied_at,omitempty"`
	Section    string     `json:"section,omitempty"`
}
