// Package pos holds the in-memory view-model state behind the terminal's
// screens: the cart being built, the floor plan, and the merged order feed.
// Nothing here is durable; the syncqueue and store own persistence.
package pos

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/model"
)

// Cart is the order under construction at one terminal. Safe for
// concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []model.OrderItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add puts qty units of a product into the cart. Adding a product already
// present with the same note bumps its quantity instead of creating a new
// line. Quantities <= 0 are ignored.
func (c *Cart) Add(p model.Product, qty int, notes string) {
	if qty <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == p.ID && c.items[i].Notes == notes {
			c.items[i].Quantity += qty
			return
		}
	}
	c.items = append(c.items, model.OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    qty,
		Notes:       notes,
	})
}

// UpdateQuantity sets the quantity of a line. A quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = qty
		}
		return
	}
}

// Remove drops every line for the given product.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, item := range c.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []model.OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.OrderItem, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal sums every line total.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Clear empties the cart, typically after checkout.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
