package pos

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/model"
)

func burger() model.Product {
	return model.Product{ID: "p1", Name: "Burger", Price: decimal.RequireFromString("10.00")}
}

func fries() model.Product {
	return model.Product{ID: "p2", Name: "Fries", Price: decimal.RequireFromString("5.00")}
}

func TestCartAddMergesSameProduct(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 1, "")
	c.Add(burger(), 2, "")

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("lines: got %d, want 1", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", items[0].Quantity)
	}
}

func TestCartAddKeepsSeparateLinesForDifferentNotes(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 1, "")
	c.Add(burger(), 1, "no onions")

	if len(c.Items()) != 2 {
		t.Fatalf("lines: got %d, want 2", len(c.Items()))
	}
}

func TestCartIgnoresNonPositiveQuantity(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 0, "")
	c.Add(burger(), -1, "")
	if !c.IsEmpty() {
		t.Fatal("cart should be empty")
	}
}

func TestCartSubtotal(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 2, "")
	c.Add(fries(), 1, "")

	want := decimal.RequireFromString("25.00")
	if !c.Subtotal().Equal(want) {
		t.Errorf("subtotal: got %s, want %s", c.Subtotal(), want)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 2, "")

	c.UpdateQuantity("p1", 5)
	if got := c.Items()[0].Quantity; got != 5 {
		t.Errorf("quantity: got %d, want 5", got)
	}

	// Zero removes the line.
	c.UpdateQuantity("p1", 0)
	if !c.IsEmpty() {
		t.Fatal("line should be removed at quantity 0")
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 1, "")
	c.Add(burger(), 1, "extra cheese")
	c.Add(fries(), 1, "")

	c.Remove("p1")
	items := c.Items()
	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Fatalf("after remove: %+v", items)
	}

	c.Clear()
	if !c.IsEmpty() {
		t.Fatal("cart should be empty after clear")
	}
	if !c.Subtotal().Equal(decimal.Zero) {
		t.Errorf("subtotal after clear: got %s", c.Subtotal())
	}
}

func TestCartItemsReturnsCopy(t *testing.T) {
	c := NewCart()
	c.Add(burger(), 1, "")

	items := c.Items()
	items[0].Quantity = 99

	if c.Items()[0].Quantity != 1 {
		t.Fatal("mutating the returned slice must not change the cart")
	}
}
