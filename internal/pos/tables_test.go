package pos

import (
	"errors"
	"testing"

	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/model"
)

func testBoard() *TableBoard {
	return NewTableBoard([]model.Table{
		{Number: 1, Capacity: 4},
		{Number: 2, Capacity: 2},
	})
}

func TestBoardListSorted(t *testing.T) {
	b := NewTableBoard([]model.Table{
		{Number: 3, Capacity: 2}, {Number: 1, Capacity: 4}, {Number: 2, Capacity: 2},
	})
	tables := b.List()
	if len(tables) != 3 {
		t.Fatalf("tables: got %d, want 3", len(tables))
	}
	for i, want := range []int{1, 2, 3} {
		if tables[i].Number != want {
			t.Errorf("table[%d]: got %d, want %d", i, tables[i].Number, want)
		}
	}
	if tables[0].Status != enum.TableStatusAvailable {
		t.Errorf("default status: got %q", tables[0].Status)
	}
}

func TestServiceCycle(t *testing.T) {
	b := testBoard()

	if err := b.Seat(1, "order-1"); err != nil {
		t.Fatalf("seat: %v", err)
	}
	tbl, _ := b.Get(1)
	if tbl.Status != enum.TableStatusOccupied || tbl.OrderID != "order-1" || tbl.OccupiedAt == nil {
		t.Fatalf("after seat: %+v", tbl)
	}

	if err := b.Release(1); err != nil {
		t.Fatalf("release: %v", err)
	}
	tbl, _ = b.Get(1)
	if tbl.Status != enum.TableStatusCleaning || tbl.OrderID != "" {
		t.Fatalf("after release: %+v", tbl)
	}

	if err := b.MarkClean(1); err != nil {
		t.Fatalf("mark clean: %v", err)
	}
	tbl, _ = b.Get(1)
	if tbl.Status != enum.TableStatusAvailable {
		t.Fatalf("after clean: %+v", tbl)
	}
}

func TestReservationFlow(t *testing.T) {
	b := testBoard()

	if err := b.Reserve(2, "Ana"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	tbl, _ := b.Get(2)
	if tbl.Status != enum.TableStatusReserved || tbl.ReservedBy != "Ana" || tbl.ReservedAt == nil {
		t.Fatalf("after reserve: %+v", tbl)
	}

	// Seating a reserved table clears the reservation.
	if err := b.Seat(2, "order-2"); err != nil {
		t.Fatalf("seat reserved: %v", err)
	}
	tbl, _ = b.Get(2)
	if tbl.Status != enum.TableStatusOccupied || tbl.ReservedBy != "" || tbl.ReservedAt != nil {
		t.Fatalf("after seating reserved: %+v", tbl)
	}
}

func TestCancelReservation(t *testing.T) {
	b := testBoard()

	if err := b.Reserve(1, "Ana"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := b.CancelReservation(1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	tbl, _ := b.Get(1)
	if tbl.Status != enum.TableStatusAvailable || tbl.ReservedBy != "" {
		t.Fatalf("after cancel: %+v", tbl)
	}
}

func TestInvalidTransitions(t *testing.T) {
	b := testBoard()

	if err := b.Release(1); !errors.Is(err, ErrTableTransition) {
		t.Errorf("release available: got %v, want ErrTableTransition", err)
	}
	if err := b.MarkClean(1); !errors.Is(err, ErrTableTransition) {
		t.Errorf("clean available: got %v, want ErrTableTransition", err)
	}

	if err := b.Seat(1, "order-1"); err != nil {
		t.Fatalf("seat: %v", err)
	}
	if err := b.Seat(1, "order-2"); !errors.Is(err, ErrTableTransition) {
		t.Errorf("double seat: got %v, want ErrTableTransition", err)
	}
	if err := b.Reserve(1, "Ana"); !errors.Is(err, ErrTableTransition) {
		t.Errorf("reserve occupied: got %v, want ErrTableTransition", err)
	}
}

func TestUnknownTable(t *testing.T) {
	b := testBoard()
	if err := b.Seat(99, ""); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("seat unknown: got %v, want ErrUnknownTable", err)
	}
	if _, err := b.Get(99); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("get unknown: got %v, want ErrUnknownTable", err)
	}
}
