package pos

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/model"
)

var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrTableTransition = errors.New("invalid table transition")
)

// TableBoard is the floor plan. Transitions follow the service cycle:
// available -> occupied -> cleaning -> available, with an optional
// available -> reserved -> occupied detour.
type TableBoard struct {
	mu     sync.Mutex
	tables map[int]*model.Table
}

// NewTableBoard builds a board from the configured layout.
func NewTableBoard(layout []model.Table) *TableBoard {
	b := &TableBoard{tables: make(map[int]*model.Table, len(layout))}
	for _, t := range layout {
		table := t
		if table.Status == "" {
			table.Status = enum.TableStatusAvailable
		}
		b.tables[table.Number] = &table
	}
	return b
}

// List returns the tables ordered by number.
func (b *TableBoard) List() []model.Table {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Table, 0, len(b.tables))
	for _, t := range b.tables {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Get returns one table by number.
func (b *TableBoard) Get(number int) (model.Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tables[number]
	if !ok {
		return model.Table{}, ErrUnknownTable
	}
	return *t, nil
}

// Seat marks a table occupied and ties it to an order. Allowed from
// available and reserved.
func (b *TableBoard) Seat(number int, orderID string) error {
	return b.transition(number, func(t *model.Table) error {
		if t.Status != enum.TableStatusAvailable && t.Status != enum.TableStatusReserved {
			return fmt.Errorf("%w: seat from %s", ErrTableTransition, t.Status)
		}
		now := time.Now()
		t.Status = enum.TableStatusOccupied
		t.OrderID = orderID
		t.OccupiedAt = &now
		t.ReservedBy = ""
		t.ReservedAt = nil
		return nil
	})
}

// Reserve holds an available table under a customer name.
func (b *TableBoard) Reserve(number int, name string) error {
	return b.transition(number, func(t *model.Table) error {
		if t.Status != enum.TableStatusAvailable {
			return fmt.Errorf("%w: reserve from %s", ErrTableTransition, t.Status)
		}
		now := time.Now()
		t.Status = enum.TableStatusReserved
		t.ReservedBy = name
		t.ReservedAt = &now
		return nil
	})
}

// CancelReservation returns a reserved table to available.
func (b *TableBoard) CancelReservation(number int) error {
	return b.transition(number, func(t *model.Table) error {
		if t.Status != enum.TableStatusReserved {
			return fmt.Errorf("%w: cancel reservation from %s", ErrTableTransition, t.Status)
		}
		t.Status = enum.TableStatusAvailable
		t.ReservedBy = ""
		t.ReservedAt = nil
		return nil
	})
}

// Release frees an occupied table into the cleaning state after the party
// leaves.
func (b *TableBoard) Release(number int) error {
	return b.transition(number, func(t *model.Table) error {
		if t.Status != enum.TableStatusOccupied {
			return fmt.Errorf("%w: release from %s", ErrTableTransition, t.Status)
		}
		t.Status = enum.TableStatusCleaning
		t.OrderID = ""
		t.OccupiedAt = nil
		return nil
	})
}

// MarkClean returns a cleaned table to available.
func (b *TableBoard) MarkClean(number int) error {
	return b.transition(number, func(t *model.Table) error {
		if t.Status != enum.TableStatusCleaning {
			return fmt.Errorf("%w: mark clean from %s", ErrTableTransition, t.Status)
		}
		t.Status = enum.TableStatusAvailable
		return nil
	})
}

func (b *TableBoard) transition(number int, apply func(*model.Table) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tables[number]
	if !ok {
		return ErrUnknownTable
	}
	return apply(t)
}
