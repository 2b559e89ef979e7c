package pos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/gateway"
	"github.com/comanda-pos/terminal/internal/model"
)

func pendingOrder(id string) *model.PendingOrder {
	return &model.PendingOrder{
		ID:        id,
		Total:     decimal.RequireFromString("25.00"),
		Status:    "pending",
		Customer:  &model.CustomerInfo{TableNumber: "4", OrderType: "dine-in"},
		CreatedAt: time.Now(),
	}
}

func TestFeedRecordLocal(t *testing.T) {
	f := NewOrderFeed()
	var published []FeedOrder
	f.OnChange(func(row FeedOrder) { published = append(published, row) })

	f.RecordLocal(pendingOrder("local-1"))

	rows := f.Snapshot()
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	row := rows[0]
	if row.ID != "local-1" || row.Origin != OriginLocal || row.Synced {
		t.Fatalf("row: %+v", row)
	}
	if row.TableNumber != "4" || row.OrderType != "dine-in" {
		t.Errorf("customer fields not carried: %+v", row)
	}
	if len(published) != 1 {
		t.Errorf("publish hook called %d times, want 1", len(published))
	}
}

func TestFeedRecordSyncedIndexesRemoteID(t *testing.T) {
	f := NewOrderFeed()
	f.RecordLocal(pendingOrder("local-1"))
	f.RecordSynced("local-1", "remote-9")

	rows := f.Snapshot()
	if !rows[0].Synced || rows[0].RemoteID != "remote-9" {
		t.Fatalf("row after sync: %+v", rows[0])
	}

	// A remote event for that id must land on the same row.
	f.ApplyRemote(gateway.OrderEvent{
		Type:    gateway.EventOrderUpdated,
		Payload: gateway.OrderEventOrder{ID: "remote-9", Status: "preparing"},
	})
	rows = f.Snapshot()
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1 (remote event must not duplicate)", len(rows))
	}
	if rows[0].Status != "preparing" {
		t.Errorf("status: got %q, want preparing", rows[0].Status)
	}
}

func TestFeedApplyRemoteUnknownOrderCreatesRemoteRow(t *testing.T) {
	f := NewOrderFeed()
	f.ApplyRemote(gateway.OrderEvent{
		Type: gateway.EventOrderCreated,
		Payload: gateway.OrderEventOrder{
			ID: "remote-77", Status: "pending", Total: "12.50", TableNumber: "9",
		},
	})

	rows := f.Snapshot()
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Origin != OriginRemote || !row.Synced {
		t.Fatalf("row: %+v", row)
	}
	if !row.Total.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("total: got %s, want 12.50", row.Total)
	}
}

func TestFeedSetStatusByEitherID(t *testing.T) {
	f := NewOrderFeed()
	f.RecordLocal(pendingOrder("local-1"))
	f.RecordSynced("local-1", "remote-9")

	if !f.SetStatus("local-1", "preparing") {
		t.Fatal("set status by local id failed")
	}
	if !f.SetStatus("remote-9", "ready") {
		t.Fatal("set status by remote id failed")
	}
	if f.SetStatus("unknown", "ready") {
		t.Fatal("unknown id should not match")
	}
	if got := f.Snapshot()[0].Status; got != "ready" {
		t.Errorf("status: got %q, want ready", got)
	}
}

func TestFeedSnapshotNewestFirst(t *testing.T) {
	f := NewOrderFeed()
	older := pendingOrder("older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	f.RecordLocal(older)
	f.RecordLocal(pendingOrder("newer"))

	rows := f.Snapshot()
	if rows[0].ID != "newer" || rows[1].ID != "older" {
		t.Errorf("order: got [%s %s], want [newer older]", rows[0].ID, rows[1].ID)
	}
}
