package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/model"
)

// timeFormat is how timestamps are stored: UTC with a fixed-width,
// zero-padded fraction. Every value is the same length, so the text sorts
// exactly like the instant it encodes, which the created_at index relies
// on for FIFO scans and the retention cutoff. RFC3339Nano would not do:
// it strips trailing fractional zeros, and "...05Z" compares after
// "...05.5Z" byte-wise.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// AddOrder inserts a new pending order. The id must be unique.
func (s *Store) AddOrder(ctx context.Context, o *model.PendingOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	payment, err := json.Marshal(o.Payment)
	if err != nil {
		return fmt.Errorf("marshal payment: %w", err)
	}
	var customer sql.NullString
	if o.Customer != nil {
		b, err := json.Marshal(o.Customer)
		if err != nil {
			return fmt.Errorf("marshal customer: %w", err)
		}
		customer = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_orders
			(id, items, total, payment, customer, status, synced, sync_attempts,
			 last_sync_attempt, synced_at, remote_id, sync_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, string(items), o.Total.String(), string(payment), customer,
		o.Status, boolToInt(o.Synced), o.SyncAttempts,
		nullTime(o.LastSyncAttempt), nullTime(o.SyncedAt),
		nullString(o.RemoteID), nullString(o.SyncError),
		o.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetOrder loads a single pending order by id.
func (s *Store) GetOrder(ctx context.Context, id string) (*model.PendingOrder, error) {
	row := s.db.QueryRowContext(ctx, selectOrderColumns+` WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListOrders returns every pending order, oldest first.
func (s *Store) ListOrders(ctx context.Context) ([]*model.PendingOrder, error) {
	return s.listOrders(ctx, selectOrderColumns+` ORDER BY created_at ASC`)
}

// ListUnsynced returns orders with synced = false in creation order. The
// replay pass walks this list front to back (FIFO fairness).
func (s *Store) ListUnsynced(ctx context.Context) ([]*model.PendingOrder, error) {
	return s.listOrders(ctx, selectOrderColumns+` WHERE synced = 0 ORDER BY created_at ASC`)
}

func (s *Store) listOrders(ctx context.Context, query string, args ...any) ([]*model.PendingOrder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.PendingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// RecordSyncAttempt increments the attempt counter and stamps the attempt
// time in a single statement. Persisted before the network call so a crash
// mid-call does not lose the count.
func (s *Store) RecordSyncAttempt(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_orders
		SET sync_attempts = sync_attempts + 1, last_sync_attempt = ?
		WHERE id = ? AND synced = 0`,
		at.UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("record sync attempt: %w", err)
	}
	return requireRow(res)
}

// MarkSynced records a successful publish: sets synced, the remote id and
// the sync time, and clears any previous error.
func (s *Store) MarkSynced(ctx context.Context, id, remoteID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_orders
		SET synced = 1, synced_at = ?, remote_id = ?, sync_error = NULL
		WHERE id = ?`,
		at.UTC().Format(timeFormat), remoteID, id,
	)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return requireRow(res)
}

// MarkSyncError records the failure message of the latest publish attempt.
func (s *Store) MarkSyncError(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_orders SET sync_error = ? WHERE id = ? AND synced = 0`,
		message, id,
	)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	return requireRow(res)
}

// UpdateOrderStatus overwrites the local workflow status by local id.
func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_orders SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireRow(res)
}

// UpdateStatusByRemoteID overwrites the local workflow status of a synced
// order when the backend announces a change. Unknown remote ids are not an
// error: the order may belong to another terminal.
func (s *Store) UpdateStatusByRemoteID(ctx context.Context, remoteID, status string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_orders SET status = ? WHERE remote_id = ?`, status, remoteID,
	)
	if err != nil {
		return false, fmt.Errorf("update status by remote id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update status by remote id: %w", err)
	}
	return n > 0, nil
}

// DeleteOrder removes a single order by id.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pending_orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireRow(res)
}

// DeleteSyncedBefore removes orders that are both synced and created before
// the cutoff. Unsynced or error-flagged orders are never touched.
func (s *Store) DeleteSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM pending_orders WHERE synced = 1 AND created_at < ?`,
		cutoff.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("delete synced before: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete synced before: %w", err)
	}
	return n, nil
}

// Stats aggregates the statistics surface over all stored orders. The total
// is summed with decimals in Go rather than SQL so monetary amounts never
// pass through floating point.
func (s *Store) Stats(ctx context.Context) (model.QueueStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT total, synced, sync_error, synced_at FROM pending_orders`)
	if err != nil {
		return model.QueueStats{}, fmt.Errorf("stats query: %w", err)
	}
	defer rows.Close()

	stats := model.QueueStats{TotalValue: decimal.Zero}
	for rows.Next() {
		var total string
		var synced int
		var syncError, syncedAt sql.NullString
		if err := rows.Scan(&total, &synced, &syncError, &syncedAt); err != nil {
			return model.QueueStats{}, fmt.Errorf("stats scan: %w", err)
		}

		stats.TotalOrders++
		if synced == 0 {
			stats.UnsyncedOrders++
		}
		if syncError.Valid && syncError.String != "" {
			stats.SyncErrorCount++
		}

		d, err := decimal.NewFromString(total)
		if err != nil {
			return model.QueueStats{}, fmt.Errorf("stats parse total %q: %w", total, err)
		}
		stats.TotalValue = stats.TotalValue.Add(d)

		if synced == 1 && syncedAt.Valid {
			t, err := time.Parse(timeFormat, syncedAt.String)
			if err != nil {
				return model.QueueStats{}, fmt.Errorf("stats parse synced_at %q: %w", syncedAt.String, err)
			}
			if stats.LastSync == nil || t.After(*stats.LastSync) {
				stats.LastSync = &t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return model.QueueStats{}, fmt.Errorf("stats query: %w", err)
	}
	return stats, nil
}

// --- Row scanning ---

const selectOrderColumns = `
	SELECT id, items, total, payment, customer, status, synced, sync_attempts,
	       last_sync_attempt, synced_at, remote_id, sync_error, created_at
	FROM pending_orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.PendingOrder, error) {
	var o model.PendingOrder
	var items, total, payment, createdAt string
	var customer, lastAttempt, syncedAt, remoteID, syncError sql.NullString
	var synced int

	err := row.Scan(&o.ID, &items, &total, &payment, &customer, &o.Status,
		&synced, &o.SyncAttempts, &lastAttempt, &syncedAt, &remoteID,
		&syncError, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(payment), &o.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	if customer.Valid {
		o.Customer = &model.CustomerInfo{}
		if err := json.Unmarshal([]byte(customer.String), o.Customer); err != nil {
			return nil, fmt.Errorf("unmarshal customer: %w", err)
		}
	}

	o.Total, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}

	o.Synced = synced == 1
	o.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if o.LastSyncAttempt, err = parseNullTime(lastAttempt); err != nil {
		return nil, fmt.Errorf("parse last_sync_attempt: %w", err)
	}
	if o.SyncedAt, err = parseNullTime(syncedAt); err != nil {
		return nil, fmt.Errorf("parse synced_at: %w", err)
	}
	if remoteID.Valid {
		o.RemoteID = &remoteID.String
	}
	if syncError.Valid {
		o.SyncError = &syncError.String
	}
	return &o, nil
}

// --- Helpers ---

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeFormat), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeFormat, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
