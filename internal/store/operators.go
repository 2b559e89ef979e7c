package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comanda-pos/terminal/internal/model"
)

// CreateOperator inserts a terminal operator.
func (s *Store) CreateOperator(ctx context.Context, op *model.Operator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operators (id, name, username, pin_hash, role, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.ID.String(), op.Name, op.Username, op.PinHash, op.Role,
		op.CreatedAt.UTC().Format(timeFormat), nullTime(op.LastLogin),
	)
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}
	return nil
}

// GetOperatorByUsername looks an operator up for login.
func (s *Store) GetOperatorByUsername(ctx context.Context, username string) (*model.Operator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, username, pin_hash, role, created_at, last_login
		FROM operators WHERE username = ?`, username)
	return scanOperator(row)
}

// GetOperatorByID resolves an operator from token claims.
func (s *Store) GetOperatorByID(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, username, pin_hash, role, created_at, last_login
		FROM operators WHERE id = ?`, id.String())
	return scanOperator(row)
}

// TouchOperatorLogin stamps a successful login.
func (s *Store) TouchOperatorLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE operators SET last_login = ? WHERE id = ?`,
		at.UTC().Format(timeFormat), id.String(),
	)
	if err != nil {
		return fmt.Errorf("touch operator login: %w", err)
	}
	return requireRow(res)
}

// CountOperators reports how many operators exist (used by seeding).
func (s *Store) CountOperators(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operators: %w", err)
	}
	return n, nil
}

func scanOperator(row rowScanner) (*model.Operator, error) {
	var op model.Operator
	var id, createdAt string
	var lastLogin sql.NullString

	err := row.Scan(&id, &op.Name, &op.Username, &op.PinHash, &op.Role,
		&createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan operator: %w", err)
	}

	if op.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse operator id %q: %w", id, err)
	}
	if op.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if op.LastLogin, err = parseNullTime(lastLogin); err != nil {
		return nil, fmt.Errorf("parse last_login: %w", err)
	}
	return &op, nil
}
