package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/terminal/internal/model"
)

// ReplaceProducts overwrites the product cache wholesale. The swap happens
// inside one transaction so readers never observe a half-replaced menu.
func (s *Store) ReplaceProducts(ctx context.Context, products []model.Product, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_cache`); err != nil {
		return fmt.Errorf("clear product cache: %w", err)
	}

	stamp := at.UTC().Format(timeFormat)
	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_cache
				(id, name, description, price, category, image_url, available,
				 preparation_minutes, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.Price.String(), p.Category,
			p.ImageURL, boolToInt(p.Available), p.PreparationMinutes, stamp,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListProducts returns the cached catalog, name order.
func (s *Store) ListProducts(ctx context.Context) ([]model.CachedProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, image_url, available,
		       preparation_minutes, last_updated
		FROM product_cache ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.CachedProduct
	for rows.Next() {
		var p model.CachedProduct
		var price, lastUpdated string
		var available int
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Category,
			&p.ImageURL, &available, &p.PreparationMinutes, &lastUpdated)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		p.Available = available == 1
		p.LastUpdated, err = time.Parse(timeFormat, lastUpdated)
		if err != nil {
			return nil, fmt.Errorf("parse last_updated %q: %w", lastUpdated, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
