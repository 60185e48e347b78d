package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"levelup-cart/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, user_id, status, discount_pct, total, created_at`

func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1 AND status = 'active'
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, userID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	// Ids are uuids; a malformed one cannot reference any row.
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) FindItem(ctx context.Context, itemID string) (*domain.Item, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT id::text, cart_id::text, product_id, product_name, unit_price, quantity, subtotal, created_at
FROM cart_items
WHERE id = $1
`
	var item domain.Item
	err := r.pool.QueryRow(ctx, q, itemID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.ProductName,
		&item.UnitPrice,
		&item.Quantity,
		&item.Subtotal,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// user_id and created_at are set once in the factory and never updated.
	if _, err := tx.Exec(ctx, `
INSERT INTO carts (id, user_id, status, discount_pct, total, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET status = EXCLUDED.status,
    discount_pct = EXCLUDED.discount_pct,
    total = EXCLUDED.total
`, cart.ID, cart.UserID, cart.Status, cart.DiscountPct, cart.Total, cart.CreatedAt); err != nil {
		return err
	}

	keep := make([]string, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		keep = append(keep, item.ID)
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (id, cart_id, product_id, product_name, unit_price, quantity, subtotal, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET product_name = EXCLUDED.product_name,
    unit_price = EXCLUDED.unit_price,
    quantity = EXCLUDED.quantity,
    subtotal = EXCLUDED.subtotal
`, item.ID, cart.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Subtotal, item.CreatedAt); err != nil {
			return err
		}
	}

	// Rows dropped from the aggregate are deleted with the same commit.
	if _, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND NOT (id = ANY($2))
`, cart.ID, keep); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Status,
		&cart.DiscountPct,
		&cart.Total,
		&cart.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, cart_id::text, product_id, product_name, unit_price, quantity, subtotal, created_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}
