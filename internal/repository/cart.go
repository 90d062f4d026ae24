package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
)

// uniqueViolation is the postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresCartRepository implements CartRepository using PostgreSQL.
type PostgresCartRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logging.Logger) *PostgresCartRepository {
	return &PostgresCartRepository{db: db, logger: logger}
}

// GetOrCreate returns the account's cart, creating it on first use. The
// unique index on account_id makes concurrent first calls converge on one row.
func (r *PostgresCartRepository) GetOrCreate(ctx context.Context, accountID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id FROM carts WHERE account_id = $1`,
		accountID,
	).Scan(&cart.ID, &cart.AccountID)
	if err == nil {
		return &cart, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	cart = models.Cart{ID: models.NewID("cart"), AccountID: accountID}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO carts (id, account_id) VALUES ($1, $2)`,
		cart.ID, cart.AccountID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			// Lost the race; another request created it.
			return r.GetOrCreate(ctx, accountID)
		}
		r.logger.Error("Failed to create cart", logging.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		})
		return nil, err
	}

	r.logger.Info("Cart created", logging.Fields{
		"cart_id":    cart.ID,
		"account_id": accountID,
	})
	return &cart, nil
}

// UpsertItem inserts the line or adjusts its quantity. The increment happens
// inside the ON CONFLICT clause so concurrent adds never lose updates.
func (r *PostgresCartRepository) UpsertItem(ctx context.Context, cartID, productID string, quantity int, replace bool) error {
	if quantity < 1 {
		quantity = 1
	}

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
	if replace {
		query = `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = EXCLUDED.quantity
		`
	}

	if _, err := r.db.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
		r.logger.Error("Failed to upsert cart item", logging.Fields{
			"cart_id":    cartID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return err
	}

	return nil
}

// RemoveItem deletes the line if present. Removing an absent product is not
// an error.
func (r *PostgresCartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	)
	return err
}

func (r *PostgresCartRepository) Clear(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// Items joins cart lines with the catalog so unit prices are always the
// product's current discounted price.
func (r *PostgresCartRepository) Items(ctx context.Context, cartID string) ([]*models.CartItem, error) {
	query := `
		SELECT ci.cart_id, ci.product_id, p.name, ci.quantity,
		       p.price_cents - (p.price_cents * p.discount_percentage / 100)
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.name
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.CartItem, 0)
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}
