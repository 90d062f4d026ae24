package repository

import (
	"context"
	"database/sql"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
)

// PostgresProductRepository implements ProductRepository using PostgreSQL.
type PostgresProductRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logging.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, logger: logger}
}

const productColumns = `id, collection_id, name, description, quantity, price_cents, discount_percentage, created_at`

func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.CollectionID,
		&p.Name,
		&p.Description,
		&p.Quantity,
		&p.PriceCents,
		&p.DiscountPercentage,
		&p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch product", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &p, nil
}

func (r *PostgresProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *PostgresProductRepository) ListByCollection(ctx context.Context, collectionID string) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE collection_id = $1 ORDER BY created_at DESC`
	return r.queryProducts(ctx, query, collectionID)
}

// DecrementQuantity performs the decrement as a conditional update so that
// concurrent fulfillments cannot drive stock negative.
func (r *PostgresProductRepository) DecrementQuantity(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return errs.NewValidationError("quantity", "quantity must be positive")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - $2 WHERE id = $1 AND quantity >= $2`,
		id, qty,
	)
	if err != nil {
		r.logger.Error("Failed to decrement inventory", logging.Fields{
			"product_id": id,
			"quantity":   qty,
			"error":      err.Error(),
		})
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return errs.ErrNotFound
		}
		return errs.NewValidationError("quantity", "not enough quantity available")
	}

	r.logger.Info("Inventory decremented", logging.Fields{
		"product_id": id,
		"quantity":   qty,
	})
	return nil
}

func (r *PostgresProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID,
			&p.CollectionID,
			&p.Name,
			&p.Description,
			&p.Quantity,
			&p.PriceCents,
			&p.DiscountPercentage,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}
