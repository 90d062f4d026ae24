package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logging.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, logger: logger}
}

const orderColumns = `
	id, account_id, status, total_cents, payment_id, customer_name, customer_email,
	billing_line1, billing_line2, billing_city, billing_postal_code, billing_country,
	shipping_line1, shipping_line2, shipping_city, shipping_postal_code, shipping_country,
	created_at, updated_at`

// Create writes the order and its frozen items in one transaction so a crash
// can never leave an order without its lines.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, account_id, status, total_cents, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		order.ID, order.AccountID, order.Status, order.TotalCents, order.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert order", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return err
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents)
			 VALUES ($1, $2, $3, $4, $5)`,
			item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			r.logger.Error("Failed to insert order item", logging.Fields{
				"order_id":   item.OrderID,
				"product_id": item.ProductID,
				"error":      err.Error(),
			})
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info("Order created", logging.Fields{
		"order_id":    order.ID,
		"account_id":  order.AccountID,
		"total_cents": order.TotalCents,
		"item_count":  len(items),
	})
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1`
	return r.queryOrder(ctx, query, id)
}

func (r *PostgresOrderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE payment_id = $1`
	return r.queryOrder(ctx, query, paymentID)
}

func (r *PostgresOrderRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE account_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *PostgresOrderRepository) ItemsByOrder(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, product_name, quantity, unit_price_cents
		 FROM order_items WHERE order_id = $1 ORDER BY product_name`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.OrderItem, 0)
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.OrderID,
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

// Fulfill writes every fulfillment field in a single UPDATE. Re-running with
// identical details overwrites the fields with the same values, which is what
// makes webhook redelivery safe.
func (r *PostgresOrderRepository) Fulfill(ctx context.Context, orderID string, d models.FulfillmentDetails) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET
			customer_name = $2, customer_email = $3, payment_id = $4, total_cents = $5,
			billing_line1 = $6, billing_line2 = $7, billing_city = $8,
			billing_postal_code = $9, billing_country = $10,
			shipping_line1 = $11, shipping_line2 = $12, shipping_city = $13,
			shipping_postal_code = $14, shipping_country = $15,
			updated_at = $16
		 WHERE id = $1`,
		orderID,
		d.CustomerName, d.CustomerEmail, d.PaymentID, d.TotalCents,
		d.BillingAddress.Line1, d.BillingAddress.Line2, d.BillingAddress.City,
		d.BillingAddress.PostalCode, d.BillingAddress.Country,
		d.ShippingAddress.Line1, d.ShippingAddress.Line2, d.ShippingAddress.City,
		d.ShippingAddress.PostalCode, d.ShippingAddress.Country,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to fulfill order", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.ErrNotFound
	}

	r.logger.Info("Order fulfilled", logging.Fields{
		"order_id":   orderID,
		"payment_id": d.PaymentID,
	})
	return nil
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, status, time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update order status", logging.Fields{
			"order_id": orderID,
			"status":   status,
			"error":    err.Error(),
		})
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.ErrNotFound
	}

	r.logger.Info("Order status updated", logging.Fields{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

func (r *PostgresOrderRepository) queryOrder(ctx context.Context, query string, arg interface{}) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var paymentID, name, email sql.NullString
	var billing, shipping [5]sql.NullString

	err := row.Scan(
		&order.ID,
		&order.AccountID,
		&order.Status,
		&order.TotalCents,
		&paymentID,
		&name,
		&email,
		&billing[0], &billing[1], &billing[2], &billing[3], &billing[4],
		&shipping[0], &shipping[1], &shipping[2], &shipping[3], &shipping[4],
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.PaymentID = paymentID.String
	order.CustomerName = name.String
	order.CustomerEmail = email.String
	order.BillingAddress = scanAddress(billing)
	order.ShippingAddress = scanAddress(shipping)

	return &order, nil
}
