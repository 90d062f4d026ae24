package repository

import (
	"context"
	"database/sql"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
)

// PostgresAccountRepository implements AccountRepository using PostgreSQL.
type PostgresAccountRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresAccountRepository(db *sql.DB, logger *logging.Logger) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db, logger: logger}
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, username, email, first_name, last_name,
		       billing_line1, billing_line2, billing_city, billing_postal_code, billing_country,
		       shipping_line1, shipping_line2, shipping_city, shipping_postal_code, shipping_country
		FROM accounts
		WHERE id = $1
	`

	var a models.Account
	var billing, shipping [5]sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.FirstName,
		&a.LastName,
		&billing[0], &billing[1], &billing[2], &billing[3], &billing[4],
		&shipping[0], &shipping[1], &shipping[2], &shipping[3], &shipping[4],
	)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch account", logging.Fields{
			"account_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	a.BillingAddress = scanAddress(billing)
	a.ShippingAddress = scanAddress(shipping)

	return &a, nil
}

func scanAddress(cols [5]sql.NullString) models.Address {
	return models.Address{
		Line1:      cols[0].String,
		Line2:      cols[1].String,
		City:       cols[2].String,
		PostalCode: cols[3].String,
		Country:    cols[4].String,
	}
}
