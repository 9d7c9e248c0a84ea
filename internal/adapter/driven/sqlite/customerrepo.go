package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CustomerStore = (*CustomerRepo)(nil)

// CustomerRepo is the SQLite implementation of the CustomerStore port.
type CustomerRepo struct {
	db *DB
}

// NewCustomerRepo creates a new CustomerRepo backed by the given DB.
func NewCustomerRepo(db *DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// GetByEmail returns the customer owning the email (case-insensitive) with all
// of its emails in insertion order, or (nil, nil) when no customer matches.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	const customerQuery = `
		SELECT c.id, c.first_name, c.last_name
		FROM customers c
		JOIN customer_emails e ON e.customer_id = c.id
		WHERE e.email = ?
	`

	var c model.Customer
	err := r.db.Reader.QueryRowContext(ctx, customerQuery, email).Scan(&c.ID, &c.FirstName, &c.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer by email: %w", err)
	}

	const emailsQuery = `SELECT email FROM customer_emails WHERE customer_id = ? ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, emailsQuery, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list emails for customer %d: %w", c.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan customer email: %w", err)
		}
		c.Emails = append(c.Emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer emails: %w", err)
	}

	return &c, nil
}
