package driven

import (
	"context"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

// CustomerStore defines the driven port for reading helpdesk customers.
// GetByEmail matches any of the customer's emails and returns (nil, nil)
// when no customer owns the address.
type CustomerStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
}
