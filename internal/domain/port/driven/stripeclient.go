package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

// ErrStripeKeyMissing is returned by StripeClient operations when the client
// was built with an empty secret key. No request is sent in that case.
var ErrStripeKeyMissing = errors.New("stripe secret key is empty")

// StripeClient defines the driven port for read-only access to the Stripe API.
// A client is bound to exactly one secret key.
type StripeClient interface {
	// FetchInvoices returns the invoices billed to every Stripe customer
	// registered with the email. An email without customers yields an empty slice.
	FetchInvoices(ctx context.Context, email string) ([]model.Invoice, error)

	// FetchSubscriptions returns the subscriptions, in any status, of every
	// Stripe customer registered with the email.
	FetchSubscriptions(ctx context.Context, email string) ([]model.Subscription, error)
}

// StripeClientFactory builds request-scoped StripeClients. The secret key
// passed to New must not be retained beyond the returned client.
type StripeClientFactory interface {
	New(secretKey string) StripeClient
}
