package stripe

import (
	"log/slog"
	"net/http"
	"time"

	stripego "github.com/stripe/stripe-go/v82"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StripeClientFactory = (*ClientFactory)(nil)

// DefaultListLimit is the page size used for invoice and subscription lists.
const DefaultListLimit = 10

// FactoryConfig configures the shared Stripe backend.
type FactoryConfig struct {
	// APIURL overrides the Stripe API base URL (no trailing /v1). Empty uses
	// the SDK default https://api.stripe.com.
	APIURL string
	// HTTPClient is shared by every client built by the factory. Its Timeout
	// is the only deadline applied to Stripe calls besides the request context.
	HTTPClient *http.Client
	// ListLimit bounds the number of invoices and subscriptions fetched per
	// Stripe customer.
	ListLimit int64
	Logger    *slog.Logger
}

// ClientFactory builds per-key Clients on top of one shared stripe-go
// backend. The backend holds no key and is safe for concurrent use.
type ClientFactory struct {
	backend stripego.Backend
	limit   int64
	logger  *slog.Logger
}

// NewClientFactory creates a ClientFactory with the following backend setup:
//  1. the configured http.Client (80s timeout when none is given)
//  2. MaxNetworkRetries = 0: every call is attempted exactly once
//  3. SDK logs routed to slog
func NewClientFactory(cfg FactoryConfig) *ClientFactory {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 80 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := cfg.ListLimit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	backendConfig := &stripego.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     &leveledLogger{logger: logger.With("component", "stripe-sdk")},
		MaxNetworkRetries: stripego.Int64(0),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripego.String(cfg.APIURL)
	}

	return &ClientFactory{
		backend: stripego.GetBackendWithConfig(stripego.APIBackend, backendConfig),
		limit:   limit,
		logger:  logger,
	}
}

// New returns a Client bound to secretKey. An empty key yields a client whose
// operations fail with driven.ErrStripeKeyMissing without network traffic.
func (f *ClientFactory) New(secretKey string) driven.StripeClient {
	return newClient(f.backend, secretKey, f.limit, f.logger)
}
