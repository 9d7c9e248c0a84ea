// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

const healthTimeout = 2 * time.Second

// StripeReader is the billing read side used by the API.
type StripeReader interface {
	Invoices(ctx context.Context, email string) ([]model.Invoice, error)
	Subscriptions(ctx context.Context, email string) ([]model.Subscription, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	stripe StripeReader
	db     Pinger
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(stripe StripeReader, db Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		stripe: stripe,
		db:     db,
		logger: logger,
	}
}

// RegisterRoutes registers the API routes on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/customers/{email}/invoices", h.ListInvoices)
	mux.HandleFunc("GET /api/v1/customers/{email}/subscriptions", h.ListSubscriptions)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// Wrap applies the standard middleware chain to next.
func Wrap(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return Wrap(mux, logger)
}

// ListInvoices returns the Stripe invoices of a customer email.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	invoices, err := h.stripe.Invoices(r.Context(), email)
	if errors.Is(err, application.ErrNotConfigured) {
		writeJSON(w, http.StatusOK, InvoicesResponse{Status: statusNotConfigured, Invoices: []InvoiceResponse{}})
		return
	}
	if err != nil {
		h.writeStripeError(w, r, "invoices", err)
		return
	}

	resp := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, toInvoiceResponse(inv))
	}

	writeJSON(w, http.StatusOK, InvoicesResponse{Status: statusLoaded, Invoices: resp})
}

// ListSubscriptions returns the Stripe subscriptions of a customer email.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	subscriptions, err := h.stripe.Subscriptions(r.Context(), email)
	if errors.Is(err, application.ErrNotConfigured) {
		writeJSON(w, http.StatusOK, SubscriptionsResponse{Status: statusNotConfigured, Subscriptions: []SubscriptionResponse{}})
		return
	}
	if err != nil {
		h.writeStripeError(w, r, "subscriptions", err)
		return
	}

	resp := make([]SubscriptionResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		resp = append(resp, toSubscriptionResponse(sub))
	}

	writeJSON(w, http.StatusOK, SubscriptionsResponse{Status: statusLoaded, Subscriptions: resp})
}

// writeStripeError maps service errors to status codes: 502 for Stripe
// failures, 500 for key decryption and store failures.
func (h *Handler) writeStripeError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	var cryptoErr *secretbox.CryptoError
	switch {
	case errors.Is(err, application.ErrStripeUnavailable):
		writeError(w, http.StatusBadGateway, "stripe is unavailable")
	case errors.As(err, &cryptoErr):
		h.logger.Error("stored stripe key cannot be decrypted",
			"resource", resource, "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "stored stripe key cannot be decrypted")
	default:
		h.logger.Error("failed to load stripe data",
			"resource", resource, "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Time: now})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: now})
}
