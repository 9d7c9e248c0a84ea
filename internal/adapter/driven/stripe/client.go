// Package stripe implements the StripeClient port using the stripe-go library.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/invoice"
	"github.com/stripe/stripe-go/v82/product"
	"github.com/stripe/stripe-go/v82/subscription"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StripeClient = (*Client)(nil)

// Client implements driven.StripeClient for a single secret key. It performs
// read-only list calls and keeps no state between them.
type Client struct {
	customers     customer.Client
	invoices      invoice.Client
	subscriptions subscription.Client
	products      product.Client
	hasKey        bool
	limit         int64
	logger        *slog.Logger
}

func newClient(backend stripego.Backend, secretKey string, limit int64, logger *slog.Logger) *Client {
	return &Client{
		customers:     customer.Client{B: backend, Key: secretKey},
		invoices:      invoice.Client{B: backend, Key: secretKey},
		subscriptions: subscription.Client{B: backend, Key: secretKey},
		products:      product.Client{B: backend, Key: secretKey},
		hasKey:        secretKey != "",
		limit:         limit,
		logger:        logger,
	}
}

// FetchInvoices lists the most recent invoices of every Stripe customer
// registered with email, in Stripe's order (newest first per customer).
func (c *Client) FetchInvoices(ctx context.Context, email string) ([]model.Invoice, error) {
	if !c.hasKey {
		return nil, driven.ErrStripeKeyMissing
	}

	customerIDs, err := c.customerIDs(ctx, email)
	if err != nil {
		return nil, err
	}

	invoices := []model.Invoice{}
	for _, customerID := range customerIDs {
		params := &stripego.InvoiceListParams{Customer: stripego.String(customerID)}
		params.Context = ctx
		params.Limit = stripego.Int64(c.limit)
		params.Single = true

		count := 0
		iter := c.invoices.List(params)
		for iter.Next() {
			invoices = append(invoices, mapInvoice(iter.Invoice()))
			count++
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("listing invoices for customer %s: %w", customerID, err)
		}

		logCall(c.logger, "invoices", customerID, count)
	}

	return invoices, nil
}

// FetchSubscriptions lists subscriptions in every status for each Stripe
// customer registered with email. Product names are resolved once per call.
func (c *Client) FetchSubscriptions(ctx context.Context, email string) ([]model.Subscription, error) {
	if !c.hasKey {
		return nil, driven.ErrStripeKeyMissing
	}

	customerIDs, err := c.customerIDs(ctx, email)
	if err != nil {
		return nil, err
	}

	productNames := make(map[string]string)
	subscriptions := []model.Subscription{}

	for _, customerID := range customerIDs {
		params := &stripego.SubscriptionListParams{
			Customer: stripego.String(customerID),
			Status:   stripego.String("all"),
		}
		params.Context = ctx
		params.Limit = stripego.Int64(c.limit)
		params.Single = true
		params.AddExpand("data.items.data.price.product")

		var page []*stripego.Subscription
		iter := c.subscriptions.List(params)
		for iter.Next() {
			page = append(page, iter.Subscription())
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("listing subscriptions for customer %s: %w", customerID, err)
		}

		logCall(c.logger, "subscriptions", customerID, len(page))

		for _, s := range page {
			sub := mapSubscription(s)
			for i := range sub.Items {
				name, err := c.productName(ctx, sub.Items[i].ProductID, sub.Items[i].ProductName, productNames)
				if err != nil {
					return nil, err
				}
				sub.Items[i].ProductName = name
			}
			subscriptions = append(subscriptions, sub)
		}
	}

	return subscriptions, nil
}

// customerIDs returns the ids of every Stripe customer whose email matches.
func (c *Client) customerIDs(ctx context.Context, email string) ([]string, error) {
	params := &stripego.CustomerListParams{Email: stripego.String(email)}
	params.Context = ctx

	var ids []string
	iter := c.customers.List(params)
	for iter.Next() {
		ids = append(ids, iter.Customer().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing customers by email: %w", err)
	}

	logCall(c.logger, "customers", "", len(ids))

	return ids, nil
}

// productName returns known when the product was expanded, otherwise fetches
// the product once and memoises it in cache. A product Stripe no longer
// knows falls back to its id.
func (c *Client) productName(ctx context.Context, productID, known string, cache map[string]string) (string, error) {
	if known != "" || productID == "" {
		return known, nil
	}
	if name, ok := cache[productID]; ok {
		return name, nil
	}

	params := &stripego.ProductParams{}
	params.Context = ctx

	p, err := c.products.Get(productID, params)
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripego.ErrorCodeResourceMissing {
			cache[productID] = productID
			return productID, nil
		}
		return "", fmt.Errorf("fetching product %s: %w", productID, err)
	}

	cache[productID] = p.Name
	return p.Name, nil
}

// mapInvoice converts a stripe-go Invoice to a domain model Invoice.
func mapInvoice(in *stripego.Invoice) model.Invoice {
	lines := []model.InvoiceLine{}
	if in.Lines != nil {
		for _, li := range in.Lines.Data {
			lines = append(lines, model.InvoiceLine{
				ID:          li.ID,
				Description: li.Description,
				Amount:      li.Amount,
				Quantity:    li.Quantity,
			})
		}
	}

	return model.Invoice{
		ID:          in.ID,
		Number:      in.Number,
		Status:      model.InvoiceStatus(in.Status),
		Currency:    string(in.Currency),
		Total:       in.Total,
		AmountDue:   in.AmountDue,
		AmountPaid:  in.AmountPaid,
		Description: in.Description,
		HostedURL:   in.HostedInvoiceURL,
		PDFURL:      in.InvoicePDF,
		CreatedAt:   unixTime(in.Created),
		DueAt:       unixTime(in.DueDate),
		Lines:       lines,
	}
}

// mapSubscription converts a stripe-go Subscription to a domain model
// Subscription. ProductName is only set when Stripe returned the product expanded.
func mapSubscription(s *stripego.Subscription) model.Subscription {
	items := []model.SubscriptionItem{}
	if s.Items != nil {
		for _, it := range s.Items.Data {
			item := model.SubscriptionItem{
				ID:               it.ID,
				Quantity:         it.Quantity,
				CurrentPeriodEnd: unixTime(it.CurrentPeriodEnd),
			}
			if it.Price != nil {
				item.PriceNickname = it.Price.Nickname
				item.UnitAmount = it.Price.UnitAmount
				if it.Price.Recurring != nil {
					item.Interval = string(it.Price.Recurring.Interval)
				}
				if it.Price.Product != nil {
					item.ProductID = it.Price.Product.ID
					item.ProductName = it.Price.Product.Name
				}
			}
			items = append(items, item)
		}
	}

	return model.Subscription{
		ID:                s.ID,
		Status:            model.SubscriptionStatus(s.Status),
		Currency:          string(s.Currency),
		Description:       s.Description,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		CreatedAt:         unixTime(s.Created),
		Items:             items,
	}
}

// unixTime converts a Stripe epoch timestamp; 0 maps to the zero time.
func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// logCall records one Stripe list call. Keys and emails are never logged.
func logCall(logger *slog.Logger, resource, customerID string, count int) {
	logger.Debug("stripe api call",
		"resource", resource,
		"customer_id", customerID,
		"count", count,
	)
}
