package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

const (
	statusLoaded        = "loaded"
	statusNotConfigured = "not_configured"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// InvoicesResponse is the body of the invoices endpoint.
type InvoicesResponse struct {
	Status   string            `json:"status"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// InvoiceResponse is the JSON representation of a Stripe invoice.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	Number      string                `json:"number"`
	Status      string                `json:"status"`
	Currency    string                `json:"currency"`
	Total       int64                 `json:"total"`
	AmountDue   int64                 `json:"amount_due"`
	AmountPaid  int64                 `json:"amount_paid"`
	Description string                `json:"description"`
	HostedURL   string                `json:"hosted_url"`
	PDFURL      string                `json:"pdf_url"`
	CreatedAt   string                `json:"created_at"`
	DueAt       *string               `json:"due_at"`
	Lines       []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse is one invoice line.
type InvoiceLineResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Quantity    int64  `json:"quantity"`
}

// SubscriptionsResponse is the body of the subscriptions endpoint.
type SubscriptionsResponse struct {
	Status        string                 `json:"status"`
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

// SubscriptionResponse is the JSON representation of a Stripe subscription.
type SubscriptionResponse struct {
	ID                string                     `json:"id"`
	Status            string                     `json:"status"`
	Currency          string                     `json:"currency"`
	Description       string                     `json:"description"`
	CancelAtPeriodEnd bool                       `json:"cancel_at_period_end"`
	CreatedAt         string                     `json:"created_at"`
	Items             []SubscriptionItemResponse `json:"items"`
}

// SubscriptionItemResponse is one priced product of a subscription.
type SubscriptionItemResponse struct {
	ID               string  `json:"id"`
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	PriceNickname    string  `json:"price_nickname"`
	UnitAmount       int64   `json:"unit_amount"`
	Quantity         int64   `json:"quantity"`
	Interval         string  `json:"interval"`
	CurrentPeriodEnd *string `json:"current_period_end"`
}

// HealthResponse is the JSON response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:          l.ID,
			Description: l.Description,
			Amount:      l.Amount,
			Quantity:    l.Quantity,
		})
	}

	return InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Status:      string(inv.Status),
		Currency:    inv.Currency,
		Total:       inv.Total,
		AmountDue:   inv.AmountDue,
		AmountPaid:  inv.AmountPaid,
		Description: inv.Description,
		HostedURL:   inv.HostedURL,
		PDFURL:      inv.PDFURL,
		CreatedAt:   formatTime(inv.CreatedAt),
		DueAt:       optionalTime(inv.DueAt),
		Lines:       lines,
	}
}

func toSubscriptionResponse(sub model.Subscription) SubscriptionResponse {
	items := make([]SubscriptionItemResponse, 0, len(sub.Items))
	for _, it := range sub.Items {
		items = append(items, SubscriptionItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			ProductName:      it.ProductName,
			PriceNickname:    it.PriceNickname,
			UnitAmount:       it.UnitAmount,
			Quantity:         it.Quantity,
			Interval:         it.Interval,
			CurrentPeriodEnd: optionalTime(it.CurrentPeriodEnd),
		})
	}

	return SubscriptionResponse{
		ID:                sub.ID,
		Status:            string(sub.Status),
		Currency:          sub.Currency,
		Description:       sub.Description,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CreatedAt:         formatTime(sub.CreatedAt),
		Items:             items,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// optionalTime returns nil for the zero time so it encodes as JSON null.
func optionalTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := formatTime(t)
	return &s
}
