package model

import "time"

// InvoiceStatus mirrors Stripe's invoice status values.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusOpen          InvoiceStatus = "open"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusUncollectible InvoiceStatus = "uncollectible"
	InvoiceStatusVoid          InvoiceStatus = "void"
)

// Invoice is a read-only view of a Stripe invoice billed to a customer.
// Amounts are in the currency's minor unit.
type Invoice struct {
	ID          string
	Number      string
	Status      InvoiceStatus
	Currency    string
	Total       int64
	AmountDue   int64
	AmountPaid  int64
	Description string
	HostedURL   string
	PDFURL      string
	CreatedAt   time.Time
	DueAt       time.Time // Zero when the invoice has no due date.
	Lines       []InvoiceLine
}

// InvoiceLine is a single line item of an invoice.
type InvoiceLine struct {
	ID          string
	Description string
	Amount      int64
	Quantity    int64
}
