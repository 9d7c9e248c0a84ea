// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// Section states of the customer billing fragment.
const (
	StateLoaded          = "loaded"
	StateNotConnected    = "not_connected"
	StateUnavailable     = "unavailable"
	StateCredentialError = "credential_error"
)

// CustomerFieldsViewModel holds the data of the Stripe fragment shown on a
// customer profile.
type CustomerFieldsViewModel struct {
	Email string
	// State is StateNotConnected or StateCredentialError for the whole
	// fragment, otherwise StateLoaded and each section carries its own state.
	State              string
	InvoicesState      string
	SubscriptionsState string
	Invoices           []InvoiceViewModel
	Subscriptions      []SubscriptionViewModel
}

// InvoiceViewModel holds presentation-ready data for one invoice row.
type InvoiceViewModel struct {
	ID              string
	Number          string
	Status          string
	StatusClass     string
	Total           string
	AmountDue       string
	Created         string
	Due             string // empty when the invoice has no due date
	DescriptionHTML string // sanitized markdown
	HostedURL       string
	PDFURL          string
	Lines           []InvoiceLineViewModel
}

// InvoiceLineViewModel holds one invoice line.
type InvoiceLineViewModel struct {
	Description string
	Amount      string
	Quantity    int64
}

// SubscriptionViewModel holds presentation-ready data for one subscription.
type SubscriptionViewModel struct {
	ID                string
	Status            string
	StatusClass       string
	Live              bool
	CancelAtPeriodEnd bool
	Created           string
	DescriptionHTML   string
	Items             []SubscriptionItemViewModel
}

// SubscriptionItemViewModel holds one priced product of a subscription.
type SubscriptionItemViewModel struct {
	ProductName string
	Price       string // e.g. "15.00 USD / month"
	Quantity    int64
	RenewsOn    string
}

// MailboxMenuViewModel holds the Stripe entry of a mailbox settings menu.
type MailboxMenuViewModel struct {
	MailboxID   int64
	SettingsURL string
}

// StripeSettingsViewModel holds the mailbox Stripe settings form.
type StripeSettingsViewModel struct {
	MailboxID    int64
	MailboxName  string
	MailboxEmail string
	Configured   bool
	Readable     bool
	UpdatedAt    string
	ActionURL    string
	DeleteURL    string
	BackURL      string
	CSRFToken    string
	Flash        string
	Error        string
}

// CustomerPageViewModel holds the host customer profile header.
type CustomerPageViewModel struct {
	Name   string
	Email  string
	Emails []string
}

// MailboxPageViewModel holds the host mailbox settings page header.
type MailboxPageViewModel struct {
	ID    int64
	Name  string
	Email string
}

// LayoutViewModel holds the page chrome shared by every host page.
type LayoutViewModel struct {
	Title   string
	Styles  []string
	Scripts []string
}
