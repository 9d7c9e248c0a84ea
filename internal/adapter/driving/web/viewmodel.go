package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

const dateLayout = "2006-01-02"

// ToCustomerFieldsViewModel converts a customer's billing data to the Stripe
// profile fragment view model.
func ToCustomerFieldsViewModel(billing *application.CustomerBilling) vm.CustomerFieldsViewModel {
	if billing == nil || !billing.Configured() {
		email := ""
		if billing != nil {
			email = billing.Email
		}
		return NotConnectedCustomerFields(email)
	}

	invoices := make([]vm.InvoiceViewModel, 0, len(billing.Invoices))
	for _, inv := range billing.Invoices {
		invoices = append(invoices, toInvoiceViewModel(inv))
	}

	subscriptions := make([]vm.SubscriptionViewModel, 0, len(billing.Subscriptions))
	for _, sub := range billing.Subscriptions {
		subscriptions = append(subscriptions, toSubscriptionViewModel(sub))
	}

	return vm.CustomerFieldsViewModel{
		Email:              billing.Email,
		State:              vm.StateLoaded,
		InvoicesState:      sectionState(billing.InvoicesState),
		SubscriptionsState: sectionState(billing.SubscriptionsState),
		Invoices:           invoices,
		Subscriptions:      subscriptions,
	}
}

// NotConnectedCustomerFields is the fragment for an email whose mailbox has
// no Stripe key.
func NotConnectedCustomerFields(email string) vm.CustomerFieldsViewModel {
	return vm.CustomerFieldsViewModel{
		Email:              email,
		State:              vm.StateNotConnected,
		InvoicesState:      vm.StateNotConnected,
		SubscriptionsState: vm.StateNotConnected,
		Invoices:           []vm.InvoiceViewModel{},
		Subscriptions:      []vm.SubscriptionViewModel{},
	}
}

// CredentialErrorCustomerFields is the fragment shown when the stored key
// could not be read.
func CredentialErrorCustomerFields(email string) vm.CustomerFieldsViewModel {
	fields := NotConnectedCustomerFields(email)
	fields.State = vm.StateCredentialError
	fields.InvoicesState = vm.StateCredentialError
	fields.SubscriptionsState = vm.StateCredentialError
	return fields
}

// UnavailableCustomerFields is the fragment shown when the key lookup itself
// failed.
func UnavailableCustomerFields(email string) vm.CustomerFieldsViewModel {
	fields := NotConnectedCustomerFields(email)
	fields.State = vm.StateLoaded
	fields.InvoicesState = vm.StateUnavailable
	fields.SubscriptionsState = vm.StateUnavailable
	return fields
}

func sectionState(s application.BillingState) string {
	switch s {
	case application.BillingLoaded:
		return vm.StateLoaded
	case application.BillingUnavailable:
		return vm.StateUnavailable
	default:
		return vm.StateNotConnected
	}
}

func toInvoiceViewModel(inv model.Invoice) vm.InvoiceViewModel {
	lines := make([]vm.InvoiceLineViewModel, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, vm.InvoiceLineViewModel{
			Description: l.Description,
			Amount:      model.FormatAmount(l.Amount, inv.Currency),
			Quantity:    l.Quantity,
		})
	}

	number := inv.Number
	if number == "" {
		number = inv.ID
	}

	return vm.InvoiceViewModel{
		ID:              inv.ID,
		Number:          number,
		Status:          string(inv.Status),
		StatusClass:     invoiceStatusClass(inv.Status),
		Total:           model.FormatAmount(inv.Total, inv.Currency),
		AmountDue:       model.FormatAmount(inv.AmountDue, inv.Currency),
		Created:         formatDate(inv.CreatedAt),
		Due:             formatDate(inv.DueAt),
		DescriptionHTML: RenderMarkdown(inv.Description),
		HostedURL:       inv.HostedURL,
		PDFURL:          inv.PDFURL,
		Lines:           lines,
	}
}

func toSubscriptionViewModel(sub model.Subscription) vm.SubscriptionViewModel {
	items := make([]vm.SubscriptionItemViewModel, 0, len(sub.Items))
	for _, it := range sub.Items {
		name := it.ProductName
		if name == "" {
			name = it.PriceNickname
		}

		price := model.FormatAmount(it.UnitAmount, sub.Currency)
		if it.Interval != "" {
			price = fmt.Sprintf("%s / %s", price, it.Interval)
		}

		items = append(items, vm.SubscriptionItemViewModel{
			ProductName: name,
			Price:       price,
			Quantity:    it.Quantity,
			RenewsOn:    formatDate(it.CurrentPeriodEnd),
		})
	}

	return vm.SubscriptionViewModel{
		ID:                sub.ID,
		Status:            string(sub.Status),
		StatusClass:       subscriptionStatusClass(sub.Status),
		Live:              sub.IsLive(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Created:           formatDate(sub.CreatedAt),
		DescriptionHTML:   RenderMarkdown(sub.Description),
		Items:             items,
	}
}

// ToMailboxMenuViewModel converts a mailbox to its Stripe settings menu entry.
func ToMailboxMenuViewModel(mailbox model.Mailbox) vm.MailboxMenuViewModel {
	return vm.MailboxMenuViewModel{
		MailboxID:   mailbox.ID,
		SettingsURL: StripeSettingsPath(mailbox.ID),
	}
}

// StripeSettingsPath returns the settings page path of a mailbox.
func StripeSettingsPath(mailboxID int64) string {
	return fmt.Sprintf("/mailboxes/%d/stripe", mailboxID)
}

func toStripeSettingsViewModel(
	mailbox model.Mailbox,
	status *application.MailboxStripeStatus,
	csrfToken string,
) vm.StripeSettingsViewModel {
	settingsPath := StripeSettingsPath(mailbox.ID)

	out := vm.StripeSettingsViewModel{
		MailboxID:    mailbox.ID,
		MailboxName:  mailbox.Name,
		MailboxEmail: mailbox.Email,
		ActionURL:    settingsPath,
		DeleteURL:    settingsPath + "/delete",
		BackURL:      fmt.Sprintf("/mailboxes/%d", mailbox.ID),
		CSRFToken:    csrfToken,
	}
	if status != nil {
		out.Configured = status.Configured
		out.Readable = status.Readable
		out.UpdatedAt = formatDate(status.UpdatedAt)
	}
	return out
}

func toCustomerPageViewModel(c model.Customer) vm.CustomerPageViewModel {
	emails := c.Emails
	if emails == nil {
		emails = []string{}
	}
	return vm.CustomerPageViewModel{
		Name:   c.FullName(),
		Email:  c.MainEmail(),
		Emails: emails,
	}
}

func toMailboxPageViewModel(m model.Mailbox) vm.MailboxPageViewModel {
	return vm.MailboxPageViewModel{ID: m.ID, Name: m.Name, Email: m.Email}
}

func invoiceStatusClass(s model.InvoiceStatus) string {
	switch s {
	case model.InvoiceStatusPaid:
		return "stripe-badge-success"
	case model.InvoiceStatusOpen:
		return "stripe-badge-warning"
	default:
		return "stripe-badge-muted"
	}
}

func subscriptionStatusClass(s model.SubscriptionStatus) string {
	switch s {
	case model.SubscriptionStatusActive, model.SubscriptionStatusTrialing:
		return "stripe-badge-success"
	case model.SubscriptionStatusPastDue, model.SubscriptionStatusUnpaid:
		return "stripe-badge-warning"
	default:
		return "stripe-badge-muted"
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
