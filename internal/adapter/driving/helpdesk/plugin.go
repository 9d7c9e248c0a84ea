// Package helpdesk implements the Stripe plugin of the helpdesk host: it
// registers callbacks on the host's extension points and renders the Stripe
// fragments inline.
package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web"
	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/hooks"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

// Host is the part of the host's extension-point registry the plugin uses.
// *hooks.Registry satisfies it.
type Host interface {
	AddFilter(name string, priority int, fn hooks.FilterFunc)
	AddAction(name string, priority int, fn hooks.ActionFunc)
}

// BillingService loads the Stripe data of a customer email.
type BillingService interface {
	CustomerBilling(ctx context.Context, email string) (*application.CustomerBilling, error)
}

// Plugin renders Stripe data into host pages.
type Plugin struct {
	billing   BillingService
	assetPath string
	logger    *slog.Logger
}

// NewPlugin creates a Plugin. assetPath is the public URL prefix of the
// embedded css/js assets, e.g. "/modules/stripe".
func NewPlugin(billing BillingService, assetPath string, logger *slog.Logger) *Plugin {
	return &Plugin{
		billing:   billing,
		assetPath: strings.TrimRight(assetPath, "/"),
		logger:    logger,
	}
}

// Register adds the plugin's two filters and two actions to host.
func (p *Plugin) Register(host Host) {
	host.AddFilter(hooks.Stylesheets, hooks.DefaultPriority, p.Stylesheets)
	host.AddFilter(hooks.Javascripts, hooks.DefaultPriority, p.Javascripts)
	host.AddAction(hooks.CustomerProfileExtra, hooks.DefaultPriority, p.CustomerProfileExtra)
	host.AddAction(hooks.MailboxSettingsMenu, hooks.DefaultPriority, p.MailboxSettingsMenu)
}

// StylesheetPath is the public URL of the plugin's stylesheet.
func (p *Plugin) StylesheetPath() string {
	return p.assetPath + "/css/stripe.css"
}

// ScriptPath is the public URL of the plugin's script.
func (p *Plugin) ScriptPath() string {
	return p.assetPath + "/js/stripe.js"
}

// Stylesheets appends the plugin stylesheet to the host's list.
func (p *Plugin) Stylesheets(_ context.Context, value any) any {
	return appendAsset(value, p.StylesheetPath())
}

// Javascripts appends the plugin script to the host's list.
func (p *Plugin) Javascripts(_ context.Context, value any) any {
	return appendAsset(value, p.ScriptPath())
}

// appendAsset returns a copy of list with path appended. A value that is not
// a []string is treated as an empty list.
func appendAsset(value any, path string) any {
	list, _ := value.([]string)
	out := slices.Clone(list)
	return append(out, path)
}

// CustomerProfileExtra renders the invoices and subscriptions of the
// customer's main email. Decryption and store failures render an error state
// and are returned so the host can log them; the page keeps rendering.
func (p *Plugin) CustomerProfileExtra(ctx context.Context, w io.Writer, arg any) error {
	customer, err := customerArg(arg)
	if err != nil {
		return err
	}

	email := customer.MainEmail()
	if email == "" {
		return templates.CustomerFields(web.NotConnectedCustomerFields("")).Render(ctx, w)
	}

	billing, err := p.billing.CustomerBilling(ctx, email)
	if err != nil {
		fields := web.UnavailableCustomerFields(email)
		var cryptoErr *secretbox.CryptoError
		if errors.As(err, &cryptoErr) {
			fields = web.CredentialErrorCustomerFields(email)
		}
		if renderErr := templates.CustomerFields(fields).Render(ctx, w); renderErr != nil {
			return errors.Join(err, renderErr)
		}
		return fmt.Errorf("stripe billing for customer %d: %w", customer.ID, err)
	}

	return templates.CustomerFields(web.ToCustomerFieldsViewModel(billing)).Render(ctx, w)
}

// MailboxSettingsMenu renders the link to the mailbox's Stripe settings.
func (p *Plugin) MailboxSettingsMenu(ctx context.Context, w io.Writer, arg any) error {
	mailbox, err := mailboxArg(arg)
	if err != nil {
		return err
	}
	return templates.MailboxSettingsMenu(web.ToMailboxMenuViewModel(mailbox)).Render(ctx, w)
}

func customerArg(arg any) (model.Customer, error) {
	switch c := arg.(type) {
	case model.Customer:
		return c, nil
	case *model.Customer:
		if c != nil {
			return *c, nil
		}
	}
	return model.Customer{}, fmt.Errorf("%s: expected a customer, got %T", hooks.CustomerProfileExtra, arg)
}

func mailboxArg(arg any) (model.Mailbox, error) {
	switch m := arg.(type) {
	case model.Mailbox:
		return m, nil
	case *model.Mailbox:
		if m != nil {
			return *m, nil
		}
	}
	return model.Mailbox{}, fmt.Errorf("%s: expected a mailbox, got %T", hooks.MailboxSettingsMenu, arg)
}
