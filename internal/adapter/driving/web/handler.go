// Package web implements the HTML driving adapter using templ components:
// the host pages that fire the plugin's extension points and the mailbox
// Stripe settings page.
package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
	"github.com/ericfisherdev/helpdesk-stripe/internal/hooks"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

const secretKeyField = "stripe_secret_key"

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	customers driven.CustomerStore
	mailboxes driven.MailboxStore
	stripeSvc *application.StripeService
	host      *hooks.Registry
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	customers driven.CustomerStore,
	mailboxes driven.MailboxStore,
	stripeSvc *application.StripeService,
	host *hooks.Registry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		customers: customers,
		mailboxes: mailboxes,
		stripeSvc: stripeSvc,
		host:      host,
		logger:    logger,
	}
}

// MailboxIndex lists every mailbox.
func (h *Handler) MailboxIndex(w http.ResponseWriter, r *http.Request) {
	mailboxes, err := h.mailboxes.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list mailboxes", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	items := make([]vm.MailboxPageViewModel, 0, len(mailboxes))
	for _, m := range mailboxes {
		items = append(items, toMailboxPageViewModel(m))
	}

	h.renderPage(w, r, http.StatusOK, "Mailboxes", templates.MailboxIndex(items))
}

// CustomerProfile renders a customer profile and fires customer.profile.extra
// below it. A failing extension does not fail the page.
func (h *Handler) CustomerProfile(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	customer, err := h.customers.GetByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("failed to get customer", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if customer == nil {
		http.NotFound(w, r)
		return
	}

	extra := h.fireAction(r.Context(), hooks.CustomerProfileExtra, customer)
	body := templates.CustomerPage(toCustomerPageViewModel(*customer), extra)

	h.renderPage(w, r, http.StatusOK, customer.FullName(), body)
}

// MailboxSettings renders a mailbox settings page whose menu is filled by
// mailboxes.settings.menu.
func (h *Handler) MailboxSettings(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := h.mailboxFromPath(w, r)
	if !ok {
		return
	}

	menu := h.fireAction(r.Context(), hooks.MailboxSettingsMenu, mailbox)
	body := templates.MailboxPage(toMailboxPageViewModel(*mailbox), menu)

	h.renderPage(w, r, http.StatusOK, mailbox.Name, body)
}

// StripeSettings renders the Stripe key form of a mailbox.
func (h *Handler) StripeSettings(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := h.mailboxFromPath(w, r)
	if !ok {
		return
	}

	status, err := h.stripeSvc.MailboxStatus(r.Context(), mailbox.ID)
	if err != nil {
		h.logger.Error("failed to load stripe status", "mailbox_id", mailbox.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := toStripeSettingsViewModel(*mailbox, status, csrfToken(w, r))
	switch {
	case r.URL.Query().Has("saved"):
		page.Flash = "Stripe key saved."
	case r.URL.Query().Has("removed"):
		page.Flash = "Stripe key removed."
	}

	h.renderPage(w, r, http.StatusOK, "Stripe · "+mailbox.Name, templates.StripeSettingsPage(page))
}

// SaveStripeSettings encrypts and stores the submitted key, then redirects
// back to the settings page.
func (h *Handler) SaveStripeSettings(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	mailbox, ok := h.mailboxFromPath(w, r)
	if !ok {
		return
	}

	err := h.stripeSvc.SaveSecretKey(r.Context(), mailbox.ID, r.FormValue(secretKeyField))
	switch {
	case err == nil:
		http.Redirect(w, r, StripeSettingsPath(mailbox.ID)+"?saved=1", http.StatusSeeOther)
	case errors.Is(err, application.ErrInvalidSecretKey):
		h.renderSettingsError(w, r, mailbox.ID, http.StatusUnprocessableEntity, "The key must be a Stripe secret key (sk_...) or restricted key (rk_...).")
	case errors.Is(err, secretbox.ErrKeyNotSet):
		h.logger.Error("cannot encrypt stripe key", "mailbox_id", mailbox.ID, "error", err)
		h.renderSettingsError(w, r, mailbox.ID, http.StatusServiceUnavailable, "The application encryption key is not configured.")
	default:
		h.logger.Error("failed to save stripe key", "mailbox_id", mailbox.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// DeleteStripeSettings removes the mailbox's key.
func (h *Handler) DeleteStripeSettings(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	mailbox, ok := h.mailboxFromPath(w, r)
	if !ok {
		return
	}

	if err := h.stripeSvc.DeleteSecretKey(r.Context(), mailbox.ID); err != nil {
		h.logger.Error("failed to delete stripe key", "mailbox_id", mailbox.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, StripeSettingsPath(mailbox.ID)+"?removed=1", http.StatusSeeOther)
}

func (h *Handler) renderSettingsError(w http.ResponseWriter, r *http.Request, mailboxID int64, status int, message string) {
	mailbox, err := h.mailboxes.Get(r.Context(), mailboxID)
	if err != nil || mailbox == nil {
		http.Error(w, message, status)
		return
	}

	stripeStatus, err := h.stripeSvc.MailboxStatus(r.Context(), mailboxID)
	if err != nil {
		http.Error(w, message, status)
		return
	}

	page := toStripeSettingsViewModel(*mailbox, stripeStatus, csrfToken(w, r))
	page.Error = message
	h.renderPage(w, r, status, "Stripe · "+mailbox.Name, templates.StripeSettingsPage(page))
}

// mailboxFromPath loads the mailbox named by the {id} path value, writing a
// 400 or 404 response when it cannot.
func (h *Handler) mailboxFromPath(w http.ResponseWriter, r *http.Request) (*model.Mailbox, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid mailbox id", http.StatusBadRequest)
		return nil, false
	}

	mailbox, err := h.mailboxes.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get mailbox", "mailbox_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}
	if mailbox == nil {
		http.NotFound(w, r)
		return nil, false
	}

	return mailbox, true
}

// fireAction renders an extension point into a component. Action errors have
// already been logged by the registry and only drop their own output.
func (h *Handler) fireAction(ctx context.Context, name string, arg any) templ.Component {
	var buf bytes.Buffer
	_ = h.host.DoAction(ctx, name, &buf, arg)
	return templ.Raw(buf.String())
}

// renderPage wraps body in the layout, with the asset lists filtered through
// the stylesheets and javascripts extension points.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	styles, _ := h.host.ApplyFilters(r.Context(), hooks.Stylesheets, []string{}).([]string)
	scripts, _ := h.host.ApplyFilters(r.Context(), hooks.Javascripts, []string{}).([]string)

	layout := templates.Layout(vm.LayoutViewModel{Title: title, Styles: styles, Scripts: scripts}, body)

	var buf bytes.Buffer
	if err := layout.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
