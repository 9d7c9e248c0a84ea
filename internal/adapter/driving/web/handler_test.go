package web_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/helpdesk"
	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web"
	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
	"github.com/ericfisherdev/helpdesk-stripe/internal/hooks"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

// memStore implements every store port the web adapter needs, in memory.
type memStore struct {
	mailboxes     map[int64]*model.Mailbox
	customers     map[string]*model.Customer
	conversations map[string]*model.Conversation
	settings      map[int64]*model.StripeSetting
}

func newMemStore() *memStore {
	return &memStore{
		mailboxes:     map[int64]*model.Mailbox{1: {ID: 1, Name: "Support", Email: "support@example.com"}},
		customers:     map[string]*model.Customer{},
		conversations: map[string]*model.Conversation{},
		settings:      map[int64]*model.StripeSetting{},
	}
}

func (s *memStore) Get(_ context.Context, id int64) (*model.Mailbox, error) { return s.mailboxes[id], nil }

func (s *memStore) ListAll(_ context.Context) ([]model.Mailbox, error) {
	out := []model.Mailbox{}
	for _, m := range s.mailboxes {
		out = append(out, *m)
	}
	return out, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	return s.customers[email], nil
}

func (s *memStore) FirstByCustomerEmail(_ context.Context, email string) (*model.Conversation, error) {
	return s.conversations[email], nil
}

func (s *memStore) GetByMailbox(_ context.Context, id int64) (*model.StripeSetting, error) {
	return s.settings[id], nil
}

func (s *memStore) Upsert(_ context.Context, id int64, encrypted string) error {
	s.settings[id] = &model.StripeSetting{MailboxID: id, EncryptedSecretKey: encrypted, UpdatedAt: time.Now().UTC()}
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	delete(s.settings, id)
	return nil
}

// stubFactory returns a client with fixed invoices.
type stubFactory struct{ invoices []model.Invoice }

func (f stubFactory) New(string) driven.StripeClient { return stubClient(f) }

type stubClient struct{ invoices []model.Invoice }

func (c stubClient) FetchInvoices(context.Context, string) ([]model.Invoice, error) {
	return c.invoices, nil
}

func (c stubClient) FetchSubscriptions(context.Context, string) ([]model.Subscription, error) {
	return []model.Subscription{}, nil
}

type fixture struct {
	mux    *http.ServeMux
	store  *memStore
	cipher *secretbox.Cipher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cipher, err := secretbox.New(bytes.Repeat([]byte{1}, secretbox.KeySize))
	require.NoError(t, err)

	store := newMemStore()
	svc := application.NewStripeService(store, store, cipher,
		stubFactory{invoices: []model.Invoice{{ID: "in_1", Number: "INV-42", Status: model.InvoiceStatusPaid, Currency: "usd", Total: 4200}}},
		logger)

	host := hooks.NewRegistry(logger)
	helpdesk.NewPlugin(svc, "/modules/stripe", logger).Register(host)

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, web.NewHandler(store, store, svc, host, logger), "/modules/stripe")

	return &fixture{mux: mux, store: store, cipher: cipher}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values, csrfCookie string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if csrfCookie != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrfCookie})
	}
	return req
}

func TestStripeSettings_ShowsFormAndIssuesCSRFCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/mailboxes/1/stripe", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Not connected.")
	assert.Contains(t, body, `name="stripe_secret_key"`)
	assert.Contains(t, body, "/modules/stripe/css/stripe.css")

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Contains(t, body, `value="`+cookie.Value+`"`)
}

func TestStripeSettings_UnknownMailbox(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(httptest.NewRequest(http.MethodGet, "/mailboxes/99/stripe", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(httptest.NewRequest(http.MethodGet, "/mailboxes/abc/stripe", nil)).Code)
}

func TestSaveStripeSettings_RequiresCSRF(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"stripe_secret_key": {"sk_test_123"}}
	rec := f.do(postForm("/mailboxes/1/stripe", form, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	form.Set("csrf_token", "wrong")
	rec = f.do(postForm("/mailboxes/1/stripe", form, "right"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Empty(t, f.store.settings)
}

func TestSaveStripeSettings_StoresCiphertext(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"stripe_secret_key": {"sk_test_123"}, "csrf_token": {"tok"}}
	rec := f.do(postForm("/mailboxes/1/stripe", form, "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/mailboxes/1/stripe?saved=1", rec.Header().Get("Location"))

	stored := f.store.settings[1]
	require.NotNil(t, stored)
	assert.NotEqual(t, "sk_test_123", stored.EncryptedSecretKey)

	plain, err := f.cipher.Decrypt(stored.EncryptedSecretKey)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", plain)

	page := f.do(httptest.NewRequest(http.MethodGet, "/mailboxes/1/stripe?saved=1", nil)).Body.String()
	assert.Contains(t, page, "Stripe key saved.")
	assert.Contains(t, page, "Connected.")
	assert.NotContains(t, page, "sk_test_123")
}

func TestSaveStripeSettings_RejectsPublishableKey(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"stripe_secret_key": {"pk_test_123"}, "csrf_token": {"tok"}}
	rec := f.do(postForm("/mailboxes/1/stripe", form, "tok"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a Stripe secret key")
	assert.Empty(t, f.store.settings)
}

func TestDeleteStripeSettings(t *testing.T) {
	f := newFixture(t)
	f.store.settings[1] = &model.StripeSetting{MailboxID: 1, EncryptedSecretKey: "x"}

	rec := f.do(postForm("/mailboxes/1/stripe/delete", url.Values{"csrf_token": {"tok"}}, "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, f.store.settings)
}

func TestCustomerProfile_EmbedsStripeFragment(t *testing.T) {
	f := newFixture(t)
	f.store.customers["jane@example.com"] = &model.Customer{ID: 7, FirstName: "Jane", LastName: "Doe", Emails: []string{"jane@example.com"}}
	f.store.conversations["jane@example.com"] = &model.Conversation{ID: 3, MailboxID: 1, CustomerEmail: "jane@example.com"}

	encrypted, err := f.cipher.Encrypt("sk_test_123")
	require.NoError(t, err)
	f.store.settings[1] = &model.StripeSetting{MailboxID: 1, EncryptedSecretKey: encrypted}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/customers/jane@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "INV-42")
	assert.Contains(t, body, "42.00 USD")
	assert.Contains(t, body, "/modules/stripe/js/stripe.js")
}

func TestCustomerProfile_CorruptKeyStillRendersPage(t *testing.T) {
	f := newFixture(t)
	f.store.customers["jane@example.com"] = &model.Customer{ID: 7, FirstName: "Jane", Emails: []string{"jane@example.com"}}
	f.store.conversations["jane@example.com"] = &model.Conversation{ID: 3, MailboxID: 1}
	f.store.settings[1] = &model.StripeSetting{MailboxID: 1, EncryptedSecretKey: "corrupt"}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/customers/jane@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane")
	assert.Contains(t, rec.Body.String(), `data-state="credential_error"`)
}

func TestCustomerProfile_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(httptest.NewRequest(http.MethodGet, "/customers/nobody@example.com", nil)).Code)
}

func TestMailboxSettings_RendersMenuEntry(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/mailboxes/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/mailboxes/1/stripe"`)
}

func TestMailboxIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Support")
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/modules/stripe/css/stripe.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".stripe-customer")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/modules/stripe/js/stripe.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
