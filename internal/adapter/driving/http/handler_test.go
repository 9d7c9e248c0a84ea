package httphandler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/http"
	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

// --- Mock implementations ---

type mockStripeReader struct {
	invoices      []model.Invoice
	subscriptions []model.Subscription
	err           error
	emails        []string
}

func (m *mockStripeReader) Invoices(_ context.Context, email string) ([]model.Invoice, error) {
	m.emails = append(m.emails, email)
	return m.invoices, m.err
}

func (m *mockStripeReader) Subscriptions(_ context.Context, email string) ([]model.Subscription, error) {
	m.emails = append(m.emails, email)
	return m.subscriptions, m.err
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func setupMux(reader httphandler.StripeReader, pinger httphandler.Pinger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httphandler.NewServeMux(httphandler.NewHandler(reader, pinger, logger), logger)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestListInvoices(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		reader     *mockStripeReader
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "loaded",
			reader: &mockStripeReader{invoices: []model.Invoice{{
				ID: "in_1", Number: "A-1", Status: model.InvoiceStatusOpen, Currency: "usd",
				Total: 1999, AmountDue: 1999, DueAt: due,
				Lines: []model.InvoiceLine{{ID: "il_1", Description: "Seat", Amount: 1999, Quantity: 1}},
			}}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp httphandler.InvoicesResponse
				decodeJSON(t, rec, &resp)
				assert.Equal(t, "loaded", resp.Status)
				require.Len(t, resp.Invoices, 1)
				assert.Equal(t, "A-1", resp.Invoices[0].Number)
				assert.Equal(t, int64(1999), resp.Invoices[0].Total)
				require.NotNil(t, resp.Invoices[0].DueAt)
				assert.Equal(t, "2026-04-01T00:00:00Z", *resp.Invoices[0].DueAt)
				assert.Len(t, resp.Invoices[0].Lines, 1)
			},
		},
		{
			name:       "not configured",
			reader:     &mockStripeReader{err: application.ErrNotConfigured},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"status":"not_configured","invoices":[]}`, rec.Body.String())
			},
		},
		{
			name:       "stripe unavailable",
			reader:     &mockStripeReader{err: errors.Join(application.ErrStripeUnavailable, errors.New("timeout"))},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "crypto error",
			reader:     &mockStripeReader{err: &secretbox.CryptoError{Op: "decrypt", Err: errors.New("bad tag")}},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "cannot be decrypted")
			},
		},
		{
			name:       "store error",
			reader:     &mockStripeReader{err: errors.New("disk I/O error")},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(tt.reader, okPinger{})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/jane@example.com/invoices", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, []string{"jane@example.com"}, tt.reader.emails)
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func TestListSubscriptions(t *testing.T) {
	reader := &mockStripeReader{subscriptions: []model.Subscription{{
		ID: "sub_1", Status: model.SubscriptionStatusActive, Currency: "eur",
		Items: []model.SubscriptionItem{{ID: "si_1", ProductName: "Pro", UnitAmount: 900, Quantity: 2, Interval: "month"}},
	}}}

	rec := httptest.NewRecorder()
	setupMux(reader, okPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/jane@example.com/subscriptions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.SubscriptionsResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "loaded", resp.Status)
	require.Len(t, resp.Subscriptions, 1)
	assert.Equal(t, "Pro", resp.Subscriptions[0].Items[0].ProductName)
	assert.Nil(t, resp.Subscriptions[0].Items[0].CurrentPeriodEnd)
}

func TestListSubscriptions_NotConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	setupMux(&mockStripeReader{err: application.ErrNotConfigured}, okPinger{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/x@example.com/subscriptions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"not_configured","subscriptions":[]}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer conn.Close()
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		setupMux(&mockStripeReader{}, &sqlite.DB{Writer: conn, Reader: conn}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp httphandler.HealthResponse
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "ok", resp.Status)
		assert.NotEmpty(t, resp.Time)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database down", func(t *testing.T) {
		conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer conn.Close()
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		rec := httptest.NewRecorder()
		setupMux(&mockStripeReader{}, &sqlite.DB{Writer: conn, Reader: conn}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestID(t *testing.T) {
	mux := setupMux(&mockStripeReader{}, okPinger{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	httphandler.Wrap(mux, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
