package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

var (
	// ErrNotConfigured is returned when no Stripe key applies to an email:
	// no conversation, no setting row, or an empty decrypted key. No request
	// is sent to Stripe in that case.
	ErrNotConfigured = errors.New("stripe is not configured for this customer")

	// ErrStripeUnavailable wraps any failure of a Stripe call, including a key
	// rejected by Stripe. Calls are never retried.
	ErrStripeUnavailable = errors.New("stripe request failed")

	// ErrInvalidSecretKey is returned by SaveSecretKey for values that are not
	// Stripe secret or restricted keys.
	ErrInvalidSecretKey = errors.New("stripe secret key must start with sk_ or rk_")
)

// BillingState describes the outcome of one billing section.
type BillingState string

const (
	BillingLoaded        BillingState = "loaded"
	BillingNotConfigured BillingState = "not_configured"
	BillingUnavailable   BillingState = "unavailable"
)

// CustomerBilling is the combined invoice and subscription view of one email.
type CustomerBilling struct {
	Email              string
	MailboxID          int64
	InvoicesState      BillingState
	Invoices           []model.Invoice
	SubscriptionsState BillingState
	Subscriptions      []model.Subscription
}

// Configured reports whether a Stripe key was found for the email.
func (b *CustomerBilling) Configured() bool {
	return b.InvoicesState != BillingNotConfigured
}

// MailboxStripeStatus is the admin view of a mailbox's Stripe setting. It
// never carries the key itself.
type MailboxStripeStatus struct {
	MailboxID  int64
	Configured bool
	// Readable is false when the stored ciphertext no longer decrypts with
	// the current application key.
	Readable  bool
	UpdatedAt time.Time
}

// StripeService resolves the Stripe key of a customer's mailbox and fetches
// their billing data. The decrypted key only lives for the duration of one
// call and is never logged.
type StripeService struct {
	conversations driven.ConversationStore
	settings      driven.StripeSettingStore
	cipher        *secretbox.Cipher
	clients       driven.StripeClientFactory
	logger        *slog.Logger
}

// NewStripeService creates a new StripeService with the required dependencies.
func NewStripeService(
	conversations driven.ConversationStore,
	settings driven.StripeSettingStore,
	cipher *secretbox.Cipher,
	clients driven.StripeClientFactory,
	logger *slog.Logger,
) *StripeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeService{
		conversations: conversations,
		settings:      settings,
		cipher:        cipher,
		clients:       clients,
		logger:        logger,
	}
}

// EncryptedSecretKey returns the stored ciphertext for the mailbox of the
// first conversation with email, or "" when there is none.
func (s *StripeService) EncryptedSecretKey(ctx context.Context, email string) (string, error) {
	setting, err := s.settingFor(ctx, email)
	if err != nil || setting == nil {
		return "", err
	}
	return setting.EncryptedSecretKey, nil
}

// SecretKey returns the decrypted Stripe key for email, or "" when none is
// configured. A ciphertext that does not decrypt yields a *secretbox.CryptoError.
func (s *StripeService) SecretKey(ctx context.Context, email string) (string, error) {
	_, key, err := s.resolveKey(ctx, email)
	return key, err
}

// Invoices fetches the Stripe invoices billed to email.
func (s *StripeService) Invoices(ctx context.Context, email string) ([]model.Invoice, error) {
	mailboxID, key, err := s.resolveKey(ctx, email)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrNotConfigured
	}

	invoices, err := s.clients.New(key).FetchInvoices(ctx, email)
	if err != nil {
		return nil, s.unavailable(mailboxID, "invoices", err)
	}
	return invoices, nil
}

// Subscriptions fetches the Stripe subscriptions of email in every status.
func (s *StripeService) Subscriptions(ctx context.Context, email string) ([]model.Subscription, error) {
	mailboxID, key, err := s.resolveKey(ctx, email)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrNotConfigured
	}

	subscriptions, err := s.clients.New(key).FetchSubscriptions(ctx, email)
	if err != nil {
		return nil, s.unavailable(mailboxID, "subscriptions", err)
	}
	return subscriptions, nil
}

// CustomerBilling resolves the key once and runs both fetches sequentially.
// A Stripe failure only marks the affected section unavailable; an error is
// returned for store and decryption failures only.
func (s *StripeService) CustomerBilling(ctx context.Context, email string) (*CustomerBilling, error) {
	billing := &CustomerBilling{
		Email:              email,
		InvoicesState:      BillingNotConfigured,
		Invoices:           []model.Invoice{},
		SubscriptionsState: BillingNotConfigured,
		Subscriptions:      []model.Subscription{},
	}

	mailboxID, key, err := s.resolveKey(ctx, email)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return billing, nil
	}
	billing.MailboxID = mailboxID

	client := s.clients.New(key)

	invoices, err := client.FetchInvoices(ctx, email)
	if err != nil {
		s.logUnavailable(mailboxID, "invoices", err)
		billing.InvoicesState = BillingUnavailable
	} else {
		billing.InvoicesState = BillingLoaded
		billing.Invoices = invoices
	}

	subscriptions, err := client.FetchSubscriptions(ctx, email)
	if err != nil {
		s.logUnavailable(mailboxID, "subscriptions", err)
		billing.SubscriptionsState = BillingUnavailable
	} else {
		billing.SubscriptionsState = BillingLoaded
		billing.Subscriptions = subscriptions
	}

	return billing, nil
}

// SaveSecretKey validates, encrypts and stores the Stripe key of a mailbox,
// replacing any previous key.
func (s *StripeService) SaveSecretKey(ctx context.Context, mailboxID int64, secretKey string) error {
	secretKey = strings.TrimSpace(secretKey)
	if !validSecretKey(secretKey) {
		return ErrInvalidSecretKey
	}

	encrypted, err := s.cipher.Encrypt(secretKey)
	if err != nil {
		return err
	}

	if err := s.settings.Upsert(ctx, mailboxID, encrypted); err != nil {
		return fmt.Errorf("save stripe key for mailbox %d: %w", mailboxID, err)
	}

	s.logger.Info("stripe key saved", "mailbox_id", mailboxID)
	return nil
}

// DeleteSecretKey removes the Stripe key of a mailbox.
func (s *StripeService) DeleteSecretKey(ctx context.Context, mailboxID int64) error {
	if err := s.settings.Delete(ctx, mailboxID); err != nil {
		return fmt.Errorf("delete stripe key for mailbox %d: %w", mailboxID, err)
	}

	s.logger.Info("stripe key removed", "mailbox_id", mailboxID)
	return nil
}

// MailboxStatus reports whether the mailbox has a key and whether it still
// decrypts.
func (s *StripeService) MailboxStatus(ctx context.Context, mailboxID int64) (*MailboxStripeStatus, error) {
	setting, err := s.settings.GetByMailbox(ctx, mailboxID)
	if err != nil {
		return nil, fmt.Errorf("get stripe setting for mailbox %d: %w", mailboxID, err)
	}

	status := &MailboxStripeStatus{MailboxID: mailboxID}
	if setting == nil {
		return status, nil
	}

	status.Configured = true
	status.UpdatedAt = setting.UpdatedAt
	_, err = s.cipher.Decrypt(setting.EncryptedSecretKey)
	status.Readable = err == nil

	return status, nil
}

// settingFor follows email → first conversation → mailbox → setting.
func (s *StripeService) settingFor(ctx context.Context, email string) (*model.StripeSetting, error) {
	if email == "" {
		return nil, nil
	}

	conversation, err := s.conversations.FirstByCustomerEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}
	if conversation == nil || conversation.MailboxID == 0 {
		return nil, nil
	}

	setting, err := s.settings.GetByMailbox(ctx, conversation.MailboxID)
	if err != nil {
		return nil, fmt.Errorf("get stripe setting for mailbox %d: %w", conversation.MailboxID, err)
	}
	return setting, nil
}

// resolveKey returns the mailbox id and plaintext key for email. An empty key
// with a nil error means not configured.
func (s *StripeService) resolveKey(ctx context.Context, email string) (int64, string, error) {
	setting, err := s.settingFor(ctx, email)
	if err != nil || setting == nil || setting.EncryptedSecretKey == "" {
		return 0, "", err
	}

	key, err := s.cipher.Decrypt(setting.EncryptedSecretKey)
	if err != nil {
		return setting.MailboxID, "", fmt.Errorf("stripe key of mailbox %d: %w", setting.MailboxID, err)
	}
	return setting.MailboxID, key, nil
}

func (s *StripeService) unavailable(mailboxID int64, operation string, err error) error {
	s.logUnavailable(mailboxID, operation, err)
	return fmt.Errorf("%w: %w", ErrStripeUnavailable, err)
}

func (s *StripeService) logUnavailable(mailboxID int64, operation string, err error) {
	s.logger.Warn("stripe request failed",
		"mailbox_id", mailboxID,
		"operation", operation,
		"error", err,
	)
}

func validSecretKey(key string) bool {
	if !strings.HasPrefix(key, "sk_") && !strings.HasPrefix(key, "rk_") {
		return false
	}
	return len(key) > len("sk_") && !strings.ContainsAny(key, " \t\r\n")
}
