package driven

import (
	"context"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

// StripeSettingStore defines the driven port for per-mailbox Stripe settings.
// Values cross this boundary encrypted; the adapter never sees plaintext keys.
type StripeSettingStore interface {
	// GetByMailbox returns the setting for the mailbox, or (nil, nil) when
	// the mailbox has no Stripe key configured.
	GetByMailbox(ctx context.Context, mailboxID int64) (*model.StripeSetting, error)

	// Upsert stores or replaces the encrypted secret key for the mailbox.
	Upsert(ctx context.Context, mailboxID int64, encryptedSecretKey string) error

	// Delete removes the mailbox's setting. Deleting a missing row is not an error.
	Delete(ctx context.Context, mailboxID int64) error
}
