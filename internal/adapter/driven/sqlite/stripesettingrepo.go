package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StripeSettingStore = (*StripeSettingRepo)(nil)

// StripeSettingRepo is the SQLite implementation of the StripeSettingStore port.
// It stores the secret key exactly as handed in; encryption happens before
// the value reaches this layer.
type StripeSettingRepo struct {
	db *DB
}

// NewStripeSettingRepo creates a new StripeSettingRepo backed by the given DB.
func NewStripeSettingRepo(db *DB) *StripeSettingRepo {
	return &StripeSettingRepo{db: db}
}

// GetByMailbox returns the mailbox's Stripe setting, or (nil, nil) when no
// row exists.
func (r *StripeSettingRepo) GetByMailbox(ctx context.Context, mailboxID int64) (*model.StripeSetting, error) {
	const query = `
		SELECT id, mailbox_id, stripe_secret_key, created_at, updated_at
		FROM stripe_settings
		WHERE mailbox_id = ?
	`

	var (
		s         model.StripeSetting
		createdAt string
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, mailboxID).Scan(
		&s.ID, &s.MailboxID, &s.EncryptedSecretKey, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stripe setting for mailbox %d: %w", mailboxID, err)
	}

	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for mailbox %d: %w", mailboxID, err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for mailbox %d: %w", mailboxID, err)
	}

	return &s, nil
}

// Upsert stores or replaces the encrypted key for the mailbox. On conflict the
// key and updated_at are replaced; created_at is preserved.
func (r *StripeSettingRepo) Upsert(ctx context.Context, mailboxID int64, encryptedSecretKey string) error {
	const query = `
		INSERT INTO stripe_settings (mailbox_id, stripe_secret_key)
		VALUES (?, ?)
		ON CONFLICT(mailbox_id) DO UPDATE SET
			stripe_secret_key = excluded.stripe_secret_key,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.Writer.ExecContext(ctx, query, mailboxID, encryptedSecretKey); err != nil {
		return fmt.Errorf("upsert stripe setting for mailbox %d: %w", mailboxID, err)
	}
	return nil
}

// Delete removes the mailbox's Stripe setting.
func (r *StripeSettingRepo) Delete(ctx context.Context, mailboxID int64) error {
	const query = `DELETE FROM stripe_settings WHERE mailbox_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, mailboxID); err != nil {
		return fmt.Errorf("delete stripe setting for mailbox %d: %w", mailboxID, err)
	}
	return nil
}
