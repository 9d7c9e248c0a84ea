package model

import "time"

// StripeSetting holds the per-mailbox Stripe configuration. EncryptedSecretKey
// is the ciphertext produced by secretbox; the plaintext key is never stored.
type StripeSetting struct {
	ID                 int64
	MailboxID          int64
	EncryptedSecretKey string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
