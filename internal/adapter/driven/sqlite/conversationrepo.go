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
var _ driven.ConversationStore = (*ConversationRepo)(nil)

// ConversationRepo is the SQLite implementation of the ConversationStore port.
type ConversationRepo struct {
	db *DB
}

// NewConversationRepo creates a new ConversationRepo backed by the given DB.
func NewConversationRepo(db *DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// FirstByCustomerEmail returns the oldest conversation for the email
// (case-insensitive), or (nil, nil) when the customer has none.
func (r *ConversationRepo) FirstByCustomerEmail(ctx context.Context, email string) (*model.Conversation, error) {
	const query = `
		SELECT id, mailbox_id, customer_email, subject, created_at
		FROM conversations
		WHERE customer_email = ?
		ORDER BY id
		LIMIT 1
	`

	var (
		c         model.Conversation
		createdAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, email).Scan(
		&c.ID, &c.MailboxID, &c.CustomerEmail, &c.Subject, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get first conversation for customer email: %w", err)
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for conversation %d: %w", c.ID, err)
	}

	return &c, nil
}
