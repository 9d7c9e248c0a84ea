package driven

import (
	"context"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

// MailboxStore defines the driven port for reading mailboxes.
// Get returns (nil, nil) if the mailbox does not exist.
type MailboxStore interface {
	Get(ctx context.Context, id int64) (*model.Mailbox, error)
	ListAll(ctx context.Context) ([]model.Mailbox, error)
}
