package driven

import (
	"context"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
)

// ConversationStore defines the driven port for reading helpdesk conversations.
type ConversationStore interface {
	// FirstByCustomerEmail returns the oldest conversation with the given
	// customer email, or (nil, nil) if there is none.
	FirstByCustomerEmail(ctx context.Context, email string) (*model.Conversation, error)
}
