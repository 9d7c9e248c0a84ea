package model

import "time"

// Conversation is a helpdesk thread. Only the fields needed to resolve a
// customer email to its owning mailbox are modelled.
type Conversation struct {
	ID            int64
	MailboxID     int64
	CustomerEmail string
	Subject       string
	CreatedAt     time.Time
}
