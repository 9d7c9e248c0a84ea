package model

import "time"

// Mailbox is a support inbox configured in the helpdesk.
type Mailbox struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
