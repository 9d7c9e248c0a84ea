package model

import "time"

// SubscriptionStatus mirrors Stripe's subscription status values.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

// Subscription is a read-only view of a Stripe subscription.
type Subscription struct {
	ID                string
	Status            SubscriptionStatus
	Currency          string
	Description       string
	CancelAtPeriodEnd bool
	CreatedAt         time.Time
	Items             []SubscriptionItem
}

// IsLive reports whether the subscription is still billing the customer.
func (s Subscription) IsLive() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return true
	}
	return false
}

// SubscriptionItem is one priced product within a subscription.
type SubscriptionItem struct {
	ID               string
	ProductID        string
	ProductName      string
	PriceNickname    string
	UnitAmount       int64
	Quantity         int64
	Interval         string // "day", "week", "month" or "year"; empty for one-off prices.
	CurrentPeriodEnd time.Time
}
