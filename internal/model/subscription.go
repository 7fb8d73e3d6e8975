package model

import "time"

// SubscriptionType is the billing period of a subscription.
type SubscriptionType string

const (
	SubscriptionMonthly SubscriptionType = "monthly"
	SubscriptionYearly  SubscriptionType = "yearly"
)

// Subscription is a recurring cost accrued daily into expense transactions.
type Subscription struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Amount    int64            `json:"amount"` // cost per period, positive
	Type      SubscriptionType `json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
}
