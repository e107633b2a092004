package domain

import "time"

type CreatorStatus string

const (
	CreatorStatusActive    CreatorStatus = "ACTIVE"
	CreatorStatusSuspended CreatorStatus = "SUSPENDED"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
)

type Creator struct {
	ID int32 `json:"id"`
	// UserID is the owning account in the users id space. Creator ids and
	// user ids come from independent sequences, so anything addressed to
	// the person behind a creator (notifications, sessions) must use this
	// field, never ID.
	UserID                int32              `json:"user_id"`
	Slug                  string             `json:"slug"`
	Name                  string             `json:"name"`
	Email                 string             `json:"email"`
	Status                CreatorStatus      `json:"status"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status"`
	SubscriptionPeriodEnd *time.Time         `json:"subscription_period_end,omitempty"`
	CreatedOn             time.Time          `json:"created_on"`
}
