package models

import "time"

// Notification records that a subscription matched a task. The unique
// (subscription_id, task_id) pair in storage makes delivery at-most-once;
// SentAt stays nil until the immediate send or the digest flush picks
// the row up.
type Notification struct {
	ID             string
	SubscriptionID string
	TaskID         string
	UserID         string
	TaskTitle      string
	CreatedAt      time.Time
	SentAt         *time.Time
}
