package models

import "time"

// Notification is a short-lived signal for one recipient.
type Notification struct {
	RecipientID       string    `json:"recipientId" validate:"required"`
	ID                string    `json:"notificationId" validate:"required"`
	Kind              string    `json:"kind" validate:"required,oneof=liked_you"`
	SenderID          string    `json:"senderId" validate:"required"`
	SenderDisplayName string    `json:"senderDisplayName"`
	SenderPhoto       string    `json:"senderPhoto,omitempty"`
	Direction         Direction `json:"direction,omitempty"`
	CreatedAt         time.Time `json:"createdAt" validate:"required"`
	Consumed          bool      `json:"consumed"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// Expired reports whether the notification outlived its TTL at now.
func (n Notification) Expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}

// Pending is true while the recipient still has to see the notification.
func (n Notification) Pending(now time.Time) bool {
	return !n.Consumed && !n.Expired(now)
}
