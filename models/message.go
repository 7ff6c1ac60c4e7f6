package models

import "time"

// Message is one immutable chat line inside a thread.
type Message struct {
	ID        string    `json:"messageId" validate:"required"`
	ThreadKey string    `json:"threadKey" validate:"required"`
	SenderID  string    `json:"senderId" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	SentAt    time.Time `json:"sentAt" validate:"required"`
}

// NextSentAt returns a microsecond-precision timestamp strictly after last,
// preferring now. Stores keep microseconds, so the returned value is exactly
// what a later read yields.
func NextSentAt(now, last time.Time) time.Time {
	if at := now.Truncate(time.Microsecond); at.After(last) {
		return at
	}
	return last.Truncate(time.Microsecond).Add(time.Microsecond)
}
