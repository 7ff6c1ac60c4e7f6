package models

import (
	"slices"
	"time"
)

// ChangeKind names the collection a change touched.
type ChangeKind string

const (
	ChangeProfile      ChangeKind = "profile"
	ChangeThread       ChangeKind = "thread"
	ChangeMessage      ChangeKind = "message"
	ChangeNotification ChangeKind = "notification"
)

// Change is published after a committed write so live queries can re-run.
// It carries identities only; subscribers always re-read the store.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	ThreadKey string     `json:"threadKey,omitempty"`
	UserIDs   []string   `json:"userIds,omitempty"`
	At        time.Time  `json:"at"`
}

// Affects reports whether userID is among the users the change concerns.
func (c Change) Affects(userID string) bool {
	return slices.Contains(c.UserIDs, userID)
}

// ThreadChange is the change emitted for a write to thread t.
func ThreadChange(kind ChangeKind, t MatchThread, at time.Time) Change {
	return Change{
		Kind:      kind,
		ThreadKey: t.Key,
		UserIDs:   []string{t.Participants[0], t.Participants[1]},
		At:        at,
	}
}
