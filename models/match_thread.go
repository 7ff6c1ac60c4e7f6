package models

import (
	"sort"
	"strings"
	"time"
)

// Ids are escaped inside a key so that a separator within an id cannot
// make two different pairs share one key. Ids without '%' or the
// separator appear verbatim.
var (
	keyIDEscaper   = strings.NewReplacer("%", "%25", ThreadKeySeparator, "%5F")
	keyIDUnescaper = strings.NewReplacer("%5F", ThreadKeySeparator, "%25", "%")
)

// ThreadKey derives the canonical thread identity of a pair.
// ThreadKey(a, b) == ThreadKey(b, a).
func ThreadKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return keyIDEscaper.Replace(ids[0]) + ThreadKeySeparator + keyIDEscaper.Replace(ids[1])
}

// ParseThreadKey splits a key back into its two sorted participant ids.
func ParseThreadKey(key string) (string, string, error) {
	if strings.Count(key, ThreadKeySeparator) != 1 {
		return "", "", NewValidationError("threadKey", "not a canonical pair key")
	}
	ea, eb, _ := strings.Cut(key, ThreadKeySeparator)
	a, b := keyIDUnescaper.Replace(ea), keyIDUnescaper.Replace(eb)
	if a == "" || b == "" || a == b || ThreadKey(a, b) != key {
		return "", "", NewValidationError("threadKey", "not a canonical pair key")
	}
	return a, b, nil
}

// MatchThread is the conversation record of one matched pair.
type MatchThread struct {
	Key                 string    `json:"threadKey" validate:"required"`
	Participants        [2]string `json:"participants" validate:"dive,required"`
	LastMessageText     string    `json:"lastMessageText"`
	LastMessageSenderID string    `json:"lastMessageSenderId" validate:"required"`
	LastMessageAt       time.Time `json:"lastMessageAt" validate:"required"`
	IsRead              bool      `json:"isRead"`
	CreatedAt           time.Time `json:"createdAt" validate:"required"`
}

// NewMatchThread builds the thread a fresh match starts with.
func NewMatchThread(actorID, targetID string, now time.Time) MatchThread {
	return MatchThread{
		Key:                 ThreadKey(actorID, targetID),
		Participants:        [2]string{actorID, targetID},
		LastMessageText:     MatchGreeting,
		LastMessageSenderID: SystemSenderID,
		LastMessageAt:       now,
		IsRead:              true,
		CreatedAt:           now,
	}
}

// HasParticipant reports whether userID is one of the two participants.
func (t MatchThread) HasParticipant(userID string) bool {
	return userID != "" && (t.Participants[0] == userID || t.Participants[1] == userID)
}

// Other returns the participant that is not viewerID.
func (t MatchThread) Other(viewerID string) string {
	if t.Participants[0] == viewerID {
		return t.Participants[1]
	}
	return t.Participants[0]
}

// UnreadFor is true when the latest message came from the other side and
// has not been seen.
func (t MatchThread) UnreadFor(viewerID string) bool {
	return !t.IsRead && t.LastMessageSenderID != viewerID
}

// Preview is the list text for the thread.
func (t MatchThread) Preview() string {
	if t.LastMessageText == "" {
		return EmptyThreadPreview
	}
	return t.LastMessageText
}

// ThreadView is one row of a viewer's thread list.
type ThreadView struct {
	MatchThread
	Unread       bool           `json:"unread"`
	Preview      string         `json:"preview"`
	Counterparty ProfileSummary `json:"counterparty"`
}

// ThreadListSnapshot is a viewer's thread list, newest activity first.
type ThreadListSnapshot struct {
	ViewerID    string       `json:"viewerId"`
	Threads     []ThreadView `json:"threads"`
	TotalUnread int          `json:"totalUnread"`
}

// NewThreadListSnapshot derives unread flags and the total from threads,
// which must already be ordered newest first.
func NewThreadListSnapshot(viewerID string, threads []MatchThread, profiles map[string]UserProfile) ThreadListSnapshot {
	snap := ThreadListSnapshot{ViewerID: viewerID, Threads: make([]ThreadView, 0, len(threads))}
	for _, t := range threads {
		other := t.Other(viewerID)
		summary := ProfileSummary{ID: other, Name: AnonymousSenderName}
		if p, ok := profiles[other]; ok {
			summary = p.Summary()
		}
		view := ThreadView{
			MatchThread:  t,
			Unread:       t.UnreadFor(viewerID),
			Preview:      t.Preview(),
			Counterparty: summary,
		}
		if view.Unread {
			snap.TotalUnread++
		}
		snap.Threads = append(snap.Threads, view)
	}
	return snap
}

// SortThreadsByActivity orders threads by LastMessageAt descending,
// breaking ties by key so the order is stable across queries.
func SortThreadsByActivity(threads []MatchThread) {
	sort.SliceStable(threads, func(i, j int) bool {
		if !threads[i].LastMessageAt.Equal(threads[j].LastMessageAt) {
			return threads[i].LastMessageAt.After(threads[j].LastMessageAt)
		}
		return threads[i].Key < threads[j].Key
	})
}
