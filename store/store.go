// Package store declares the persistence contracts of the matching core.
//
// Every write is safe to retry and safe to race: swipes are upserts keyed by
// the ordered pair, threads are created only if absent, message sends are
// conditional on the thread's last message time and opening a thread is a
// conditional flag flip.
package store

import (
	"context"
	"errors"
	"iter"
	"time"

	"vibin_match/models"
)

// ProfileStore is the read contract of the external profile collection.
type ProfileStore interface {
	// Get returns models.ErrNotFound when the profile does not exist.
	Get(ctx context.Context, id string) (*models.UserProfile, error)
	List(ctx context.Context) iter.Seq2[models.UserProfile, error]
}

// SwipeLedger holds one decision per (actor, target) pair.
type SwipeLedger interface {
	Upsert(ctx context.Context, decision models.SwipeDecision) error
	// Get returns (nil, nil) when actor never swiped on target.
	Get(ctx context.Context, actorID, targetID string) (*models.SwipeDecision, error)
	ListTargets(ctx context.Context, actorID string) (map[string]models.Direction, error)
}

// ErrStaleThread is returned by AppendMessage when the thread is missing or
// already holds a message at or after the new one. Callers re-read the
// thread and retry with a later timestamp.
var ErrStaleThread = errors.New("thread changed since it was read")

// ThreadStore holds match threads and their ordered messages.
type ThreadStore interface {
	// CreateIfAbsent stores thread unless its key exists. It returns the
	// stored thread and whether this call created it.
	CreateIfAbsent(ctx context.Context, thread models.MatchThread) (*models.MatchThread, bool, error)
	// Get returns models.ErrNotFound when no thread has the key.
	Get(ctx context.Context, key string) (*models.MatchThread, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.MatchThread, error)
	// AppendMessage writes msg and the thread summary (last message fields,
	// isRead=false) as one unit, on condition that msg.SentAt is after the
	// thread's lastMessageAt.
	AppendMessage(ctx context.Context, msg models.Message) error
	// MarkRead sets isRead when the thread is unread for viewerID and
	// reports whether it changed anything.
	MarkRead(ctx context.Context, key, viewerID string) (bool, error)
	// Messages pages through a thread's messages ascending by SentAt.
	Messages(ctx context.Context, key string) iter.Seq2[models.Message, error]
}

// NotificationStore holds per-recipient notifications.
type NotificationStore interface {
	Put(ctx context.Context, n models.Notification) error
	// PutIfNotPending writes n unless a notification with the same id is
	// still pending at now. It reports whether n was written.
	PutIfNotPending(ctx context.Context, n models.Notification, now time.Time) (bool, error)
	// ListPending returns unconsumed, unexpired notifications newest first.
	ListPending(ctx context.Context, recipientID string, now time.Time) ([]models.Notification, error)
	// Consume is idempotent; it returns models.ErrNotFound for unknown ids.
	Consume(ctx context.Context, recipientID, notificationID string) error
}

// Store bundles the collections used by the services.
type Store interface {
	Profiles() ProfileStore
	Swipes() SwipeLedger
	Threads() ThreadStore
	Notifications() NotificationStore
}
