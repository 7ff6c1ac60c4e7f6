// Package memory is an in-process store with the same conditional-write
// semantics as the DynamoDB store. It backs tests and the memory driver.
package memory

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"vibin_match/models"
	"vibin_match/store"
)

// Store implements store.Store in memory.
type Store struct {
	profiles      *Profiles
	swipes        *Swipes
	threads       *Threads
	notifications *Notifications
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		profiles:      &Profiles{byID: map[string]models.UserProfile{}},
		swipes:        &Swipes{byActor: map[string]map[string]models.SwipeDecision{}},
		threads:       &Threads{byKey: map[string]models.MatchThread{}, messages: map[string][]models.Message{}},
		notifications: &Notifications{byRecipient: map[string]map[string]models.Notification{}},
	}
}

func (s *Store) Profiles() store.ProfileStore           { return s.profiles }
func (s *Store) Swipes() store.SwipeLedger              { return s.swipes }
func (s *Store) Threads() store.ThreadStore             { return s.threads }
func (s *Store) Notifications() store.NotificationStore { return s.notifications }

// PutProfile seeds a profile. Profile writes belong to the external profile
// service; the memory store exposes this for tests and local runs.
func (s *Store) PutProfile(p models.UserProfile) {
	s.profiles.mu.Lock()
	defer s.profiles.mu.Unlock()
	s.profiles.byID[p.ID] = p
}

// Profiles is the memory profile collection.
type Profiles struct {
	mu   sync.RWMutex
	byID map[string]models.UserProfile
}

func (p *Profiles) Get(_ context.Context, id string) (*models.UserProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &profile, nil
}

func (p *Profiles) List(_ context.Context) iter.Seq2[models.UserProfile, error] {
	return func(yield func(models.UserProfile, error) bool) {
		p.mu.RLock()
		all := make([]models.UserProfile, 0, len(p.byID))
		for _, profile := range p.byID {
			all = append(all, profile)
		}
		p.mu.RUnlock()
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
		for _, profile := range all {
			if !yield(profile, nil) {
				return
			}
		}
	}
}

// Swipes is the memory swipe ledger.
type Swipes struct {
	mu      sync.RWMutex
	byActor map[string]map[string]models.SwipeDecision
}

func (s *Swipes) Upsert(_ context.Context, d models.SwipeDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	targets, ok := s.byActor[d.ActorID]
	if !ok {
		targets = map[string]models.SwipeDecision{}
		s.byActor[d.ActorID] = targets
	}
	targets[d.TargetID] = d
	return nil
}

func (s *Swipes) Get(_ context.Context, actorID, targetID string) (*models.SwipeDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byActor[actorID][targetID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *Swipes) ListTargets(_ context.Context, actorID string) (map[string]models.Direction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Direction, len(s.byActor[actorID]))
	for target, d := range s.byActor[actorID] {
		out[target] = d.Direction
	}
	return out, nil
}

// Count returns the number of stored decisions.
func (s *Swipes) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, targets := range s.byActor {
		n += len(targets)
	}
	return n
}

// Threads is the memory thread collection with nested messages.
type Threads struct {
	mu       sync.RWMutex
	byKey    map[string]models.MatchThread
	messages map[string][]models.Message
}

func (t *Threads) CreateIfAbsent(_ context.Context, thread models.MatchThread) (*models.MatchThread, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byKey[thread.Key]; ok {
		return &existing, false, nil
	}
	t.byKey[thread.Key] = thread
	return &thread, true, nil
}

func (t *Threads) Get(_ context.Context, key string) (*models.MatchThread, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	thread, ok := t.byKey[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &thread, nil
}

func (t *Threads) ListByParticipant(_ context.Context, userID string) ([]models.MatchThread, error) {
	t.mu.RLock()
	out := []models.MatchThread{}
	for _, thread := range t.byKey {
		if thread.HasParticipant(userID) {
			out = append(out, thread)
		}
	}
	t.mu.RUnlock()
	models.SortThreadsByActivity(out)
	return out, nil
}

func (t *Threads) AppendMessage(_ context.Context, msg models.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	thread, ok := t.byKey[msg.ThreadKey]
	if !ok || !msg.SentAt.After(thread.LastMessageAt) {
		return store.ErrStaleThread
	}
	thread.LastMessageText = msg.Text
	thread.LastMessageSenderID = msg.SenderID
	thread.LastMessageAt = msg.SentAt
	thread.IsRead = false
	t.byKey[msg.ThreadKey] = thread
	// SentAt is strictly increasing per thread, so appending keeps order.
	t.messages[msg.ThreadKey] = append(t.messages[msg.ThreadKey], msg)
	return nil
}

func (t *Threads) MarkRead(_ context.Context, key, viewerID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	thread, ok := t.byKey[key]
	if !ok {
		return false, models.ErrNotFound
	}
	if !thread.UnreadFor(viewerID) {
		return false, nil
	}
	thread.IsRead = true
	t.byKey[key] = thread
	return true, nil
}

// Messages snapshots the thread on every range, so each iteration restarts
// from the first message.
func (t *Threads) Messages(_ context.Context, key string) iter.Seq2[models.Message, error] {
	return func(yield func(models.Message, error) bool) {
		t.mu.RLock()
		msgs := append([]models.Message(nil), t.messages[key]...)
		t.mu.RUnlock()
		for _, m := range msgs {
			if !yield(m, nil) {
				return
			}
		}
	}
}

// Count returns the number of stored threads.
func (t *Threads) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byKey)
}

// Notifications is the memory notification collection.
type Notifications struct {
	mu          sync.RWMutex
	byRecipient map[string]map[string]models.Notification
}

func (n *Notifications) Put(_ context.Context, notification models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	inbox, ok := n.byRecipient[notification.RecipientID]
	if !ok {
		inbox = map[string]models.Notification{}
		n.byRecipient[notification.RecipientID] = inbox
	}
	inbox[notification.ID] = notification
	return nil
}

func (n *Notifications) PutIfNotPending(_ context.Context, notification models.Notification, now time.Time) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	inbox, ok := n.byRecipient[notification.RecipientID]
	if !ok {
		inbox = map[string]models.Notification{}
		n.byRecipient[notification.RecipientID] = inbox
	}
	if existing, ok := inbox[notification.ID]; ok && existing.Pending(now) {
		return false, nil
	}
	inbox[notification.ID] = notification
	return true, nil
}

func (n *Notifications) ListPending(_ context.Context, recipientID string, now time.Time) ([]models.Notification, error) {
	n.mu.RLock()
	out := []models.Notification{}
	for _, notification := range n.byRecipient[recipientID] {
		if notification.Pending(now) {
			out = append(out, notification)
		}
	}
	n.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (n *Notifications) Consume(_ context.Context, recipientID, notificationID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	notification, ok := n.byRecipient[recipientID][notificationID]
	if !ok {
		return models.ErrNotFound
	}
	notification.Consumed = true
	n.byRecipient[recipientID][notificationID] = notification
	return nil
}

// All returns every notification of recipientID, consumed or not.
func (n *Notifications) All(recipientID string) []models.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]models.Notification, 0, len(n.byRecipient[recipientID]))
	for _, notification := range n.byRecipient[recipientID] {
		out = append(out, notification)
	}
	return out
}

// SwipeCount returns the number of stored decisions.
func (s *Store) SwipeCount() int { return s.swipes.Count() }

// ThreadCount returns the number of stored threads.
func (s *Store) ThreadCount() int { return s.threads.Count() }

// NotificationsFor returns every notification of recipientID.
func (s *Store) NotificationsFor(recipientID string) []models.Notification {
	return s.notifications.All(recipientID)
}
