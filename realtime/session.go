package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vibin_match/models"
)

// Event names pushed to a connected client.
const (
	EventProfile       = "profile"
	EventThreads       = "threads"
	EventMessages      = "messages"
	EventNotifications = "notifications"
	EventNewMessage    = "newMessage"
)

// Event is one push to a client.
type Event struct {
	Name    string
	Payload any
}

// NewMessageNotice tells a viewer that a thread they are not looking at
// received a message from the other participant.
type NewMessageNotice struct {
	ThreadKey  string    `json:"threadKey"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Preview    string    `json:"preview"`
	At         time.Time `json:"at"`
}

// ThreadOpener marks a thread read for its viewer.
type ThreadOpener interface {
	OpenThread(ctx context.Context, threadKey, viewerID string) (bool, error)
}

const sessionEventBuffer = 32

// Session is the live state of one connected client: its subscriptions and
// the thread it is currently looking at.
type Session struct {
	hub    *Hub
	userID string
	opener ThreadOpener
	log    zerolog.Logger

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	active   string
	messages *Subscription[[]models.Message]
	base     []interface{ Close() }
	// seen holds the last message time observed per thread.
	seen   map[string]time.Time
	primed bool
}

// NewSession subscribes userID's profile, thread list and notifications.
// opener may be nil; when set, the active thread is marked read as soon as
// it turns unread for the viewer.
func NewSession(hub *Hub, userID string, opener ThreadOpener, log zerolog.Logger) (*Session, error) {
	s := &Session{
		hub:    hub,
		userID: userID,
		opener: opener,
		log:    log.With().Str("component", "session").Str("userId", userID).Logger(),
		events: make(chan Event, sessionEventBuffer),
		done:   make(chan struct{}),
		seen:   map[string]time.Time{},
	}

	profile, err := hub.SubscribeProfile(userID)
	if err != nil {
		return nil, err
	}
	threads, err := hub.SubscribeThreads(userID)
	if err != nil {
		profile.Close()
		return nil, err
	}
	notifications, err := hub.SubscribeNotifications(userID)
	if err != nil {
		profile.Close()
		threads.Close()
		return nil, err
	}
	s.base = []interface{ Close() }{profile, threads, notifications}

	forward(s, profile, EventProfile, nil)
	forward(s, threads, EventThreads, s.observeThreads)
	forward(s, notifications, EventNotifications, nil)
	return s, nil
}

// Events is closed once the session is closed and its forwarders stopped.
func (s *Session) Events() <-chan Event { return s.events }

// UserID is the viewer the session belongs to.
func (s *Session) UserID() string { return s.userID }

// ActiveThread returns the thread the client is looking at, if any.
func (s *Session) ActiveThread() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveThread switches the client's open thread: messages of threadKey
// are streamed and new-message notices for it are suppressed.
func (s *Session) SetActiveThread(ctx context.Context, threadKey string) error {
	sub, err := s.hub.SubscribeMessages(threadKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Close()
		return nil
	}
	previous := s.messages
	s.active = threadKey
	s.messages = sub
	// Registered under mu so Close cannot start waiting in between.
	forward(s, sub, EventMessages, nil)
	s.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	s.markRead(ctx, threadKey)
	return nil
}

// ClearActiveThread stops streaming the open thread.
func (s *Session) ClearActiveThread() {
	s.mu.Lock()
	previous := s.messages
	s.active = ""
	s.messages = nil
	s.mu.Unlock()
	if previous != nil {
		previous.Close()
	}
}

// Close ends every subscription of the session. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	messages := s.messages
	s.messages = nil
	s.active = ""
	close(s.done)
	s.mu.Unlock()

	for _, sub := range s.base {
		sub.Close()
	}
	if messages != nil {
		messages.Close()
	}
	s.wg.Wait()
	close(s.events)
}

func (s *Session) emit(e Event) bool {
	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}

// forward pumps a subscription into the session's event stream until the
// subscription or the session closes. observe may add events derived from
// the snapshot.
func forward[T any](s *Session, sub *Subscription[T], name string, observe func(T) []Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.done:
				return
			case snapshot, ok := <-sub.Updates():
				if !ok {
					return
				}
				if !s.emit(Event{Name: name, Payload: snapshot}) {
					return
				}
				if observe == nil {
					continue
				}
				for _, e := range observe(snapshot) {
					if !s.emit(e) {
						return
					}
				}
			}
		}
	}()
}

// observeThreads derives new-message notices from thread list transitions.
// The first snapshot only records the current state.
func (s *Session) observeThreads(snap models.ThreadListSnapshot) []Event {
	s.mu.Lock()
	active := s.active
	primed := s.primed
	s.primed = true

	var notices []Event
	markActive := false
	for _, t := range snap.Threads {
		last, known := s.seen[t.Key]
		s.seen[t.Key] = t.LastMessageAt
		if !t.Unread || t.LastMessageSenderID == models.SystemSenderID {
			continue
		}
		if t.Key == active {
			markActive = true
			continue
		}
		if !primed || (known && !t.LastMessageAt.After(last)) {
			continue
		}
		notices = append(notices, Event{Name: EventNewMessage, Payload: NewMessageNotice{
			ThreadKey:  t.Key,
			SenderID:   t.LastMessageSenderID,
			SenderName: t.Counterparty.Name,
			Preview:    t.Preview,
			At:         t.LastMessageAt,
		}})
	}
	s.mu.Unlock()

	if markActive {
		s.markRead(context.Background(), active)
	}
	return notices
}

func (s *Session) markRead(ctx context.Context, threadKey string) {
	if s.opener == nil {
		return
	}
	if _, err := s.opener.OpenThread(ctx, threadKey, s.userID); err != nil {
		s.log.Warn().Err(err).Str("threadKey", threadKey).Msg("could not mark active thread read")
	}
}
