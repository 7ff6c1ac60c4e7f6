package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vibin_match/models"
)

// Queries produce the full snapshots live queries deliver.
type Queries interface {
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
	ThreadList(ctx context.Context, viewerID string) (models.ThreadListSnapshot, error)
	Messages(ctx context.Context, threadKey string) ([]models.Message, error)
	Notifications(ctx context.Context, userID string) ([]models.Notification, error)
}

// HubOptions tune reconnection to the change feed.
type HubOptions struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	QueryTimeout   time.Duration
}

func (o HubOptions) withDefaults() HubOptions {
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 200 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 15 * time.Second
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 5 * time.Second
	}
	return o
}

// liveQuery is the hub's view of a subscription of any snapshot type.
type liveQuery interface {
	relevant(change models.Change) bool
	kick()
	close()
}

// Hub owns every live query of this process and re-runs the ones a change
// concerns.
type Hub struct {
	feed    ChangeFeed
	queries Queries
	opts    HubOptions
	log     zerolog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]liveQuery
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(feed ChangeFeed, queries Queries, opts HubOptions, log zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		feed:    feed,
		queries: queries,
		opts:    opts.withDefaults(),
		log:     log.With().Str("component", "hub").Logger(),
		subs:    map[uint64]liveQuery{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run consumes the change feed until ctx ends. Whenever the feed stream
// fails it reconnects with exponential backoff and then refreshes every live
// query, since changes may have been missed while disconnected. Snapshots
// already delivered stay valid in the meantime.
func (h *Hub) Run(ctx context.Context) {
	backoff := h.opts.InitialBackoff
	connectedBefore := false
	for {
		stream, err := h.feed.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.log.Warn().Err(err).Dur("retryIn", backoff).Msg("⚠️ change feed unavailable")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, h.opts.MaxBackoff)
			continue
		}

		backoff = h.opts.InitialBackoff
		if connectedBefore {
			h.log.Info().Msg("🔄 change feed reconnected, refreshing live queries")
			h.refreshAll()
		}
		connectedBefore = true

		for change := range stream {
			h.dispatch(change)
		}
		if ctx.Err() != nil {
			return
		}
		h.log.Warn().Err(models.ErrSubscriptionFailure).Msg("change feed stream ended")
		if !sleep(ctx, backoff) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (h *Hub) dispatch(change models.Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, q := range h.subs {
		if q.relevant(change) {
			q.kick()
		}
	}
}

func (h *Hub) refreshAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, q := range h.subs {
		q.kick()
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	subs := h.subs
	h.subs = map[uint64]liveQuery{}
	h.mu.Unlock()
	for _, q := range subs {
		q.close()
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// SubscribeProfile follows one user's profile.
func (h *Hub) SubscribeProfile(userID string) (*Subscription[*models.UserProfile], error) {
	if userID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	return subscribe(h, "profile:"+userID,
		func(c models.Change) bool { return c.Kind == models.ChangeProfile && c.Affects(userID) },
		func(ctx context.Context) (*models.UserProfile, error) { return h.queries.Profile(ctx, userID) },
	), nil
}

// SubscribeThreads follows viewerID's thread list.
func (h *Hub) SubscribeThreads(viewerID string) (*Subscription[models.ThreadListSnapshot], error) {
	if viewerID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	return subscribe(h, "threads:"+viewerID,
		func(c models.Change) bool {
			return (c.Kind == models.ChangeThread || c.Kind == models.ChangeMessage) && c.Affects(viewerID)
		},
		func(ctx context.Context) (models.ThreadListSnapshot, error) { return h.queries.ThreadList(ctx, viewerID) },
	), nil
}

// SubscribeMessages follows the ordered messages of one thread.
func (h *Hub) SubscribeMessages(threadKey string) (*Subscription[[]models.Message], error) {
	if _, _, err := models.ParseThreadKey(threadKey); err != nil {
		return nil, err
	}
	return subscribe(h, "messages:"+threadKey,
		func(c models.Change) bool { return c.Kind == models.ChangeMessage && c.ThreadKey == threadKey },
		func(ctx context.Context) ([]models.Message, error) { return h.queries.Messages(ctx, threadKey) },
	), nil
}

// SubscribeNotifications follows userID's pending notifications.
func (h *Hub) SubscribeNotifications(userID string) (*Subscription[[]models.Notification], error) {
	if userID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	return subscribe(h, "notifications:"+userID,
		func(c models.Change) bool { return c.Kind == models.ChangeNotification && c.Affects(userID) },
		func(ctx context.Context) ([]models.Notification, error) { return h.queries.Notifications(ctx, userID) },
	), nil
}

func subscribe[T any](h *Hub, name string, match func(models.Change) bool, query func(context.Context) (T, error)) *Subscription[T] {
	s := &Subscription[T]{
		hub:     h,
		name:    name,
		match:   match,
		query:   query,
		updates: make(chan T, 1),
		kicks:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	s.id = h.nextID
	h.nextID++
	h.subs[s.id] = s
	h.mu.Unlock()

	s.kick()
	go s.loop(h.ctx)
	return s
}

// Subscription delivers full snapshots of one live query: the first right
// after subscribing, then one after every relevant change. Only the newest
// undelivered snapshot is kept, so a slow reader never works through a
// backlog of stale ones.
type Subscription[T any] struct {
	hub   *Hub
	id    uint64
	name  string
	match func(models.Change) bool
	query func(context.Context) (T, error)

	mu      sync.Mutex
	closed  bool
	updates chan T
	kicks   chan struct{}
	done    chan struct{}
}

// Updates is closed by Close.
func (s *Subscription[T]) Updates() <-chan T { return s.updates }

// Name identifies the live query, e.g. "threads:alice".
func (s *Subscription[T]) Name() string { return s.name }

func (s *Subscription[T]) relevant(c models.Change) bool { return s.match(c) }

func (s *Subscription[T]) kick() {
	select {
	case s.kicks <- struct{}{}:
	default:
	}
}

// loop runs the query on every kick. Until a first snapshot is delivered a
// failed query is retried with backoff; after that the previous snapshot
// stays the reader's view until the next change.
func (s *Subscription[T]) loop(ctx context.Context) {
	delivered := false
	backoff := s.hub.opts.InitialBackoff
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.kicks:
		}

		qctx, cancel := context.WithTimeout(ctx, s.hub.opts.QueryTimeout)
		snapshot, err := s.query(qctx)
		cancel()
		if err != nil {
			level := s.hub.log.Warn()
			if errors.Is(err, context.Canceled) {
				level = s.hub.log.Debug()
			}
			level.Err(err).Str("query", s.name).Bool("retry", !delivered).Msg("live query failed")
			if !delivered {
				if !s.wait(ctx, backoff) {
					return
				}
				backoff = min(backoff*2, s.hub.opts.MaxBackoff)
				s.kick()
			}
			continue
		}
		s.deliver(snapshot)
		delivered = true
	}
}

// wait sleeps for d unless the subscription or ctx ends first.
func (s *Subscription[T]) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Subscription[T]) deliver(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- v
}

// Close unsubscribes. Nothing is delivered after Close returns and pending
// snapshots are discarded. Close is idempotent.
func (s *Subscription[T]) Close() {
	s.close()
	s.hub.remove(s.id)
}

func (s *Subscription[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	select {
	case <-s.updates:
	default:
	}
	close(s.updates)
}
