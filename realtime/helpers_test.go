package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"vibin_match/models"
	"vibin_match/services"
	"vibin_match/store/memory"
	"vibin_match/utils"
)

const waitTimeout = 2 * time.Second

type env struct {
	store  *memory.Store
	feed   *LocalFeed
	hub    *Hub
	swipes *services.SwipeService
	chat   *services.ChatService
	notes  *services.NotificationService
	clock  *utils.ManualClock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	st.PutProfile(models.UserProfile{ID: "alice", Name: "Alice"})
	st.PutProfile(models.UserProfile{ID: "bob", Name: "Bob"})
	st.PutProfile(models.UserProfile{ID: "carol", Name: "Carol"})

	log := zerolog.Nop()
	feed := NewLocalFeed()
	clock := utils.NewManualClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	photos := services.PassThroughResolver{}

	notes := services.NewNotificationService(st.Profiles(), st.Notifications(), photos, feed, clock, time.Hour, log)
	detector := services.NewMatchDetector(st.Swipes(), st.Threads(), notes, feed, clock, log)
	swipes := services.NewSwipeService(st.Swipes(), detector, clock, log)
	chat := services.NewChatService(st.Threads(), st.Profiles(), photos, feed, clock, log)
	profiles := services.NewFeedService(st.Profiles(), st.Swipes(), photos, log)

	hub := NewHub(feed, services.LiveQueries{FeedService: profiles, ChatService: chat, NotificationService: notes},
		HubOptions{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond}, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		hub.Close()
	})
	require.Eventually(t, func() bool { return feed.Subscribers() == 1 }, waitTimeout, 5*time.Millisecond)

	return &env{store: st, feed: feed, hub: hub, swipes: swipes, chat: chat, notes: notes, clock: clock}
}

func (e *env) match(t *testing.T, a, b string) models.MatchThread {
	t.Helper()
	ctx := context.Background()
	_, err := e.swipes.Swipe(ctx, a, b, models.DirectionLike)
	require.NoError(t, err)
	res, err := e.swipes.Swipe(ctx, b, a, models.DirectionLike)
	require.NoError(t, err)
	require.True(t, res.Matched)
	return *res.Thread
}

func (e *env) send(t *testing.T, key, sender, text string) {
	t.Helper()
	e.clock.Advance(time.Second)
	_, err := e.chat.SendMessage(context.Background(), key, sender, text)
	require.NoError(t, err)
}

// next waits for the next snapshot of sub.
func next[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(waitTimeout):
		t.Fatalf("no snapshot from %s", sub.Name())
	}
	var zero T
	return zero
}

// waitFor reads snapshots until cond holds. Every snapshot seen is passed
// to each, if set.
func waitFor[T any](t *testing.T, sub *Subscription[T], cond func(T) bool, each func(T)) T {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case v, ok := <-sub.Updates():
			require.True(t, ok, "subscription closed")
			if each != nil {
				each(v)
			}
			if cond(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("condition not met on %s", sub.Name())
		}
	}
}

// nextEvent waits for the next session event named name, skipping others.
func nextEvent(t *testing.T, s *Session, name string) Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case e, ok := <-s.Events():
			require.True(t, ok, "session closed")
			if e.Name == name {
				return e
			}
		case <-deadline:
			t.Fatalf("no %s event", name)
		}
	}
}
