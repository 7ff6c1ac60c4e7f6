package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin_match/models"
	"vibin_match/store"
	"vibin_match/store/memory"
	"vibin_match/utils"
)

var epoch = time.Date(2025, 2, 14, 18, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []models.Change
}

func (r *recordingPublisher) Publish(_ context.Context, c models.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recordingPublisher) kinds() []models.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChangeKind
	for _, c := range r.changes {
		out = append(out, c.Kind)
	}
	return out
}

type fixture struct {
	store         *memory.Store
	clock         *utils.ManualClock
	pub           *recordingPublisher
	swipes        *SwipeService
	detector      *MatchDetector
	chat          *ChatService
	notifications *NotificationService
	feed          *FeedService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	st.PutProfile(models.UserProfile{ID: "alice", Name: "Alice", Photo: "https://cdn.example.com/alice.jpg"})
	st.PutProfile(models.UserProfile{ID: "bob", Name: "Bob"})
	st.PutProfile(models.UserProfile{ID: "carol", Name: "Carol"})
	st.PutProfile(models.UserProfile{ID: "ghost"})

	f := &fixture{store: st, clock: utils.NewManualClock(epoch), pub: &recordingPublisher{}}
	log := zerolog.Nop()
	photos := PassThroughResolver{}
	f.notifications = NewNotificationService(st.Profiles(), st.Notifications(), photos, f.pub, f.clock, time.Hour, log)
	f.detector = NewMatchDetector(st.Swipes(), st.Threads(), f.notifications, f.pub, f.clock, log)
	f.swipes = NewSwipeService(st.Swipes(), f.detector, f.clock, log)
	f.chat = NewChatService(st.Threads(), st.Profiles(), photos, f.pub, f.clock, log)
	f.feed = NewFeedService(st.Profiles(), st.Swipes(), photos, log)
	return f
}

func (f *fixture) match(t *testing.T, a, b string) *models.MatchThread {
	t.Helper()
	ctx := context.Background()
	_, err := f.swipes.Swipe(ctx, a, b, models.DirectionLike)
	require.NoError(t, err)
	res, err := f.swipes.Swipe(ctx, b, a, models.DirectionLike)
	require.NoError(t, err)
	require.True(t, res.Matched)
	return res.Thread
}

func TestMutualLikeCreatesOneThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.swipes.Swipe(ctx, "alice", "bob", models.DirectionLike)
	require.NoError(t, err)
	assert.False(t, first.Matched)
	assert.True(t, first.Notified)

	f.clock.Advance(time.Minute)
	second, err := f.swipes.Swipe(ctx, "bob", "alice", models.DirectionLike)
	require.NoError(t, err)
	require.True(t, second.Matched)

	thread := second.Thread
	assert.Equal(t, "alice_bob", thread.Key)
	assert.ElementsMatch(t, []string{"alice", "bob"}, thread.Participants[:])
	assert.Equal(t, models.MatchGreeting, thread.LastMessageText)
	assert.Equal(t, models.SystemSenderID, thread.LastMessageSenderID)
	assert.True(t, thread.IsRead)
	assert.Equal(t, thread.CreatedAt, thread.LastMessageAt)
	assert.Equal(t, 1, f.store.ThreadCount())
	assert.Contains(t, f.pub.kinds(), models.ChangeThread)
}

func TestSuperlikeMatchesLikeALike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.swipes.Swipe(ctx, "alice", "bob", models.DirectionSuperlike)
	require.NoError(t, err)
	require.NotNil(t, res.Notification)
	assert.Equal(t, models.DirectionSuperlike, res.Notification.Direction)

	res, err = f.swipes.Swipe(ctx, "bob", "alice", models.DirectionLike)
	require.NoError(t, err)
	assert.True(t, res.Matched)
}

func TestOneWayLikeNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.swipes.Swipe(ctx, "alice", "bob", models.DirectionLike)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, f.store.ThreadCount())
	assert.Equal(t, 1, f.store.SwipeCount())
	notes := f.store.NotificationsFor("bob")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationKindLikedYou, notes[0].Kind)
	assert.Equal(t, "alice", notes[0].SenderID)
	assert.Equal(t, "Alice", notes[0].SenderDisplayName)
	assert.Equal(t, "https://cdn.example.com/alice.jpg", notes[0].SenderPhoto)
	assert.Empty(t, f.store.NotificationsFor("alice"))
}

func TestLaterSwipeOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.swipes.RecordSwipe(ctx, "alice", "bob", models.DirectionLike))
	require.NoError(t, f.swipes.RecordSwipe(ctx, "alice", "bob", models.DirectionPass))

	d, err := f.store.Swipes().Get(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, models.DirectionPass, d.Direction)
	assert.Equal(t, 1, f.store.SwipeCount())
}

func TestPassNeverMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.swipes.Swipe(ctx, "bob", "alice", models.DirectionLike)
	require.NoError(t, err)
	res, err := f.swipes.Swipe(ctx, "alice", "bob", models.DirectionPass)
	require.NoError(t, err)

	assert.False(t, res.Matched)
	assert.False(t, res.Notified)
	assert.Equal(t, 0, f.store.ThreadCount())
	assert.Empty(t, f.store.NotificationsFor("bob"))
}

func TestSwipeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name          string
		actor, target string
		direction     models.Direction
	}{
		{"self swipe", "alice", "alice", models.DirectionLike},
		{"empty actor", "", "bob", models.DirectionLike},
		{"empty target", "alice", "", models.DirectionLike},
		{"unknown direction", "alice", "bob", models.Direction("maybe")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.swipes.Swipe(ctx, tc.actor, tc.target, tc.direction)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.store.SwipeCount())
}

type failingSwipes struct{ store.SwipeLedger }

func (failingSwipes) Upsert(context.Context, models.SwipeDecision) error {
	return errors.New("table unavailable")
}

func TestSwipeWriteFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewSwipeService(failingSwipes{f.store.Swipes()}, f.detector, f.clock, zerolog.Nop())

	_, err := svc.Swipe(context.Background(), "alice", "bob", models.DirectionLike)
	assert.ErrorIs(t, err, models.ErrWriteFailure)
}

func TestConcurrentMutualSwipesConverge(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		results := make([]*SwipeResult, 2)
		for n, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := f.swipes.Swipe(ctx, pair[0], pair[1], models.DirectionLike)
				assert.NoError(t, err)
				results[n] = res
			}()
		}
		wg.Wait()

		require.Equal(t, 1, f.store.ThreadCount())
		matched := 0
		for _, r := range results {
			if r != nil && r.Matched {
				matched++
				assert.Equal(t, "alice_bob", r.Thread.Key)
			}
		}
		assert.GreaterOrEqual(t, matched, 1)
	}
}

func TestEvaluateTwiceKeepsMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	f.clock.Advance(time.Second)
	_, err := f.chat.SendMessage(ctx, thread.Key, "alice", "hey")
	require.NoError(t, err)

	eval, err := f.detector.EvaluateAfterSwipe(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, eval.Matched)
	assert.False(t, eval.Created)
	assert.Equal(t, "hey", eval.Thread.LastMessageText)
	assert.Equal(t, 1, f.store.ThreadCount())
}

func TestSendMessageUpdatesSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	f.clock.Advance(time.Second)
	msg, err := f.chat.SendMessage(ctx, thread.Key, "bob", "  hi alice  ")
	require.NoError(t, err)
	assert.Equal(t, "hi alice", msg.Text)
	assert.NotEmpty(t, msg.ID)

	got, err := f.chat.GetThread(ctx, thread.Key)
	require.NoError(t, err)
	assert.Equal(t, "hi alice", got.LastMessageText)
	assert.Equal(t, "bob", got.LastMessageSenderID)
	assert.Equal(t, msg.SentAt, got.LastMessageAt)
	assert.False(t, got.IsRead)
	assert.True(t, got.UnreadFor("alice"))
	assert.False(t, got.UnreadFor("bob"))
	assert.Contains(t, f.pub.kinds(), models.ChangeMessage)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	_, err := f.chat.SendMessage(ctx, thread.Key, "alice", "   ")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.chat.SendMessage(ctx, thread.Key, "alice", strings.Repeat("é", models.MaxMessageLength+1))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.chat.SendMessage(ctx, thread.Key, "alice", strings.Repeat("é", models.MaxMessageLength))
	assert.NoError(t, err)

	_, err = f.chat.SendMessage(ctx, thread.Key, "carol", "let me in")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "senderId", verr.Field)

	_, err = f.chat.SendMessage(ctx, "bob_alice", "alice", "wrong order")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.chat.SendMessage(ctx, "alice_carol", "alice", "no match yet")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSentAtStrictlyIncreasesWithStoppedClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	prev := thread.LastMessageAt
	for i := 0; i < 5; i++ {
		msg, err := f.chat.SendMessage(ctx, thread.Key, "alice", "again")
		require.NoError(t, err)
		assert.True(t, msg.SentAt.After(prev))
		prev = msg.SentAt
	}

	// A clock that jumps back must not reorder the thread.
	f.clock.Set(epoch.Add(-time.Hour))
	msg, err := f.chat.SendMessage(ctx, thread.Key, "bob", "from the past")
	require.NoError(t, err)
	assert.True(t, msg.SentAt.After(prev))
}

func TestConcurrentSendsKeepOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")
	chat := NewChatService(f.store.Threads(), f.store.Profiles(), nil, f.pub, utils.SystemClock{}, zerolog.Nop())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
	)
	for _, sender := range []string{"alice", "bob", "alice", "bob"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := chat.SendMessage(ctx, thread.Key, sender, "ping")
				if err != nil {
					assert.ErrorIs(t, err, models.ErrWriteFailure)
					continue
				}
				mu.Lock()
				sent++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	msgs, err := chat.CollectMessages(ctx, thread.Key)
	require.NoError(t, err)
	require.Len(t, msgs, sent)
	require.NotEmpty(t, msgs)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i].SentAt.After(msgs[i-1].SentAt))
	}

	got, err := chat.GetThread(ctx, thread.Key)
	require.NoError(t, err)
	last := msgs[len(msgs)-1]
	assert.Equal(t, last.SentAt, got.LastMessageAt)
	assert.Equal(t, last.SenderID, got.LastMessageSenderID)
}

func TestOpenThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	opened, err := f.chat.OpenThread(ctx, thread.Key, "alice")
	require.NoError(t, err)
	assert.False(t, opened, "greeting is already read")

	_, err = f.chat.SendMessage(ctx, thread.Key, "bob", "hello?")
	require.NoError(t, err)

	opened, err = f.chat.OpenThread(ctx, thread.Key, "bob")
	require.NoError(t, err)
	assert.False(t, opened, "sender opening their own message changes nothing")

	opened, err = f.chat.OpenThread(ctx, thread.Key, "alice")
	require.NoError(t, err)
	assert.True(t, opened)

	opened, err = f.chat.OpenThread(ctx, thread.Key, "alice")
	require.NoError(t, err)
	assert.False(t, opened)

	got, err := f.chat.GetThread(ctx, thread.Key)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	_, err = f.chat.OpenThread(ctx, thread.Key, "carol")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.chat.OpenThread(ctx, "alice_carol", "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListMessagesIsRestartable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	for _, text := range []string{"one", "two", "three"} {
		f.clock.Advance(time.Second)
		_, err := f.chat.SendMessage(ctx, thread.Key, "alice", text)
		require.NoError(t, err)
	}

	seq := f.chat.ListMessages(ctx, thread.Key)
	collect := func() []string {
		var out []string
		for m, err := range seq {
			require.NoError(t, err)
			out = append(out, m.Text)
		}
		return out
	}
	assert.Equal(t, []string{"one", "two", "three"}, collect())
	assert.Equal(t, []string{"one", "two", "three"}, collect())

	for m, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "one", m.Text)
		break
	}

	_, err := f.chat.SendMessage(ctx, thread.Key, "bob", "four")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three", "four"}, collect())

	for _, err := range f.chat.ListMessages(ctx, "nonsense") {
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestThreadListOrderAndUnreadTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bobThread := f.match(t, "alice", "bob")
	f.clock.Advance(time.Minute)
	carolThread := f.match(t, "alice", "carol")
	f.clock.Advance(time.Minute)
	_, err := f.chat.SendMessage(ctx, bobThread.Key, "bob", "you there?")
	require.NoError(t, err)

	snap, err := f.chat.ThreadList(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, snap.Threads, 2)
	assert.Equal(t, bobThread.Key, snap.Threads[0].Key)
	assert.Equal(t, carolThread.Key, snap.Threads[1].Key)
	assert.True(t, snap.Threads[0].Unread)
	assert.False(t, snap.Threads[1].Unread)
	assert.Equal(t, 1, snap.TotalUnread)
	assert.Equal(t, "Bob", snap.Threads[0].Counterparty.Name)
	assert.Equal(t, models.MatchGreeting, snap.Threads[1].Preview)

	snap, err = f.chat.ThreadList(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalUnread)

	_, err = f.chat.OpenThread(ctx, bobThread.Key, "alice")
	require.NoError(t, err)
	snap, err = f.chat.ThreadList(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalUnread)
}

func TestNotificationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.notifications.NotifyLiked(ctx, "bob", "ghost", models.DirectionLike)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousSenderName, n.SenderDisplayName)
	assert.Equal(t, epoch.Add(time.Hour), n.ExpiresAt)

	f.clock.Advance(time.Second)
	_, err = f.notifications.NotifyLiked(ctx, "bob", "unknown-user", models.DirectionLike)
	require.NoError(t, err)

	pending, err := f.notifications.Pending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "unknown-user", pending[0].SenderID, "newest first")

	require.NoError(t, f.notifications.Consume(ctx, "bob", n.ID))
	require.NoError(t, f.notifications.Consume(ctx, "bob", n.ID))
	pending, err = f.notifications.Pending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	assert.ErrorIs(t, f.notifications.Consume(ctx, "bob", "missing"), models.ErrNotFound)
	assert.ErrorIs(t, f.notifications.Consume(ctx, "", n.ID), models.ErrValidation)

	f.clock.Advance(2 * time.Hour)
	pending, err = f.notifications.Pending(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNotifyLikedConcurrentRetriesStoreOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	got := make([]string, 20)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.notifications.NotifyLiked(ctx, "bob", "alice", models.DirectionLike)
			if assert.NoError(t, err) {
				got[i] = n.ID
			}
		}()
	}
	wg.Wait()

	notes := f.store.NotificationsFor("bob")
	require.Len(t, notes, 1)
	for _, id := range got {
		assert.Equal(t, notes[0].ID, id)
	}
	notifications := 0
	for _, kind := range f.pub.kinds() {
		if kind == models.ChangeNotification {
			notifications++
		}
	}
	assert.Equal(t, 1, notifications)
}

func TestNotifyLikedAgainAfterConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.notifications.NotifyLiked(ctx, "bob", "alice", models.DirectionLike)
	require.NoError(t, err)
	require.NoError(t, f.notifications.Consume(ctx, "bob", first.ID))

	f.clock.Advance(time.Minute)
	second, err := f.notifications.NotifyLiked(ctx, "bob", "alice", models.DirectionSuperlike)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	pending, err := f.notifications.Pending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, epoch.Add(time.Minute), pending[0].CreatedAt)
	assert.Equal(t, models.DirectionSuperlike, pending[0].Direction)

	assert.NotEqual(t, first.ID, NotificationID(models.NotificationKindLikedYou, "alice", "bob"))
}

func TestPendingIsEmptyNotNil(t *testing.T) {
	f := newFixture(t)
	pending, err := f.notifications.Pending(context.Background(), "carol")
	require.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Empty(t, pending)
}

func TestSentAtKeepsMicroseconds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.match(t, "alice", "bob")

	f.clock.Advance(1500 * time.Nanosecond)
	msg, err := f.chat.SendMessage(ctx, thread.Key, "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Microsecond), msg.SentAt)

	msg, err = f.chat.SendMessage(ctx, thread.Key, "bob", "hey")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(2*time.Microsecond), msg.SentAt)

	msgs, err := f.chat.CollectMessages(ctx, thread.Key)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, msg.SentAt, msgs[1].SentAt)
}

func TestChatWithSeparatorInUserIDs(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"underscore", "user_1", "zed"},
		{"hyphen", "a-b", "c"},
		{"uuid", "0192f5c4-7d1e-7c3a-9b1e-3f4a5b6c7d8e", "5b2e9c1a-0f3d-4e8b-a7c6-1d2e3f4a5b6c"},
		{"both underscores", "first_last", "__"},
		{"percent", "100%", "x_%5F"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.store.PutProfile(models.UserProfile{ID: tc.a, Name: "A"})
			f.store.PutProfile(models.UserProfile{ID: tc.b, Name: "B"})

			thread := f.match(t, tc.a, tc.b)
			assert.Equal(t, models.ThreadKey(tc.a, tc.b), thread.Key)

			f.clock.Advance(time.Second)
			msg, err := f.chat.SendMessage(ctx, thread.Key, tc.a, "hi")
			require.NoError(t, err)
			assert.Equal(t, tc.a, msg.SenderID)

			opened, err := f.chat.OpenThread(ctx, thread.Key, tc.b)
			require.NoError(t, err)
			assert.True(t, opened)

			_, err = f.chat.OpenThread(ctx, thread.Key, "carol")
			assert.ErrorIs(t, err, models.ErrValidation)

			snap, err := f.chat.ThreadList(ctx, tc.b)
			require.NoError(t, err)
			require.Len(t, snap.Threads, 1)
			assert.Equal(t, thread.Key, snap.Threads[0].Key)
			assert.Equal(t, "A", snap.Threads[0].Counterparty.Name)
		})
	}
}

func TestJoinedIDsDoNotShareAThread(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a_b", "c", "a", "b_c"} {
		f.store.PutProfile(models.UserProfile{ID: id, Name: id})
	}

	first := f.match(t, "a_b", "c")
	second := f.match(t, "a", "b_c")
	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, 2, f.store.ThreadCount())

	_, err := f.chat.SendMessage(context.Background(), first.Key, "a", "not mine")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBuildFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	feed, err := f.feed.BuildFeed(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, ids(feed))

	_, err = f.swipes.Swipe(ctx, "alice", "bob", models.DirectionLike)
	require.NoError(t, err)
	_, err = f.swipes.Swipe(ctx, "alice", "carol", models.DirectionPass)
	require.NoError(t, err)

	feed, err = f.feed.BuildFeed(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, feed)

	feed, err = f.feed.BuildFeed(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, ids(feed))

	_, err = f.feed.BuildFeed(ctx, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func ids(profiles []models.UserProfile) []string {
	out := []string{}
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}
