package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/store"
	"vibin_match/utils"
)

// MaxSendAttempts bounds how often SendMessage re-reads a thread after
// losing the ordering race to a concurrent sender.
const MaxSendAttempts = 5

// ChatService sends and reads messages of match threads and tracks their
// read state.
type ChatService struct {
	threads   store.ThreadStore
	profiles  store.ProfileStore
	photos    PhotoResolver
	publisher ChangePublisher
	clock     utils.Clock
	log       zerolog.Logger
}

func NewChatService(threads store.ThreadStore, profiles store.ProfileStore, photos PhotoResolver, publisher ChangePublisher, clock utils.Clock, log zerolog.Logger) *ChatService {
	return &ChatService{
		threads:   threads,
		profiles:  profiles,
		photos:    photos,
		publisher: publisher,
		clock:     clock,
		log:       log.With().Str("component", "chat").Logger(),
	}
}

// participantOf checks userID against the two ids encoded in threadKey.
func participantOf(threadKey, userID, field string) error {
	a, b, err := models.ParseThreadKey(threadKey)
	if err != nil {
		return err
	}
	if userID == "" {
		return models.NewValidationError(field, "must not be empty")
	}
	if userID != a && userID != b {
		return models.NewValidationError(field, "not a participant of the thread")
	}
	return nil
}

// GetThread returns the thread stored under key.
func (s *ChatService) GetThread(ctx context.Context, key string) (*models.MatchThread, error) {
	if _, _, err := models.ParseThreadKey(key); err != nil {
		return nil, err
	}
	thread, err := s.threads.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("thread %s: %w", key, err)
	}
	return thread, nil
}

// SendMessage appends text to the thread and updates its summary in one
// write. The message's SentAt is strictly after every earlier message of the
// thread; when a concurrent sender wins the race the thread is re-read and
// the send retried with a later timestamp.
func (s *ChatService) SendMessage(ctx context.Context, threadKey, senderID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("text", "must not be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, models.NewValidationError("text", fmt.Sprintf("must be at most %d characters", models.MaxMessageLength))
	}
	if err := participantOf(threadKey, senderID, "senderId"); err != nil {
		return nil, err
	}

	msg := models.Message{
		ID:        uuid.NewString(),
		ThreadKey: threadKey,
		SenderID:  senderID,
		Text:      text,
	}
	for attempt := 1; attempt <= MaxSendAttempts; attempt++ {
		thread, err := s.GetThread(ctx, threadKey)
		if err != nil {
			return nil, err
		}
		if !thread.HasParticipant(senderID) {
			return nil, models.NewValidationError("senderId", "not a participant of the thread")
		}

		msg.SentAt = models.NextSentAt(s.clock.Now(), thread.LastMessageAt)
		err = s.threads.AppendMessage(ctx, msg)
		if errors.Is(err, store.ErrStaleThread) {
			s.log.Debug().Str("threadKey", threadKey).Int("attempt", attempt).Msg("send lost the ordering race, retrying")
			continue
		}
		if err != nil {
			s.log.Error().Err(err).Str("threadKey", threadKey).Msg("❌ message not stored")
			return nil, models.WriteFailure("send message", err)
		}

		thread.LastMessageText = msg.Text
		thread.LastMessageSenderID = senderID
		thread.LastMessageAt = msg.SentAt
		thread.IsRead = false
		publishAll(ctx, s.publisher, s.log,
			models.ThreadChange(models.ChangeMessage, *thread, msg.SentAt),
			models.ThreadChange(models.ChangeThread, *thread, msg.SentAt),
		)
		return &msg, nil
	}
	return nil, models.WriteFailure("send message", fmt.Errorf("%w after %d attempts", store.ErrStaleThread, MaxSendAttempts))
}

// OpenThread marks the thread read for viewerID when its latest message
// came from the other participant. It reports whether anything changed.
func (s *ChatService) OpenThread(ctx context.Context, threadKey, viewerID string) (bool, error) {
	if err := participantOf(threadKey, viewerID, "viewerId"); err != nil {
		return false, err
	}
	changed, err := s.threads.MarkRead(ctx, threadKey, viewerID)
	if errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("thread %s: %w", threadKey, err)
	}
	if err != nil {
		return false, models.WriteFailure("open thread", err)
	}
	if changed {
		a, b, _ := models.ParseThreadKey(threadKey)
		now := s.clock.Now()
		publishAll(ctx, s.publisher, s.log, models.Change{
			Kind:      models.ChangeThread,
			ThreadKey: threadKey,
			UserIDs:   []string{a, b},
			At:        now,
		})
	}
	return changed, nil
}

// ListMessages yields the thread's messages oldest first. The sequence reads
// the store lazily and can be ranged over again to re-read from the start.
func (s *ChatService) ListMessages(ctx context.Context, threadKey string) iter.Seq2[models.Message, error] {
	if _, _, err := models.ParseThreadKey(threadKey); err != nil {
		return func(yield func(models.Message, error) bool) {
			yield(models.Message{}, err)
		}
	}
	return s.threads.Messages(ctx, threadKey)
}

// CollectMessages drains ListMessages into a slice.
func (s *ChatService) CollectMessages(ctx context.Context, threadKey string) ([]models.Message, error) {
	out := []models.Message{}
	for msg, err := range s.ListMessages(ctx, threadKey) {
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// ListThreads returns viewerID's threads, most recent activity first.
func (s *ChatService) ListThreads(ctx context.Context, viewerID string) ([]models.MatchThread, error) {
	if viewerID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	threads, err := s.threads.ListByParticipant(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

// ThreadList builds viewerID's thread list with unread flags, counterpart
// summaries and the derived unread total.
func (s *ChatService) ThreadList(ctx context.Context, viewerID string) (models.ThreadListSnapshot, error) {
	threads, err := s.ListThreads(ctx, viewerID)
	if err != nil {
		return models.ThreadListSnapshot{}, err
	}

	profiles := make(map[string]models.UserProfile, len(threads))
	for _, t := range threads {
		other := t.Other(viewerID)
		if _, ok := profiles[other]; ok {
			continue
		}
		p, err := s.profiles.Get(ctx, other)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				s.log.Warn().Err(err).Str("userId", other).Msg("counterpart profile unavailable")
			}
			continue
		}
		p.Photo = resolvePhoto(ctx, s.photos, p.Photo)
		profiles[other] = *p
	}
	return models.NewThreadListSnapshot(viewerID, threads, profiles), nil
}
