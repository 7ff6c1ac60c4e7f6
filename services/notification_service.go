package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/store"
	"vibin_match/utils"
)

// DefaultNotificationTTL bounds how long an unconsumed notification lives.
const DefaultNotificationTTL = 7 * 24 * time.Hour

// NotificationService stores "liked you" notifications and serves them to
// their recipient.
type NotificationService struct {
	profiles      store.ProfileStore
	notifications store.NotificationStore
	photos        PhotoResolver
	publisher     ChangePublisher
	clock         utils.Clock
	ttl           time.Duration
	log           zerolog.Logger
}

func NewNotificationService(
	profiles store.ProfileStore,
	notifications store.NotificationStore,
	photos PhotoResolver,
	publisher ChangePublisher,
	clock utils.Clock,
	ttl time.Duration,
	log zerolog.Logger,
) *NotificationService {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationService{
		profiles:      profiles,
		notifications: notifications,
		photos:        photos,
		publisher:     publisher,
		clock:         clock,
		ttl:           ttl,
		log:           log.With().Str("component", "notifications").Logger(),
	}
}

// notificationNamespace seeds the name-based ids of notifications.
var notificationNamespace = uuid.MustParse("6f1d4a52-3c8e-4b7a-9e21-8d5c0f7a2b94")

// NotificationID is the id of the kind notification from senderID to
// recipientID. The pair always maps to the same id, so at most one of them
// is pending at a time.
func NotificationID(kind, recipientID, senderID string) string {
	return uuid.NewSHA1(notificationNamespace, []byte(kind+"\x00"+recipientID+"\x00"+senderID)).String()
}

// NotifyLiked tells recipientID that senderID liked them. While a
// notification from the same sender is pending it is returned instead of
// adding another, so a retried swipe does not notify twice.
func (s *NotificationService) NotifyLiked(ctx context.Context, recipientID, senderID string, direction models.Direction) (*models.Notification, error) {
	if recipientID == "" {
		return nil, models.NewValidationError("recipientId", "must not be empty")
	}
	if senderID == "" {
		return nil, models.NewValidationError("senderId", "must not be empty")
	}

	name, photo := models.AnonymousSenderName, ""
	sender, err := s.profiles.Get(ctx, senderID)
	switch {
	case err == nil:
		name = sender.DisplayName()
		photo = resolvePhoto(ctx, s.photos, sender.Photo)
	case errors.Is(err, models.ErrNotFound):
	default:
		s.log.Warn().Err(err).Str("senderId", senderID).Msg("sender profile unavailable")
	}

	now := s.clock.Now()
	n := models.Notification{
		RecipientID:       recipientID,
		ID:                NotificationID(models.NotificationKindLikedYou, recipientID, senderID),
		Kind:              models.NotificationKindLikedYou,
		SenderID:          senderID,
		SenderDisplayName: name,
		SenderPhoto:       photo,
		Direction:         direction,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.ttl),
	}
	written, err := s.notifications.PutIfNotPending(ctx, n, now)
	if err != nil {
		return nil, models.WriteFailure("store notification", err)
	}
	if !written {
		s.log.Debug().Str("recipientId", recipientID).Str("senderId", senderID).Msg("liked_you already pending")
		return s.pendingByID(ctx, recipientID, n)
	}

	s.log.Info().Str("recipientId", recipientID).Str("senderId", senderID).Msg("💌 liked_you notification stored")
	publishAll(ctx, s.publisher, s.log, models.Change{
		Kind:    models.ChangeNotification,
		UserIDs: []string{recipientID},
		At:      now,
	})
	return &n, nil
}

// pendingByID returns the stored pending copy of n, or n itself when the
// stored one was consumed in the meantime.
func (s *NotificationService) pendingByID(ctx context.Context, recipientID string, n models.Notification) (*models.Notification, error) {
	pending, err := s.notifications.ListPending(ctx, recipientID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	for _, p := range pending {
		if p.ID == n.ID {
			return &p, nil
		}
	}
	return &n, nil
}

// Pending returns recipientID's unconsumed, unexpired notifications newest first.
func (s *NotificationService) Pending(ctx context.Context, recipientID string) ([]models.Notification, error) {
	if recipientID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	out, err := s.notifications.ListPending(ctx, recipientID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	return out, nil
}

// Consume marks a notification as seen. Consuming twice is not an error.
func (s *NotificationService) Consume(ctx context.Context, recipientID, notificationID string) error {
	if recipientID == "" {
		return models.NewValidationError("userId", "must not be empty")
	}
	if notificationID == "" {
		return models.NewValidationError("notificationId", "must not be empty")
	}
	err := s.notifications.Consume(ctx, recipientID, notificationID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("notification %s: %w", notificationID, err)
	}
	if err != nil {
		return models.WriteFailure("consume notification", err)
	}
	publishAll(ctx, s.publisher, s.log, models.Change{
		Kind:    models.ChangeNotification,
		UserIDs: []string{recipientID},
		At:      s.clock.Now(),
	})
	return nil
}
