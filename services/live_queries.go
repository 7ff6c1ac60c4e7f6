package services

import (
	"context"

	"vibin_match/models"
)

// LiveQueries answers the realtime hub's snapshot queries from the services.
type LiveQueries struct {
	FeedService         *FeedService
	ChatService         *ChatService
	NotificationService *NotificationService
}

func (q LiveQueries) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return q.FeedService.Profile(ctx, userID)
}

func (q LiveQueries) ThreadList(ctx context.Context, viewerID string) (models.ThreadListSnapshot, error) {
	return q.ChatService.ThreadList(ctx, viewerID)
}

func (q LiveQueries) Messages(ctx context.Context, threadKey string) ([]models.Message, error) {
	return q.ChatService.CollectMessages(ctx, threadKey)
}

func (q LiveQueries) Notifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return q.NotificationService.Pending(ctx, userID)
}
