package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/store"
	"vibin_match/utils"
)

// LikeNotifier sends the one-way "liked you" signal.
type LikeNotifier interface {
	NotifyLiked(ctx context.Context, recipientID, senderID string, direction models.Direction) (*models.Notification, error)
}

// Evaluation is the outcome of checking a pair for mutual interest.
type Evaluation struct {
	Matched bool
	// Thread is the pair's thread when Matched.
	Thread *models.MatchThread
	// Created is true when this evaluation created Thread.
	Created      bool
	Notification *models.Notification
}

// MatchDetector decides, after a swipe, whether the pair matched.
type MatchDetector struct {
	swipes    store.SwipeLedger
	threads   store.ThreadStore
	notifier  LikeNotifier
	publisher ChangePublisher
	clock     utils.Clock
	log       zerolog.Logger
}

func NewMatchDetector(swipes store.SwipeLedger, threads store.ThreadStore, notifier LikeNotifier, publisher ChangePublisher, clock utils.Clock, log zerolog.Logger) *MatchDetector {
	return &MatchDetector{
		swipes:    swipes,
		threads:   threads,
		notifier:  notifier,
		publisher: publisher,
		clock:     clock,
		log:       log.With().Str("component", "match").Logger(),
	}
}

// EvaluateAfterSwipe checks actorID's current decision on targetID against
// the reciprocal one. A mutual positive pair gets its thread created if
// absent; a one-way positive decision notifies targetID. Running it twice, or
// from both sides at once, converges on the same single thread.
func (d *MatchDetector) EvaluateAfterSwipe(ctx context.Context, actorID, targetID string) (*Evaluation, error) {
	own, err := d.swipes.Get(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read swipe: %w", err)
	}
	if own == nil || !own.Direction.Positive() {
		return &Evaluation{}, nil
	}

	reciprocal, err := d.swipes.Get(ctx, targetID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read reciprocal swipe: %w", err)
	}

	if reciprocal == nil || !reciprocal.Direction.Positive() {
		eval := &Evaluation{}
		n, err := d.notifier.NotifyLiked(ctx, targetID, actorID, own.Direction)
		if err != nil {
			d.log.Warn().Err(err).Str("actorId", actorID).Str("targetId", targetID).Msg("⚠️ liked_you notification dropped")
			return eval, nil
		}
		eval.Notification = n
		return eval, nil
	}

	now := d.clock.Now()
	thread, created, err := d.threads.CreateIfAbsent(ctx, models.NewMatchThread(actorID, targetID, now))
	if err != nil {
		return nil, models.WriteFailure("create thread", err)
	}
	if created {
		d.log.Info().Str("threadKey", thread.Key).Msg("💞 match thread created")
		publishAll(ctx, d.publisher, d.log, models.ThreadChange(models.ChangeThread, *thread, now))
	}
	return &Evaluation{Matched: true, Thread: thread, Created: created}, nil
}
