package services

import (
	"context"

	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/store"
	"vibin_match/utils"
)

// SwipeResult is what a client learns from one swipe.
type SwipeResult struct {
	Decision     models.SwipeDecision `json:"decision"`
	Matched      bool                 `json:"matched"`
	Thread       *models.MatchThread  `json:"thread,omitempty"`
	Notified     bool                 `json:"notified"`
	Notification *models.Notification `json:"-"`
}

// SwipeService records swipe decisions and runs match detection on them.
type SwipeService struct {
	swipes   store.SwipeLedger
	detector *MatchDetector
	clock    utils.Clock
	log      zerolog.Logger
}

func NewSwipeService(swipes store.SwipeLedger, detector *MatchDetector, clock utils.Clock, log zerolog.Logger) *SwipeService {
	return &SwipeService{
		swipes:   swipes,
		detector: detector,
		clock:    clock,
		log:      log.With().Str("component", "swipes").Logger(),
	}
}

func validateSwipe(actorID, targetID string, direction models.Direction) error {
	switch {
	case actorID == "":
		return models.NewValidationError("actorId", "must not be empty")
	case targetID == "":
		return models.NewValidationError("targetId", "must not be empty")
	case actorID == targetID:
		return models.NewValidationError("targetId", "cannot swipe on yourself")
	case !direction.Valid():
		return models.NewValidationError("direction", "must be one of pass, like, superlike")
	}
	return nil
}

// RecordSwipe upserts actorID's decision on targetID. Repeating it leaves a
// single decision holding the latest direction.
func (s *SwipeService) RecordSwipe(ctx context.Context, actorID, targetID string, direction models.Direction) error {
	_, err := s.record(ctx, actorID, targetID, direction)
	return err
}

func (s *SwipeService) record(ctx context.Context, actorID, targetID string, direction models.Direction) (models.SwipeDecision, error) {
	if err := validateSwipe(actorID, targetID, direction); err != nil {
		return models.SwipeDecision{}, err
	}
	decision := models.SwipeDecision{
		ActorID:   actorID,
		TargetID:  targetID,
		Direction: direction,
		DecidedAt: s.clock.Now(),
	}
	if err := s.swipes.Upsert(ctx, decision); err != nil {
		s.log.Error().Err(err).Str("actorId", actorID).Str("targetId", targetID).Msg("❌ swipe not recorded")
		return models.SwipeDecision{}, models.WriteFailure("record swipe", err)
	}
	s.log.Debug().Str("actorId", actorID).Str("targetId", targetID).Str("direction", string(direction)).Msg("swipe recorded")
	return decision, nil
}

// Swipe records the decision and, for a like or superlike, evaluates the
// pair. An error means the client should not advance past the card; the
// whole call is safe to retry.
func (s *SwipeService) Swipe(ctx context.Context, actorID, targetID string, direction models.Direction) (*SwipeResult, error) {
	decision, err := s.record(ctx, actorID, targetID, direction)
	if err != nil {
		return nil, err
	}
	result := &SwipeResult{Decision: decision}
	if !direction.Positive() {
		return result, nil
	}

	eval, err := s.detector.EvaluateAfterSwipe(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	result.Matched = eval.Matched
	result.Thread = eval.Thread
	result.Notification = eval.Notification
	result.Notified = eval.Notification != nil
	return result, nil
}
