package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/store"
)

// FeedService lists the profiles a user can still swipe on.
type FeedService struct {
	profiles store.ProfileStore
	swipes   store.SwipeLedger
	photos   PhotoResolver
	log      zerolog.Logger
}

func NewFeedService(profiles store.ProfileStore, swipes store.SwipeLedger, photos PhotoResolver, log zerolog.Logger) *FeedService {
	return &FeedService{
		profiles: profiles,
		swipes:   swipes,
		photos:   photos,
		log:      log.With().Str("component", "feed").Logger(),
	}
}

// BuildFeed returns every named profile except viewerID's own and the ones
// viewerID already swiped on. Malformed profile records are skipped.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID string) ([]models.UserProfile, error) {
	if viewerID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	swiped, err := s.swipes.ListTargets(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read swipes: %w", err)
	}

	feed := []models.UserProfile{}
	for p, err := range s.profiles.List(ctx) {
		if errors.Is(err, models.ErrMalformedRecord) {
			s.log.Warn().Err(err).Msg("skipping malformed profile")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		if p.ID == viewerID || !p.Eligible() {
			continue
		}
		if _, done := swiped[p.ID]; done {
			continue
		}
		p.Photo = resolvePhoto(ctx, s.photos, p.Photo)
		feed = append(feed, p)
	}
	s.log.Debug().Str("userId", viewerID).Int("profiles", len(feed)).Msg("feed built")
	return feed, nil
}

// Profile returns a single profile with its photo resolved.
func (s *FeedService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, models.NewValidationError("userId", "must not be empty")
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", userID, err)
	}
	p.Photo = resolvePhoto(ctx, s.photos, p.Photo)
	return p, nil
}
