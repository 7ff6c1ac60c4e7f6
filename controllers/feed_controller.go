package controllers

import (
	"net/http"

	"github.com/rs/zerolog"

	"vibin_match/services"
)

// FeedController serves candidate profiles.
type FeedController struct {
	FeedService *services.FeedService
	log         zerolog.Logger
}

// NewFeedController initializes the feed controller
func NewFeedController(service *services.FeedService, log zerolog.Logger) *FeedController {
	return &FeedController{FeedService: service, log: log}
}

// HandleGetFeed returns the profiles userId has not swiped yet.
func (c *FeedController) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	profiles, err := c.FeedService.BuildFeed(r.Context(), userID)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, profiles)
}
