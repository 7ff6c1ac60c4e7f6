package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/services"
)

// UserProfileController serves profiles. Profiles are owned by the profile
// service, so only reads are exposed here.
type UserProfileController struct {
	FeedService *services.FeedService
	log         zerolog.Logger
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(service *services.FeedService, log zerolog.Logger) *UserProfileController {
	return &UserProfileController{FeedService: service, log: log}
}

// HandleGetProfile returns one profile with its photo resolved.
func (c *UserProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	profile, err := c.FeedService.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, profile)
}
