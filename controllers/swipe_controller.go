package controllers

import (
	"net/http"

	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/services"
)

type swipeRequest struct {
	ActorID   string `json:"actorId" validate:"required"`
	TargetID  string `json:"targetId" validate:"required,nefield=ActorID"`
	Direction string `json:"direction" validate:"required"`
}

// SwipeController handles swipe decisions.
type SwipeController struct {
	SwipeService *services.SwipeService
	log          zerolog.Logger
}

// NewSwipeController initializes the swipe controller
func NewSwipeController(service *services.SwipeService, log zerolog.Logger) *SwipeController {
	return &SwipeController{SwipeService: service, log: log}
}

// HandleSwipe records a decision and reports whether it produced a match.
func (c *SwipeController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, err)
		return
	}
	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, c.log, err)
		return
	}

	result, err := c.SwipeService.Swipe(r.Context(), req.ActorID, req.TargetID, direction)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	if result.Matched {
		c.log.Info().Str("threadKey", result.Thread.Key).Msg("✅ Match")
	}
	WriteJSONResponse(w, http.StatusOK, result)
}
