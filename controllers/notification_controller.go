package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/services"
)

type consumeRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// NotificationController serves pending notifications.
type NotificationController struct {
	NotificationService *services.NotificationService
	log                 zerolog.Logger
}

// NewNotificationController initializes the notification controller
func NewNotificationController(service *services.NotificationService, log zerolog.Logger) *NotificationController {
	return &NotificationController{NotificationService: service, log: log}
}

// HandleListPending returns userId's pending notifications, newest first.
func (c *NotificationController) HandleListPending(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	pending, err := c.NotificationService.Pending(r.Context(), userID)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, pending)
}

// HandleConsume marks a notification seen.
func (c *NotificationController) HandleConsume(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["notificationId"]
	var req consumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, err)
		return
	}
	if err := c.NotificationService.Consume(r.Context(), req.UserID, id); err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "consumed"})
}
