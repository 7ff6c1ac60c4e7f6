package routes

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/controllers"
	"vibin_match/services"
)

// RegisterNotificationRoutes sets up routes for notifications under /api/notifications
func RegisterNotificationRoutes(r *mux.Router, notificationService *services.NotificationService, log zerolog.Logger) {
	controller := controllers.NewNotificationController(notificationService, log)

	notificationRouter := r.PathPrefix("/api/notifications").Subrouter()

	notificationRouter.HandleFunc("", controller.HandleListPending).Methods("GET")
	notificationRouter.HandleFunc("/{notificationId}/consume", controller.HandleConsume).Methods("POST")
}
