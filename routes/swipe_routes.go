package routes

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/controllers"
	"vibin_match/services"
)

// RegisterSwipeRoutes sets up routes for swipe decisions under /api/swipes
func RegisterSwipeRoutes(r *mux.Router, swipeService *services.SwipeService, log zerolog.Logger) {
	controller := controllers.NewSwipeController(swipeService, log)
	r.HandleFunc("/api/swipes", controller.HandleSwipe).Methods("POST")
}
