package routes

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/controllers"
	"vibin_match/services"
)

// RegisterFeedRoutes sets up routes for candidate profiles under /api/feed
func RegisterFeedRoutes(r *mux.Router, feedService *services.FeedService, log zerolog.Logger) {
	controller := controllers.NewFeedController(feedService, log)
	r.HandleFunc("/api/feed", controller.HandleGetFeed).Methods("GET")
}
