package routes

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/controllers"
	"vibin_match/services"
)

// RegisterUserProfileRoutes sets up routes for user profile reads under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, feedService *services.FeedService, log zerolog.Logger) {
	controller := controllers.NewUserProfileController(feedService, log)

	// Create a subrouter for the /api/profiles base path
	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("/{userId}", controller.HandleGetProfile).Methods("GET")
}
