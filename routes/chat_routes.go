package routes

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/controllers"
	"vibin_match/services"
)

// RegisterChatRoutes sets up routes for threads and messages under /api/threads
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, log zerolog.Logger) {
	controller := controllers.NewChatController(chatService, log)

	// Create a subrouter for /api/threads
	chatRouter := r.PathPrefix("/api/threads").Subrouter()

	chatRouter.HandleFunc("", controller.HandleListThreads).Methods("GET")
	chatRouter.HandleFunc("/{threadKey}/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/{threadKey}/messages", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/{threadKey}/open", controller.HandleOpenThread).Methods("POST")
}
