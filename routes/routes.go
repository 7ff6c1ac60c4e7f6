package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/controllers"
	"vibin_match/services"
)

// Services are the handlers' dependencies.
type Services struct {
	Feed          *services.FeedService
	Swipes        *services.SwipeService
	Chat          *services.ChatService
	Notifications *services.NotificationService
}

// RegisterRoutes sets up the base routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
}

// NewRouter builds the REST router with every feature mounted. Handlers run
// behind panic recovery and a per-request timeout.
func NewRouter(svc Services, requestTimeout time.Duration, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(
		controllers.Recovery(log),
		controllers.RequestLogger(log),
		controllers.RequestTimeout(requestTimeout),
	)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		controllers.WriteJSONResponse(w, http.StatusNotFound, map[string]string{"error": "route not found"})
	})

	RegisterRoutes(r)
	RegisterFeedRoutes(r, svc.Feed, log)
	RegisterUserProfileRoutes(r, svc.Feed, log)
	RegisterSwipeRoutes(r, svc.Swipes, log)
	RegisterChatRoutes(r, svc.Chat, log)
	RegisterNotificationRoutes(r, svc.Notifications, log)
	return r
}
