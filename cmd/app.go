package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gomodule/redigo/redis"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"vibin_match/config"
	"vibin_match/models"
	"vibin_match/realtime"
	"vibin_match/routes"
	"vibin_match/services"
	"vibin_match/socket"
	"vibin_match/store"
	"vibin_match/store/dynamo"
	"vibin_match/store/memory"
	"vibin_match/utils"
)

// App is the assembled server: stores, services, the live hub and both
// transports behind one handler.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	Store   store.Store
	Feed    realtime.ChangeFeed
	Hub     *realtime.Hub
	Gateway *socket.Gateway
	Handler http.Handler

	socketServer *socketio.Server
	redisPool    *redis.Pool
}

// NewApp wires every component named by cfg. seed profiles are loaded into
// the memory store and ignored otherwise.
func NewApp(ctx context.Context, cfg *config.Config, seed []models.UserProfile, log zerolog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := memory.New()
		for _, p := range seed {
			mem.PutProfile(p)
		}
		app.Store = mem
		log.Info().Int("profiles", len(seed)).Msg("✅ Using in-memory store")
	default:
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		app.Store = dynamo.NewStore(dynamo.NewDynamoService(client, log), tablesFrom(cfg))
		log.Info().Str("region", cfg.AWSRegion).Msg("✅ DynamoDB client initialized")
	}

	switch cfg.ChangeFeed {
	case config.FeedRedis:
		app.redisPool = realtime.NewRedisPool(cfg.RedisAddr, cfg.RedisPassword)
		app.Feed = realtime.NewRedisFeed(app.redisPool, cfg.RedisChannel, log)
		log.Info().Str("addr", cfg.RedisAddr).Str("channel", cfg.RedisChannel).Msg("✅ Using Redis change feed")
	default:
		app.Feed = realtime.NewLocalFeed()
	}

	var photos services.PhotoResolver = services.PassThroughResolver{}
	if cfg.S3Bucket != "" {
		resolver, err := services.NewS3PhotoResolver(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.PhotoURLTTL)
		if err != nil {
			return nil, err
		}
		photos = resolver
	}

	clock := utils.SystemClock{}
	notes := services.NewNotificationService(app.Store.Profiles(), app.Store.Notifications(), photos, app.Feed, clock, cfg.NotificationTTL, log)
	detector := services.NewMatchDetector(app.Store.Swipes(), app.Store.Threads(), notes, app.Feed, clock, log)
	swipes := services.NewSwipeService(app.Store.Swipes(), detector, clock, log)
	chat := services.NewChatService(app.Store.Threads(), app.Store.Profiles(), photos, app.Feed, clock, log)
	feed := services.NewFeedService(app.Store.Profiles(), app.Store.Swipes(), photos, log)

	app.Hub = realtime.NewHub(app.Feed,
		services.LiveQueries{FeedService: feed, ChatService: chat, NotificationService: notes},
		realtime.HubOptions{QueryTimeout: cfg.RequestTimeout}, log)
	app.Gateway = socket.NewGateway(app.Hub, swipes, chat, notes, cfg.RequestTimeout, log)
	app.socketServer = socket.NewSocketServer(app.Gateway)

	router := routes.NewRouter(routes.Services{
		Feed:          feed,
		Swipes:        swipes,
		Chat:          chat,
		Notifications: notes,
	}, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", app.socketServer)
	mux.Handle("/", router)

	app.Handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(mux)

	return app, nil
}

func tablesFrom(cfg *config.Config) dynamo.Tables {
	return dynamo.Tables{
		Users:         cfg.UsersTable,
		Swipes:        cfg.SwipesTable,
		Threads:       cfg.ThreadsTable,
		Messages:      cfg.MessagesTable,
		Notifications: cfg.NotificationsTable,
	}
}

// Run serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Hub.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		if err := a.socketServer.Serve(); err != nil && runCtx.Err() == nil {
			a.log.Error().Err(err).Msg("❌ Socket server stopped")
		}
	}()

	srv := &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(a.cfg.Port)),
		Handler: a.Handler,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Int("port", a.cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	a.log.Info().Msg("Shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	cancel()
	if err := a.socketServer.Close(); err != nil {
		a.log.Warn().Err(err).Msg("socket server close")
	}
	wg.Wait()
	a.Close()
	if serveErr != nil {
		return fmt.Errorf("failed to serve: %w", serveErr)
	}
	return nil
}

// Close releases the hub, the socket server and the Redis pool. Closing the
// socket server twice is safe.
func (a *App) Close() {
	a.Hub.Close()
	if err := a.socketServer.Close(); err != nil {
		a.log.Warn().Err(err).Msg("socket server close")
	}
	if a.redisPool != nil {
		if err := a.redisPool.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis pool close")
		}
	}
}

// LoadProfiles reads a JSON array of profiles used to seed the memory store.
func LoadProfiles(path string) ([]models.UserProfile, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	var profiles []models.UserProfile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles %s: %w", path, err)
	}
	return profiles, nil
}
