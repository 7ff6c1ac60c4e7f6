package socket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"vibin_match/models"
	"vibin_match/realtime"
	"vibin_match/services"
)

// EventError is pushed when a connection cannot be served.
const EventError = "error"

// Ack is returned to the client for every request event.
type Ack struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	// Text echoes a message that failed to send so the client can restore
	// its compose input.
	Text string `json:"text,omitempty"`
}

type swipeRequest struct {
	TargetID  string `json:"targetId"`
	Direction string `json:"direction"`
}

type threadRequest struct {
	ThreadKey string `json:"threadKey"`
}

type sendMessageRequest struct {
	ThreadKey string `json:"threadKey"`
	Text      string `json:"text"`
}

type consumeRequest struct {
	NotificationID string `json:"notificationId"`
}

// Gateway binds socket connections to realtime sessions and serves their
// request events.
type Gateway struct {
	hub           *realtime.Hub
	swipes        *services.SwipeService
	chat          *services.ChatService
	notifications *services.NotificationService
	timeout       time.Duration
	log           zerolog.Logger

	sessions sync.Map // conn id -> *realtime.Session
}

// NewGateway wires the gateway. timeout bounds each request event.
func NewGateway(hub *realtime.Hub, swipes *services.SwipeService, chat *services.ChatService,
	notifications *services.NotificationService, timeout time.Duration, log zerolog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		hub:           hub,
		swipes:        swipes,
		chat:          chat,
		notifications: notifications,
		timeout:       timeout,
		log:           log.With().Str("component", "socket").Logger(),
	}
}

// Connect opens a session for the userId query parameter and starts pushing
// its events to the connection.
func (g *Gateway) Connect(c socketio.Conn) error {
	u := c.URL()
	userID := u.Query().Get("userId")
	if userID == "" {
		g.log.Warn().Str("socketId", c.ID()).Msg("❌ Socket connected without userId")
		c.Emit(EventError, Ack{Error: "userId is required", Code: "validation"})
		return models.NewValidationError("userId", "required")
	}

	session, err := realtime.NewSession(g.hub, userID, g.chat, g.log)
	if err != nil {
		g.log.Error().Err(err).Str("userId", userID).Msg("❌ Failed to open session")
		c.Emit(EventError, Ack{Error: err.Error(), Code: errorCode(err)})
		return fmt.Errorf("failed to open session: %w", err)
	}
	c.SetContext(session)
	g.sessions.Store(c.ID(), session)

	go func() {
		for e := range session.Events() {
			c.Emit(e.Name, e.Payload)
		}
	}()

	g.log.Info().Str("socketId", c.ID()).Str("userId", userID).Msg("✅ Socket connected")
	return nil
}

// Disconnect closes the connection's session.
func (g *Gateway) Disconnect(c socketio.Conn, reason string) {
	if c == nil {
		return
	}
	if v, ok := g.sessions.LoadAndDelete(c.ID()); ok {
		v.(*realtime.Session).Close()
	}
	g.log.Info().Str("socketId", c.ID()).Str("reason", reason).Msg("❌ Socket disconnected")
}

// Error logs a transport error and drops the connection's session.
func (g *Gateway) Error(c socketio.Conn, err error) {
	g.log.Warn().Err(err).Msg("socket error")
	g.Disconnect(c, "error")
}

// Sessions is the number of open sessions.
func (g *Gateway) Sessions() int {
	n := 0
	g.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (g *Gateway) session(c socketio.Conn) (*realtime.Session, error) {
	if v, ok := g.sessions.Load(c.ID()); ok {
		return v.(*realtime.Session), nil
	}
	return nil, fmt.Errorf("socket %s: %w", c.ID(), models.ErrNotFound)
}

// Swipe records a decision made by the connected user.
func (g *Gateway) Swipe(c socketio.Conn, req swipeRequest) Ack {
	s, err := g.session(c)
	if err != nil {
		return failure(err)
	}
	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		return failure(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	res, err := g.swipes.Swipe(ctx, s.UserID(), req.TargetID, direction)
	if err != nil {
		g.log.Warn().Err(err).Str("actorId", s.UserID()).Str("targetId", req.TargetID).Msg("swipe failed")
		return failure(err)
	}
	return Ack{OK: true, Data: res}
}

// OpenThread makes threadKey the connection's active thread and marks it read.
func (g *Gateway) OpenThread(c socketio.Conn, req threadRequest) Ack {
	s, err := g.session(c)
	if err != nil {
		return failure(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if _, err := g.chat.OpenThread(ctx, req.ThreadKey, s.UserID()); err != nil {
		return failure(err)
	}
	if err := s.SetActiveThread(ctx, req.ThreadKey); err != nil {
		return failure(err)
	}
	return Ack{OK: true}
}

// CloseThread stops streaming the active thread.
func (g *Gateway) CloseThread(c socketio.Conn) Ack {
	s, err := g.session(c)
	if err != nil {
		return failure(err)
	}
	s.ClearActiveThread()
	return Ack{OK: true}
}

// SendMessage sends text from the connected user. A failed send echoes
// the text back.
func (g *Gateway) SendMessage(c socketio.Conn, req sendMessageRequest) Ack {
	s, err := g.session(c)
	if err != nil {
		ack := failure(err)
		ack.Text = req.Text
		return ack
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	msg, err := g.chat.SendMessage(ctx, req.ThreadKey, s.UserID(), req.Text)
	if err != nil {
		g.log.Warn().Err(err).Str("threadKey", req.ThreadKey).Msg("📩 Message not sent")
		ack := failure(err)
		ack.Text = req.Text
		return ack
	}
	return Ack{OK: true, Data: msg}
}

// ConsumeNotification acknowledges one of the connected user's notifications.
func (g *Gateway) ConsumeNotification(c socketio.Conn, req consumeRequest) Ack {
	s, err := g.session(c)
	if err != nil {
		return failure(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if err := g.notifications.Consume(ctx, s.UserID(), req.NotificationID); err != nil {
		return failure(err)
	}
	return Ack{OK: true}
}

func failure(err error) Ack {
	return Ack{Error: err.Error(), Code: errorCode(err)}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrWriteFailure):
		return "write_failure"
	case errors.Is(err, models.ErrSubscriptionFailure):
		return "subscription_failure"
	default:
		return "internal"
	}
}
