package socket

import (
	socketio "github.com/googollee/go-socket.io"
)

// Client request events.
const (
	EventSwipe               = "swipe"
	EventOpenThread          = "openThread"
	EventCloseThread         = "closeThread"
	EventSendMessage         = "sendMessage"
	EventConsumeNotification = "consumeNotification"
)

// NewSocketServer initializes a Socket.IO server serving gw on the root
// namespace. The caller runs Serve and mounts it at /socket.io/.
func NewSocketServer(gw *Gateway) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", gw.Connect)
	server.OnDisconnect("/", gw.Disconnect)
	server.OnError("/", gw.Error)

	server.OnEvent("/", EventSwipe, gw.Swipe)
	server.OnEvent("/", EventOpenThread, gw.OpenThread)
	server.OnEvent("/", EventCloseThread, gw.CloseThread)
	server.OnEvent("/", EventSendMessage, gw.SendMessage)
	server.OnEvent("/", EventConsumeNotification, gw.ConsumeNotification)

	return server
}
