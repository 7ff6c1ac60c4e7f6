package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vibin_match/services"
)

type sendMessageRequest struct {
	SenderID string `json:"senderId" validate:"required"`
	Text     string `json:"text"`
}

type openThreadRequest struct {
	ViewerID string `json:"viewerId" validate:"required"`
}

// ChatController serves threads and their messages.
type ChatController struct {
	ChatService *services.ChatService
	log         zerolog.Logger
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService, log zerolog.Logger) *ChatController {
	return &ChatController{ChatService: service, log: log}
}

// HandleListThreads returns userId's thread list, newest activity first.
func (c *ChatController) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	snapshot, err := c.ChatService.ThreadList(r.Context(), userID)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, snapshot)
}

// HandleGetMessages returns a thread's messages oldest first.
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["threadKey"]
	messages, err := c.ChatService.CollectMessages(r.Context(), key)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, messages)
}

// HandleSendMessage appends a message. A failed send echoes the text so
// the client can restore its input.
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["threadKey"]
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorBody(w, c.log, err, errorResponse{Error: err.Error(), Text: req.Text})
		return
	}

	msg, err := c.ChatService.SendMessage(r.Context(), key, req.SenderID, req.Text)
	if err != nil {
		writeErrorBody(w, c.log, err, errorResponse{Error: err.Error(), Text: req.Text})
		return
	}
	c.log.Debug().Str("threadKey", key).Str("messageId", msg.ID).Msg("📩 Message sent")
	WriteJSONResponse(w, http.StatusCreated, msg)
}

// HandleOpenThread marks the thread read for the viewer.
func (c *ChatController) HandleOpenThread(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["threadKey"]
	var req openThreadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, err)
		return
	}
	changed, err := c.ChatService.OpenThread(r.Context(), key, req.ViewerID)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]bool{"changed": changed})
}
