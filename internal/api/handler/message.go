package handler

import (
	"net/http"

	"github.com/Rrens/meeting-buddy/internal/api/response"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/permission"
)

// MessageHandler handles channel message endpoints
type MessageHandler struct {
	stores StoreSource
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(stores StoreSource) *MessageHandler {
	return &MessageHandler{stores: stores}
}

// List returns a channel's messages in posting order
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}
	channelID, ok := uuidParam(w, r, "channelID")
	if !ok {
		return
	}

	hub, ok := visibleHub(w, st, user, hubID)
	if !ok {
		return
	}
	channel, ok := hub.Channel(channelID)
	if !ok {
		response.NotFound(w, "channel not found")
		return
	}
	if !permission.CanViewChannel(&hub, channel, user.ID) {
		response.Forbidden(w, "you cannot view this channel")
		return
	}

	response.OK(w, channel.Messages)
}

// Post appends a message to a channel
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}
	channelID, ok := uuidParam(w, r, "channelID")
	if !ok {
		return
	}

	var input domain.MessageCreate
	if !decode(w, r, &input) {
		return
	}

	msg, err := st.PostMessage(r.Context(), hubID, channelID, input.Content)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, msg)
}
