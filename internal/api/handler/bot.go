package handler

import (
	"net/http"

	"github.com/Rrens/meeting-buddy/internal/api/response"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/service"
)

// BotHandler handles assistant endpoints
type BotHandler struct {
	stores    StoreSource
	assistant *service.AssistantService
}

// NewBotHandler creates a new assistant handler
func NewBotHandler(stores StoreSource, assistant *service.AssistantService) *BotHandler {
	return &BotHandler{stores: stores, assistant: assistant}
}

// Query asks the assistant a team question
func (h *BotHandler) Query(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	var input domain.ChatbotQuery
	if !decode(w, r, &input) {
		return
	}

	entry, err := h.assistant.Ask(r.Context(), st, user, hubID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, entry)
}

// History returns a hub's assistant history, newest first
func (h *BotHandler) History(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	if _, ok := visibleHub(w, st, user, hubID); !ok {
		return
	}
	response.OK(w, st.ChatbotHistory(hubID))
}
