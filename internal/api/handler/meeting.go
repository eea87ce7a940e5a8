package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/api/response"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/service"
	"github.com/Rrens/meeting-buddy/internal/store"
)

// MeetingHandler handles meeting endpoints
type MeetingHandler struct {
	stores    StoreSource
	assistant *service.AssistantService
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(stores StoreSource, assistant *service.AssistantService) *MeetingHandler {
	return &MeetingHandler{stores: stores, assistant: assistant}
}

// List returns a hub's meetings by schedule
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
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
	response.OK(w, st.HubMeetings(hubID))
}

// Create schedules a meeting in a hub
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	var input domain.MeetingCreate
	if !decode(w, r, &input) {
		return
	}
	input.HubID = hubID

	meeting, err := st.AddMeeting(r.Context(), input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, meeting)
}

// Get returns a meeting
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	meetingID, ok := uuidParam(w, r, "meetingID")
	if !ok {
		return
	}

	meeting, ok := st.Meeting(meetingID)
	if !ok {
		response.NotFound(w, "meeting not found")
		return
	}
	if _, ok := visibleHub(w, st, user, meeting.HubID); !ok {
		return
	}
	response.OK(w, meeting)
}

// Join records that the caller joined a meeting
func (h *MeetingHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.attend(w, r, (*store.Store).JoinMeeting)
}

// Leave records that the caller left a meeting
func (h *MeetingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.attend(w, r, (*store.Store).LeaveMeeting)
}

type attendFunc func(*store.Store, context.Context, uuid.UUID) (domain.Meeting, error)

func (h *MeetingHandler) attend(w http.ResponseWriter, r *http.Request, record attendFunc) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	meetingID, ok := uuidParam(w, r, "meetingID")
	if !ok {
		return
	}

	meeting, err := record(st, r.Context(), meetingID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, meeting)
}

type summarizeRequest struct {
	// Summary completes the meeting verbatim; when empty the assistant writes one
	Summary string `json:"summary"`
	Notes   string `json:"notes"`
}

// Summarize completes a meeting with a given or generated summary
func (h *MeetingHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	meetingID, ok := uuidParam(w, r, "meetingID")
	if !ok {
		return
	}

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return
	}

	var (
		meeting domain.Meeting
		err     error
	)
	if strings.TrimSpace(req.Summary) != "" {
		meeting, err = st.CompleteMeeting(r.Context(), meetingID, req.Summary)
	} else {
		meeting, err = h.assistant.SummarizeMeeting(r.Context(), st, user, meetingID, req.Notes)
	}
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, meeting)
}
