package handler

import (
	"net/http"

	"github.com/Rrens/meeting-buddy/internal/api/response"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/permission"
	"github.com/Rrens/meeting-buddy/internal/service"
)

// HubHandler handles hub, member and team endpoints
type HubHandler struct {
	stores StoreSource
	hubs   *service.HubService
}

// NewHubHandler creates a new hub handler
func NewHubHandler(stores StoreSource, hubs *service.HubService) *HubHandler {
	return &HubHandler{stores: stores, hubs: hubs}
}

// List returns the caller's hubs
func (h *HubHandler) List(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}

	response.OK(w, st.UserHubs(user.ID))
}

// Create creates a hub owned by the caller
func (h *HubHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}

	var req service.HubCreateRequest
	if !decode(w, r, &req) {
		return
	}

	hub, err := h.hubs.CreateHub(r.Context(), st, req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, hub)
}

// Get returns a hub
func (h *HubHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	hub, ok := visibleHub(w, st, user, hubID)
	if !ok {
		return
	}
	response.OK(w, hub)
}

// Current returns the selected hub
func (h *HubHandler) Current(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}

	hub, ok := st.CurrentHub()
	if !ok {
		response.NotFound(w, "no hub selected")
		return
	}
	response.OK(w, hub)
}

// Select makes a hub the current one
func (h *HubHandler) Select(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	if err := st.SelectHub(r.Context(), &hubID); err != nil {
		response.FromError(w, err)
		return
	}

	hub, _ := st.CurrentHub()
	response.OK(w, hub)
}

// Membership describes what the caller may do in a hub
type Membership struct {
	Member        domain.HubMember        `json:"member"`
	Capabilities  permission.Capabilities `json:"capabilities"`
	AddableRoles  []string                `json:"addableRoles"`
	CanCreateTeam bool                    `json:"canCreateTeam"`
}

// Membership returns the caller's role and capabilities in a hub
func (h *HubHandler) Membership(w http.ResponseWriter, r *http.Request) {
	user, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	hub, ok := visibleHub(w, st, user, hubID)
	if !ok {
		return
	}
	member, _ := hub.Member(user.ID)

	addable := permission.AddableRoles(member.Role)
	if addable == nil {
		addable = []string{}
	}
	response.OK(w, Membership{
		Member:        member,
		Capabilities:  permission.Resolve(member.Role),
		AddableRoles:  addable,
		CanCreateTeam: permission.CanCreateTeam(member.Role),
	})
}

// AddMember adds a registered user to a hub
func (h *HubHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	var invite service.MemberInvite
	if !decode(w, r, &invite) {
		return
	}

	member, err := h.hubs.AddMember(r.Context(), st, hubID, invite)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, member)
}

// CreateTeam creates a team and its channel
func (h *HubHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	_, st, ok := session(w, r, h.stores)
	if !ok {
		return
	}
	hubID, ok := uuidParam(w, r, "hubID")
	if !ok {
		return
	}

	var input domain.TeamCreate
	if !decode(w, r, &input) {
		return
	}

	team, err := st.CreateTeam(r.Context(), hubID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, team)
}
