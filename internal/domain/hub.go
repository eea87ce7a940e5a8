package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's stored role inside a hub
type Role string

// Role constants
const (
	RoleCEO      Role = "CEO"
	RoleManager  Role = "Manager"
	RoleHR       Role = "HR"
	RoleEmployee Role = "Employee"
)

// GrantTeamLeader is the add-member label a Manager uses to bring in a
// leadership-eligible member. It is stored as RoleManager; being a team
// leader is otherwise derived from Team.LeaderID.
const GrantTeamLeader = "Team Leader"

// Roles lists every stored role in hierarchy order
var Roles = []Role{RoleCEO, RoleManager, RoleHR, RoleEmployee}

// Valid reports whether r is one of the stored roles
func (r Role) Valid() bool {
	switch r {
	case RoleCEO, RoleManager, RoleHR, RoleEmployee:
		return true
	}
	return false
}

// HubType classifies a hub
type HubType string

const (
	HubTypeCorporate HubType = "corporate"
	HubTypeStartup   HubType = "startup"
	HubTypeNonprofit HubType = "nonprofit"
	HubTypeTeam      HubType = "team"
)

// Hub represents a top-level organizational workspace
type Hub struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Type        HubType     `json:"type"`
	Description string      `json:"description,omitempty"`
	CreatorID   uuid.UUID   `json:"creatorId"`
	CreatedAt   time.Time   `json:"createdAt"`
	Members     []HubMember `json:"members"`
	Teams       []Team      `json:"teams"`
	Channels    []Channel   `json:"channels"`
}

// HubMember represents hub membership
type HubMember struct {
	UserID   uuid.UUID `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
	Avatar   string    `json:"avatar,omitempty"`
}

// Member returns the membership record for userID
func (h *Hub) Member(userID uuid.UUID) (HubMember, bool) {
	for _, m := range h.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return HubMember{}, false
}

// Team returns the team with the given id
func (h *Hub) Team(id uuid.UUID) (Team, bool) {
	for _, t := range h.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Channel returns the channel with the given id
func (h *Hub) Channel(id uuid.UUID) (Channel, bool) {
	for _, c := range h.Channels {
		if c.ID == id {
			return c, true
		}
	}
	return Channel{}, false
}

// AllMembersChannel returns the hub-wide channel
func (h *Hub) AllMembersChannel() (Channel, bool) {
	for _, c := range h.Channels {
		if c.Type == ChannelTypeAllMembers {
			return c, true
		}
	}
	return Channel{}, false
}

// AssignedUserIDs returns every user that leads, assists or belongs to a team
func (h *Hub) AssignedUserIDs() map[uuid.UUID]bool {
	assigned := make(map[uuid.UUID]bool)
	for _, t := range h.Teams {
		for _, id := range t.UserIDs() {
			assigned[id] = true
		}
	}
	return assigned
}

// HubMemberInput is a resolved member supplied when creating a hub
type HubMemberInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Name   string    `json:"name" validate:"max=255"`
	Email  string    `json:"email" validate:"required,email,max=255"`
	Role   Role      `json:"role" validate:"required,oneof=CEO Manager HR Employee"`
	Avatar string    `json:"avatar,omitempty"`
}

// HubCreate represents hub creation data
type HubCreate struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Type        HubType          `json:"type" validate:"required,oneof=corporate startup nonprofit team"`
	Description string           `json:"description,omitempty" validate:"max=2000"`
	CreatorRole Role             `json:"creatorRole" validate:"required,oneof=CEO Manager HR Employee"`
	Members     []HubMemberInput `json:"members" validate:"dive"`
}

// MemberAdd represents a member being added to an existing hub. Grant is
// either a stored role or GrantTeamLeader.
type MemberAdd struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Name   string    `json:"name" validate:"max=255"`
	Email  string    `json:"email" validate:"required,email,max=255"`
	Grant  string    `json:"role" validate:"required"`
	Avatar string    `json:"avatar,omitempty"`
}
