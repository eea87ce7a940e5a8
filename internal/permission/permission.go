// Package permission maps hub roles to the capabilities they grant.
package permission

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/domain"
)

// Capabilities is the capability set granted by a role
type Capabilities struct {
	CanCreateMeetings   bool `json:"canCreateMeetings"`
	CanChatInAllMembers bool `json:"canChatInAllMembers"`
	CanManageHub        bool `json:"canManageHub"`
	CanViewAllChannels  bool `json:"canViewAllChannels"`
}

// Resolve returns the capabilities of role. Unknown roles get none.
func Resolve(role domain.Role) Capabilities {
	switch role {
	case domain.RoleCEO:
		return Capabilities{
			CanCreateMeetings:   true,
			CanChatInAllMembers: true,
			CanManageHub:        true,
			CanViewAllChannels:  true,
		}
	case domain.RoleManager, domain.RoleHR:
		return Capabilities{
			CanCreateMeetings:   true,
			CanChatInAllMembers: true,
			CanViewAllChannels:  true,
		}
	default:
		return Capabilities{}
	}
}

// CanAddRole reports whether actor may add a member with the given grant
// label. CEO adds Managers; Manager adds Team Leaders and Employees.
func CanAddRole(actor domain.Role, grant string) bool {
	switch actor {
	case domain.RoleCEO:
		return grant == string(domain.RoleManager)
	case domain.RoleManager:
		return grant == domain.GrantTeamLeader || grant == string(domain.RoleEmployee)
	default:
		return false
	}
}

// AddableRoles lists the grant labels actor may hand out
func AddableRoles(actor domain.Role) []string {
	switch actor {
	case domain.RoleCEO:
		return []string{string(domain.RoleManager)}
	case domain.RoleManager:
		return []string{domain.GrantTeamLeader, string(domain.RoleEmployee)}
	default:
		return nil
	}
}

// GrantedRole converts an add-member grant label into the stored role
func GrantedRole(grant string) (domain.Role, bool) {
	if grant == domain.GrantTeamLeader {
		return domain.RoleManager, true
	}
	return Normalize(grant)
}

// CanCreateTeam reports whether role may create teams
func CanCreateTeam(role domain.Role) bool {
	return role == domain.RoleCEO || role == domain.RoleManager
}

// CanCreateMeeting reports whether role may create meetings
func CanCreateMeeting(role domain.Role) bool {
	return Resolve(role).CanCreateMeetings
}

// CanPostInChannel reports whether userID may post into channel of hub.
// Non-members never may.
func CanPostInChannel(hub *domain.Hub, channel domain.Channel, userID uuid.UUID) bool {
	member, ok := hub.Member(userID)
	if !ok {
		return false
	}

	switch channel.Type {
	case domain.ChannelTypeAllMembers:
		return Resolve(member.Role).CanChatInAllMembers
	case domain.ChannelTypeTeam:
		switch member.Role {
		case domain.RoleCEO, domain.RoleManager, domain.RoleHR:
			return true
		}
		if channel.TeamID == nil {
			return false
		}
		team, ok := hub.Team(*channel.TeamID)
		return ok && team.Includes(userID)
	default:
		return false
	}
}

// CanViewChannel reports whether userID may read channel of hub. Every
// member reads the all-members channel; team channels are visible to roles
// that view all channels and to the team itself.
func CanViewChannel(hub *domain.Hub, channel domain.Channel, userID uuid.UUID) bool {
	member, ok := hub.Member(userID)
	if !ok {
		return false
	}
	if channel.Type == domain.ChannelTypeAllMembers || Resolve(member.Role).CanViewAllChannels {
		return true
	}
	if channel.TeamID == nil {
		return false
	}
	team, ok := hub.Team(*channel.TeamID)
	return ok && team.Includes(userID)
}

// Normalize parses a role label, case-insensitively
func Normalize(label string) (domain.Role, bool) {
	label = strings.TrimSpace(label)
	for _, r := range domain.Roles {
		if strings.EqualFold(label, string(r)) {
			return r, true
		}
	}
	return "", false
}
