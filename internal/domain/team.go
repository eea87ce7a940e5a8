package domain

import (
	"github.com/google/uuid"
)

// Team is a sub-group of a hub, paired 1:1 with a team channel
type Team struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Department  string      `json:"department,omitempty"`
	LeaderID    uuid.UUID   `json:"leaderId"`
	AssistantID uuid.UUID   `json:"assistantId"`
	Members     []uuid.UUID `json:"members"`
	ChannelID   uuid.UUID   `json:"channelId"`
}

// UserIDs returns leader, assistant and members
func (t Team) UserIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Members)+2)
	ids = append(ids, t.LeaderID, t.AssistantID)
	return append(ids, t.Members...)
}

// Includes reports whether userID leads, assists or belongs to the team
func (t Team) Includes(userID uuid.UUID) bool {
	for _, id := range t.UserIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// TeamCreate represents team creation data
type TeamCreate struct {
	Name        string      `json:"name" validate:"required,max=255"`
	Description string      `json:"description,omitempty" validate:"max=2000"`
	Department  string      `json:"department,omitempty" validate:"max=255"`
	LeaderID    uuid.UUID   `json:"leaderId" validate:"required"`
	AssistantID uuid.UUID   `json:"assistantId" validate:"required"`
	Members     []uuid.UUID `json:"members"`
}
