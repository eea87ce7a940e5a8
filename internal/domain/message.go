package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChannelType distinguishes the hub-wide channel from team channels
type ChannelType string

const (
	ChannelTypeAllMembers ChannelType = "all-members"
	ChannelTypeTeam       ChannelType = "team"
)

// AllMembersChannelName is the display name of the seeded hub-wide channel
const AllMembersChannelName = "All Members"

// Channel is a message stream inside a hub. TeamID is set iff Type is team.
type Channel struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	TeamID   *uuid.UUID  `json:"teamId,omitempty"`
	Messages []Message   `json:"messages"`
}

// Message represents a chat message in a channel
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Avatar    string    `json:"avatar,omitempty"`
}

// MessageCreate represents message posting data
type MessageCreate struct {
	Content string `json:"content" validate:"required,max=4000"`
}
