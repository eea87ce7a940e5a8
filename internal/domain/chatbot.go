package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatbotEntryType classifies an assistant history entry
type ChatbotEntryType string

const (
	EntryMeetingSummary ChatbotEntryType = "meeting_summary"
	EntryTeamQuestion   ChatbotEntryType = "team_question"
)

// ChatbotEntry is an append-only record of an assistant exchange
type ChatbotEntry struct {
	ID        uuid.UUID        `json:"id"`
	HubID     uuid.UUID        `json:"hubId"`
	Type      ChatbotEntryType `json:"type"`
	Title     string           `json:"title"`
	Query     string           `json:"query"`
	Response  string           `json:"response"`
	Timestamp time.Time        `json:"timestamp"`
	MeetingID *uuid.UUID       `json:"meetingId,omitempty"`
}

// ChatbotEntryCreate represents a new assistant exchange. Response is
// produced by the AI responder, never by the store.
type ChatbotEntryCreate struct {
	HubID     uuid.UUID        `json:"hubId" validate:"required"`
	Type      ChatbotEntryType `json:"type" validate:"required,oneof=meeting_summary team_question"`
	Title     string           `json:"title" validate:"max=255"`
	Query     string           `json:"query" validate:"required,max=4000"`
	Response  string           `json:"response" validate:"required"`
	MeetingID *uuid.UUID       `json:"meetingId,omitempty"`
}

// ChatbotQuery is an assistant question asked from a hub
type ChatbotQuery struct {
	Query string `json:"query" validate:"required,max=4000"`
}

const maxEntryTitle = 50

// EntryTitle derives a history title from a query: the first 50 characters,
// with an ellipsis when the query is longer.
func EntryTitle(query string) string {
	runes := []rune(strings.TrimSpace(query))
	if len(runes) <= maxEntryTitle {
		return string(runes)
	}
	return string(runes[:maxEntryTitle]) + "..."
}
