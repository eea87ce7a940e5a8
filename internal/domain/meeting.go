package domain

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus tracks a meeting's lifecycle
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingActive    MeetingStatus = "active"
	MeetingCompleted MeetingStatus = "completed"
)

// AttendanceAction is recorded in a meeting's join log
type AttendanceAction string

const (
	ActionJoin  AttendanceAction = "join"
	ActionLeave AttendanceAction = "leave"
)

// Meeting represents a generated meeting
type Meeting struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	HubID        uuid.UUID     `json:"hubId"`
	Agenda       []string      `json:"agenda"`
	Participants []uuid.UUID   `json:"participants"`
	CreatedByID  uuid.UUID     `json:"createdById"`
	ScheduledFor time.Time     `json:"scheduledFor"`
	Duration     int           `json:"duration"`
	MeetingLink  string        `json:"meetingLink"`
	Status       MeetingStatus `json:"status"`
	JoinLogs     []JoinLog     `json:"joinLogs"`
	Summary      string        `json:"summary,omitempty"`
}

// HasParticipant reports whether userID was invited
func (m Meeting) HasParticipant(userID uuid.UUID) bool {
	for _, id := range m.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// JoinLog is an append-only attendance record
type JoinLog struct {
	UserID    uuid.UUID        `json:"userId"`
	UserName  string           `json:"userName"`
	Action    AttendanceAction `json:"action"`
	Timestamp time.Time        `json:"timestamp"`
}

// MeetingCreate represents meeting creation data. Duration is in minutes.
type MeetingCreate struct {
	Title        string      `json:"title" validate:"required,max=255"`
	HubID        uuid.UUID   `json:"hubId" validate:"required"`
	Agenda       []string    `json:"agenda"`
	Participants []uuid.UUID `json:"participants"`
	ScheduledFor time.Time   `json:"scheduledFor" validate:"required"`
	Duration     int         `json:"duration" validate:"required,min=1,max=1440"`
}
