package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/domain"
)

// Command is a state transition understood by Reduce. Identifiers and
// timestamps are generated by the caller so that Reduce stays pure.
type Command interface {
	command()
}

// Load replaces all collections with a restored snapshot
type Load struct {
	Snapshot     domain.Snapshot
	CurrentHubID *uuid.UUID
}

// SelectHub sets or clears the active hub pointer
type SelectHub struct {
	HubID *uuid.UUID
}

// CreateHub appends a new hub with its seeded all-members channel
type CreateHub struct {
	HubID     uuid.UUID
	ChannelID uuid.UUID
	MessageID uuid.UUID
	At        time.Time
	Input     domain.HubCreate
}

// AddMember adds a member to an existing hub
type AddMember struct {
	HubID uuid.UUID
	At    time.Time
	Input domain.MemberAdd
}

// CreateTeam appends a team and its paired channel
type CreateTeam struct {
	HubID     uuid.UUID
	TeamID    uuid.UUID
	ChannelID uuid.UUID
	Input     domain.TeamCreate
}

// AddMeeting appends a scheduled meeting
type AddMeeting struct {
	MeetingID uuid.UUID
	Link      string
	Input     domain.MeetingCreate
}

// RecordAttendance appends a join or leave to a meeting's log
type RecordAttendance struct {
	MeetingID uuid.UUID
	Action    domain.AttendanceAction
	At        time.Time
}

// CompleteMeeting stores a summary and records it in the chatbot history
type CompleteMeeting struct {
	MeetingID uuid.UUID
	EntryID   uuid.UUID
	Summary   string
	At        time.Time
}

// AddChatbotEntry appends an assistant exchange
type AddChatbotEntry struct {
	EntryID uuid.UUID
	At      time.Time
	Input   domain.ChatbotEntryCreate
}

// PostMessage appends a message to a channel
type PostMessage struct {
	HubID     uuid.UUID
	ChannelID uuid.UUID
	MessageID uuid.UUID
	At        time.Time
	Content   string
}

func (Load) command()             {}
func (SelectHub) command()        {}
func (CreateHub) command()        {}
func (AddMember) command()        {}
func (CreateTeam) command()       {}
func (AddMeeting) command()       {}
func (RecordAttendance) command() {}
func (CompleteMeeting) command()  {}
func (AddChatbotEntry) command()  {}
func (PostMessage) command()      {}
