package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/permission"
)

var validate = validator.New()

// State is the domain state of one user session
type State struct {
	Hubs           []domain.Hub
	Meetings       []domain.Meeting
	ChatbotHistory []domain.ChatbotEntry
	CurrentHubID   *uuid.UUID
}

// Reduce applies cmd on behalf of actor. It never modifies state: every
// collection it changes is rebuilt, so the previous State stays valid. On
// error the returned State is the input.
func Reduce(state State, actor domain.User, cmd Command) (State, error) {
	switch c := cmd.(type) {
	case Load:
		return reduceLoad(state, c), nil
	case SelectHub:
		return reduceSelectHub(state, c)
	case CreateHub:
		return reduceCreateHub(state, actor, c)
	case AddMember:
		return reduceAddMember(state, actor, c)
	case CreateTeam:
		return reduceCreateTeam(state, actor, c)
	case AddMeeting:
		return reduceAddMeeting(state, actor, c)
	case RecordAttendance:
		return reduceRecordAttendance(state, actor, c)
	case CompleteMeeting:
		return reduceCompleteMeeting(state, actor, c)
	case AddChatbotEntry:
		return reduceAddChatbotEntry(state, actor, c)
	case PostMessage:
		return reducePostMessage(state, actor, c)
	default:
		return state, fmt.Errorf("unknown command %T", cmd)
	}
}

func reduceLoad(state State, c Load) State {
	state.Hubs = orEmpty(c.Snapshot.Hubs)
	state.Meetings = orEmpty(c.Snapshot.Meetings)
	state.ChatbotHistory = orEmpty(c.Snapshot.ChatbotHistory)
	state.CurrentHubID = copyID(c.CurrentHubID)
	return state
}

func reduceSelectHub(state State, c SelectHub) (State, error) {
	if c.HubID != nil && hubIndex(state.Hubs, *c.HubID) < 0 {
		return state, errorf(domain.ErrNotFound, "hub %s", *c.HubID)
	}
	state.CurrentHubID = copyID(c.HubID)
	return state, nil
}

func reduceCreateHub(state State, actor domain.User, c CreateHub) (State, error) {
	in := c.Input
	if err := validateInput(in); err != nil {
		return state, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return state, errorf(domain.ErrValidation, "hub name is required")
	}
	if hubIndex(state.Hubs, c.HubID) >= 0 {
		return state, errorf(domain.ErrConflict, "hub %s already exists", c.HubID)
	}

	members := []domain.HubMember{{
		UserID:   actor.ID,
		Name:     actor.Name,
		Email:    actor.Email,
		Role:     in.CreatorRole,
		JoinedAt: c.At,
		Avatar:   actor.Avatar,
	}}
	seen := map[uuid.UUID]bool{actor.ID: true}
	for _, m := range in.Members {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		members = append(members, domain.HubMember{
			UserID:   m.UserID,
			Name:     m.Name,
			Email:    m.Email,
			Role:     m.Role,
			JoinedAt: c.At,
			Avatar:   m.Avatar,
		})
	}

	hub := domain.Hub{
		ID:          c.HubID,
		Name:        name,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		CreatorID:   actor.ID,
		CreatedAt:   c.At,
		Members:     members,
		Teams:       []domain.Team{},
		Channels: []domain.Channel{{
			ID:   c.ChannelID,
			Name: domain.AllMembersChannelName,
			Type: domain.ChannelTypeAllMembers,
			Messages: []domain.Message{{
				ID:        c.MessageID,
				UserID:    actor.ID,
				UserName:  actor.Name,
				Content:   fmt.Sprintf("Welcome to %s! Looking forward to working with everyone.", name),
				Timestamp: c.At,
				Avatar:    actor.Avatar,
			}},
		}},
	}

	state.Hubs = append(slices.Clip(state.Hubs), hub)
	return state, nil
}

func reduceAddMember(state State, actor domain.User, c AddMember) (State, error) {
	i := hubIndex(state.Hubs, c.HubID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "hub %s", c.HubID)
	}
	hub := state.Hubs[i]

	self, err := memberOf(&hub, actor)
	if err != nil {
		return state, err
	}

	in := c.Input
	if err := validateInput(in); err != nil {
		return state, err
	}
	if !permission.CanAddRole(self.Role, in.Grant) {
		return state, errorf(domain.ErrForbidden, "%s cannot add a %s", self.Role, in.Grant)
	}
	role, ok := permission.GrantedRole(in.Grant)
	if !ok {
		return state, errorf(domain.ErrValidation, "unknown role %q", in.Grant)
	}
	if _, exists := hub.Member(in.UserID); exists {
		return state, errorf(domain.ErrConflict, "%s is already a member of %s", in.Email, hub.Name)
	}

	hub.Members = append(slices.Clip(hub.Members), domain.HubMember{
		UserID:   in.UserID,
		Name:     in.Name,
		Email:    in.Email,
		Role:     role,
		JoinedAt: c.At,
		Avatar:   in.Avatar,
	})
	return replaceHub(state, i, hub), nil
}

func reduceCreateTeam(state State, actor domain.User, c CreateTeam) (State, error) {
	i := hubIndex(state.Hubs, c.HubID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "hub %s", c.HubID)
	}
	hub := state.Hubs[i]

	self, err := memberOf(&hub, actor)
	if err != nil {
		return state, err
	}
	if !permission.CanCreateTeam(self.Role) {
		return state, errorf(domain.ErrForbidden, "%s cannot create teams", self.Role)
	}

	in := c.Input
	if err := validateInput(in); err != nil {
		return state, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return state, errorf(domain.ErrValidation, "team name is required")
	}
	if in.LeaderID == in.AssistantID {
		return state, errorf(domain.ErrValidation, "leader and assistant must be different members")
	}

	assigned := hub.AssignedUserIDs()
	for _, id := range []uuid.UUID{in.LeaderID, in.AssistantID} {
		if err := requireRole(&hub, id, domain.RoleManager); err != nil {
			return state, err
		}
		if assigned[id] {
			return state, errorf(domain.ErrConflict, "member %s is already assigned to a team", id)
		}
	}

	members := make([]uuid.UUID, 0, len(in.Members))
	seen := make(map[uuid.UUID]bool, len(in.Members))
	for _, id := range in.Members {
		if seen[id] {
			return state, errorf(domain.ErrValidation, "member %s listed twice", id)
		}
		seen[id] = true
		if err := requireRole(&hub, id, domain.RoleEmployee); err != nil {
			return state, err
		}
		if assigned[id] {
			return state, errorf(domain.ErrConflict, "member %s is already assigned to a team", id)
		}
		members = append(members, id)
	}

	teamID := c.TeamID
	team := domain.Team{
		ID:          teamID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Department:  strings.TrimSpace(in.Department),
		LeaderID:    in.LeaderID,
		AssistantID: in.AssistantID,
		Members:     members,
		ChannelID:   c.ChannelID,
	}
	channel := domain.Channel{
		ID:       c.ChannelID,
		Name:     name,
		Type:     domain.ChannelTypeTeam,
		TeamID:   &teamID,
		Messages: []domain.Message{},
	}

	// team and channel land in the same hub value
	hub.Teams = append(slices.Clip(hub.Teams), team)
	hub.Channels = append(slices.Clip(hub.Channels), channel)
	return replaceHub(state, i, hub), nil
}

func reduceAddMeeting(state State, actor domain.User, c AddMeeting) (State, error) {
	in := c.Input
	if err := validateInput(in); err != nil {
		return state, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return state, errorf(domain.ErrValidation, "meeting title is required")
	}
	if c.Link == "" {
		return state, errorf(domain.ErrValidation, "meeting link is required")
	}

	i := hubIndex(state.Hubs, in.HubID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "hub %s", in.HubID)
	}
	hub := state.Hubs[i]

	self, err := memberOf(&hub, actor)
	if err != nil {
		return state, err
	}
	if !permission.CanCreateMeeting(self.Role) {
		return state, errorf(domain.ErrForbidden, "%s cannot create meetings", self.Role)
	}

	agenda := make([]string, 0, len(in.Agenda))
	for _, item := range in.Agenda {
		if item = strings.TrimSpace(item); item != "" {
			agenda = append(agenda, item)
		}
	}

	participants := make([]uuid.UUID, 0, len(in.Participants))
	seen := make(map[uuid.UUID]bool, len(in.Participants))
	for _, id := range in.Participants {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := hub.Member(id); !ok {
			return state, errorf(domain.ErrValidation, "participant %s is not a member of %s", id, hub.Name)
		}
		participants = append(participants, id)
	}

	state.Meetings = append(slices.Clip(state.Meetings), domain.Meeting{
		ID:           c.MeetingID,
		Title:        title,
		HubID:        hub.ID,
		Agenda:       agenda,
		Participants: participants,
		CreatedByID:  actor.ID,
		ScheduledFor: in.ScheduledFor.UTC(),
		Duration:     in.Duration,
		MeetingLink:  c.Link,
		Status:       domain.MeetingScheduled,
		JoinLogs:     []domain.JoinLog{},
	})
	return state, nil
}

func reduceRecordAttendance(state State, actor domain.User, c RecordAttendance) (State, error) {
	i := meetingIndex(state.Meetings, c.MeetingID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "meeting %s", c.MeetingID)
	}
	m := state.Meetings[i]

	if !m.HasParticipant(actor.ID) {
		return state, errorf(domain.ErrForbidden, "%s is not a participant of %s", actor.Email, m.Title)
	}
	if m.Status == domain.MeetingCompleted {
		return state, errorf(domain.ErrConflict, "meeting %s is already completed", m.Title)
	}

	switch c.Action {
	case domain.ActionJoin:
		m.Status = domain.MeetingActive
	case domain.ActionLeave:
	default:
		return state, errorf(domain.ErrValidation, "unknown attendance action %q", c.Action)
	}

	m.JoinLogs = append(slices.Clip(m.JoinLogs), domain.JoinLog{
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    c.Action,
		Timestamp: c.At,
	})
	return replaceMeeting(state, i, m), nil
}

func reduceCompleteMeeting(state State, actor domain.User, c CompleteMeeting) (State, error) {
	i := meetingIndex(state.Meetings, c.MeetingID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "meeting %s", c.MeetingID)
	}
	m := state.Meetings[i]

	if !m.HasParticipant(actor.ID) {
		return state, errorf(domain.ErrForbidden, "%s is not a participant of %s", actor.Email, m.Title)
	}
	if m.Status == domain.MeetingCompleted {
		return state, errorf(domain.ErrConflict, "meeting %s is already completed", m.Title)
	}
	summary := strings.TrimSpace(c.Summary)
	if summary == "" {
		return state, errorf(domain.ErrValidation, "summary is required")
	}

	m.Status = domain.MeetingCompleted
	m.Summary = summary
	state = replaceMeeting(state, i, m)

	meetingID := m.ID
	state.ChatbotHistory = append(slices.Clip(state.ChatbotHistory), domain.ChatbotEntry{
		ID:        c.EntryID,
		HubID:     m.HubID,
		Type:      domain.EntryMeetingSummary,
		Title:     m.Title + " Summary",
		Query:     fmt.Sprintf("Summarize the %s meeting", m.Title),
		Response:  summary,
		Timestamp: c.At,
		MeetingID: &meetingID,
	})
	return state, nil
}

func reduceAddChatbotEntry(state State, actor domain.User, c AddChatbotEntry) (State, error) {
	in := c.Input
	if err := validateInput(in); err != nil {
		return state, err
	}

	i := hubIndex(state.Hubs, in.HubID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "hub %s", in.HubID)
	}
	hub := state.Hubs[i]
	if _, err := memberOf(&hub, actor); err != nil {
		return state, err
	}

	if in.MeetingID != nil {
		j := meetingIndex(state.Meetings, *in.MeetingID)
		if j < 0 || state.Meetings[j].HubID != hub.ID {
			return state, errorf(domain.ErrNotFound, "meeting %s in hub %s", *in.MeetingID, hub.Name)
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.Query
	}

	state.ChatbotHistory = append(slices.Clip(state.ChatbotHistory), domain.ChatbotEntry{
		ID:        c.EntryID,
		HubID:     hub.ID,
		Type:      in.Type,
		Title:     domain.EntryTitle(title),
		Query:     in.Query,
		Response:  in.Response,
		Timestamp: c.At,
		MeetingID: copyID(in.MeetingID),
	})
	return state, nil
}

func reducePostMessage(state State, actor domain.User, c PostMessage) (State, error) {
	i := hubIndex(state.Hubs, c.HubID)
	if i < 0 {
		return state, errorf(domain.ErrNotFound, "hub %s", c.HubID)
	}
	hub := state.Hubs[i]

	j := channelIndex(hub.Channels, c.ChannelID)
	if j < 0 {
		return state, errorf(domain.ErrNotFound, "channel %s", c.ChannelID)
	}
	channel := hub.Channels[j]

	if !permission.CanPostInChannel(&hub, channel, actor.ID) {
		return state, errorf(domain.ErrForbidden, "%s cannot post in %s", actor.Email, channel.Name)
	}
	if err := validateInput(domain.MessageCreate{Content: c.Content}); err != nil {
		return state, err
	}
	content := strings.TrimSpace(c.Content)
	if content == "" {
		return state, errorf(domain.ErrValidation, "message content is required")
	}

	channel.Messages = append(slices.Clip(channel.Messages), domain.Message{
		ID:        c.MessageID,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Content:   content,
		Timestamp: c.At,
		Avatar:    actor.Avatar,
	})

	channels := slices.Clone(hub.Channels)
	channels[j] = channel
	hub.Channels = channels
	return replaceHub(state, i, hub), nil
}

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return errorf(domain.ErrValidation, "%s", err.Error())
	}
	return nil
}

func errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func memberOf(hub *domain.Hub, actor domain.User) (domain.HubMember, error) {
	m, ok := hub.Member(actor.ID)
	if !ok {
		return m, errorf(domain.ErrForbidden, "%s is not a member of %s", actor.Email, hub.Name)
	}
	return m, nil
}

func requireRole(hub *domain.Hub, userID uuid.UUID, role domain.Role) error {
	m, ok := hub.Member(userID)
	if !ok {
		return errorf(domain.ErrValidation, "%s is not a member of %s", userID, hub.Name)
	}
	if m.Role != role {
		return errorf(domain.ErrValidation, "%s must be a %s, not %s", m.Email, role, m.Role)
	}
	return nil
}

func replaceHub(state State, i int, hub domain.Hub) State {
	hubs := slices.Clone(state.Hubs)
	hubs[i] = hub
	state.Hubs = hubs
	return state
}

func replaceMeeting(state State, i int, m domain.Meeting) State {
	meetings := slices.Clone(state.Meetings)
	meetings[i] = m
	state.Meetings = meetings
	return state
}

func hubIndex(hubs []domain.Hub, id uuid.UUID) int {
	return slices.IndexFunc(hubs, func(h domain.Hub) bool { return h.ID == id })
}

func meetingIndex(meetings []domain.Meeting, id uuid.UUID) int {
	return slices.IndexFunc(meetings, func(m domain.Meeting) bool { return m.ID == id })
}

func channelIndex(channels []domain.Channel, id uuid.UUID) int {
	return slices.IndexFunc(channels, func(c domain.Channel) bool { return c.ID == id })
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
