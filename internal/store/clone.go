package store

import (
	"slices"

	"github.com/Rrens/meeting-buddy/internal/domain"
)

// Queries hand out deep copies so callers cannot reach into the state.

func cloneHub(h domain.Hub) domain.Hub {
	h.Members = slices.Clone(h.Members)
	h.Teams = cloneTeams(h.Teams)
	h.Channels = cloneChannels(h.Channels)
	return h
}

func cloneHubs(hubs []domain.Hub) []domain.Hub {
	out := make([]domain.Hub, len(hubs))
	for i, h := range hubs {
		out[i] = cloneHub(h)
	}
	return out
}

func cloneTeams(teams []domain.Team) []domain.Team {
	if teams == nil {
		return nil
	}
	out := make([]domain.Team, len(teams))
	for i, t := range teams {
		t.Members = slices.Clone(t.Members)
		out[i] = t
	}
	return out
}

func cloneChannels(channels []domain.Channel) []domain.Channel {
	if channels == nil {
		return nil
	}
	out := make([]domain.Channel, len(channels))
	for i, c := range channels {
		c.TeamID = copyID(c.TeamID)
		c.Messages = slices.Clone(c.Messages)
		out[i] = c
	}
	return out
}

func cloneMeeting(m domain.Meeting) domain.Meeting {
	m.Agenda = slices.Clone(m.Agenda)
	m.Participants = slices.Clone(m.Participants)
	m.JoinLogs = slices.Clone(m.JoinLogs)
	return m
}

func cloneMeetings(meetings []domain.Meeting) []domain.Meeting {
	out := make([]domain.Meeting, len(meetings))
	for i, m := range meetings {
		out[i] = cloneMeeting(m)
	}
	return out
}

func cloneEntry(e domain.ChatbotEntry) domain.ChatbotEntry {
	e.MeetingID = copyID(e.MeetingID)
	return e
}

func cloneEntries(entries []domain.ChatbotEntry) []domain.ChatbotEntry {
	out := make([]domain.ChatbotEntry, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneState(s State) State {
	return State{
		Hubs:           cloneHubs(s.Hubs),
		Meetings:       cloneMeetings(s.Meetings),
		ChatbotHistory: cloneEntries(s.ChatbotHistory),
		CurrentHubID:   copyID(s.CurrentHubID),
	}
}
