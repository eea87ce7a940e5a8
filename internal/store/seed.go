package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/meeting-buddy/internal/domain"
)

const demoQuestion = "What should the team focus on this week?"

// DemoSnapshot builds the sample data shown to a first-time user: one hub
// they run as CEO, one scheduled meeting and one assistant exchange. It is
// built through Reduce so it satisfies every store invariant.
func DemoSnapshot(user domain.User, now time.Time, linker Linker, newID func() uuid.UUID) domain.Snapshot {
	state := reduceLoad(State{}, Load{})
	for _, cmd := range demoCommands(user, now, linker, newID) {
		next, err := Reduce(state, user, cmd)
		if err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Skipping demo seed")
			return domain.Snapshot{}
		}
		state = next
	}
	return snapshotOf(state)
}

func demoCommands(user domain.User, now time.Time, linker Linker, newID func() uuid.UUID) []Command {
	hubID := newID()
	return []Command{
		CreateHub{
			HubID:     hubID,
			ChannelID: newID(),
			MessageID: newID(),
			At:        now,
			Input: domain.HubCreate{
				Name:        "Meeting Buddy Demo",
				Type:        domain.HubTypeCorporate,
				Description: "A sample hub to explore teams, channels and meetings.",
				CreatorRole: domain.RoleCEO,
			},
		},
		AddMeeting{
			MeetingID: newID(),
			Link:      linker.Link(),
			Input: domain.MeetingCreate{
				Title:        "Weekly Sync",
				HubID:        hubID,
				Agenda:       []string{"Project updates", "Blockers", "Next steps"},
				Participants: []uuid.UUID{user.ID},
				ScheduledFor: now.Add(24 * time.Hour),
				Duration:     30,
			},
		},
		AddChatbotEntry{
			EntryID: newID(),
			At:      now,
			Input: domain.ChatbotEntryCreate{
				HubID:    hubID,
				Type:     domain.EntryTeamQuestion,
				Query:    demoQuestion,
				Response: "Start with the items on the Weekly Sync agenda, then agree on owners for each next step.",
			},
		},
	}
}
