package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

func TestCreateHub_SeedsAllMembersChannel(t *testing.T) {
	f := newFixture(t)
	hub := f.acmeHub(t)

	assert.Equal(t, "Acme", hub.Name)
	assert.Equal(t, alice.ID, hub.CreatorID)
	assert.Equal(t, testNow, hub.CreatedAt)
	require.Len(t, hub.Members, 1)
	assert.Equal(t, alice.ID, hub.Members[0].UserID)
	assert.Equal(t, domain.RoleCEO, hub.Members[0].Role)
	assert.Empty(t, hub.Teams)

	require.Len(t, hub.Channels, 1)
	ch := hub.Channels[0]
	assert.Equal(t, domain.ChannelTypeAllMembers, ch.Type)
	assert.Equal(t, domain.AllMembersChannelName, ch.Name)
	assert.Nil(t, ch.TeamID)
	require.Len(t, ch.Messages, 1)
	assert.Equal(t, alice.ID, ch.Messages[0].UserID)
	assert.Equal(t, "Welcome to Acme! Looking forward to working with everyone.", ch.Messages[0].Content)
}

func TestCreateHub_InitialMembersDeduplicated(t *testing.T) {
	f := newFixture(t)
	hub := f.acmeHub(t,
		member(bob, domain.RoleManager),
		member(bob, domain.RoleEmployee),
		member(alice, domain.RoleEmployee),
	)

	require.Len(t, hub.Members, 2)
	assert.Equal(t, domain.RoleCEO, hub.Members[0].Role)
	assert.Equal(t, domain.RoleManager, hub.Members[1].Role)
}

func TestCreateHub_Validation(t *testing.T) {
	cases := []struct {
		name  string
		input domain.HubCreate
	}{
		{"empty name", domain.HubCreate{Type: domain.HubTypeStartup, CreatorRole: domain.RoleCEO}},
		{"blank name", domain.HubCreate{Name: "   ", Type: domain.HubTypeStartup, CreatorRole: domain.RoleCEO}},
		{"unknown type", domain.HubCreate{Name: "Acme", Type: "guild", CreatorRole: domain.RoleCEO}},
		{"no role selected", domain.HubCreate{Name: "Acme", Type: domain.HubTypeTeam}},
		{"team leader is not a stored role", domain.HubCreate{Name: "Acme", Type: domain.HubTypeTeam, CreatorRole: domain.GrantTeamLeader}},
		{"bad member email", domain.HubCreate{Name: "Acme", Type: domain.HubTypeTeam, CreatorRole: domain.RoleCEO,
			Members: []domain.HubMemberInput{{UserID: uuid.New(), Email: "nope", Role: domain.RoleEmployee}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.store.CreateHub(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.store.State().Hubs)
			assert.Equal(t, 0, f.kv.Len())
		})
	}
}

// Alice creates Acme, adds Bob as the only Manager; Bob cannot form a team
// until a second Manager joins.
func TestScenario_TeamNeedsTwoManagers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := f.acmeHub(t)

	assert.Len(t, hub.Members, 1)
	assert.Len(t, hub.Channels, 1)
	assert.Empty(t, hub.Teams)

	_, err := f.store.AddMember(ctx, hub.ID, domain.MemberAdd{UserID: bob.ID, Name: bob.Name, Email: bob.Email, Grant: "Manager"})
	require.NoError(t, err)
	hub, _ = f.store.Hub(hub.ID)
	assert.Len(t, hub.Members, 2)

	f.id.as(bob)
	for _, assistant := range []uuid.UUID{bob.ID, alice.ID} {
		_, err = f.store.CreateTeam(ctx, hub.ID, domain.TeamCreate{Name: "Infra", LeaderID: bob.ID, AssistantID: assistant})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	hub, _ = f.store.Hub(hub.ID)
	assert.Empty(t, hub.Teams)
	assert.Len(t, hub.Channels, 1)

	f.id.as(alice)
	_, err = f.store.AddMember(ctx, hub.ID, domain.MemberAdd{UserID: dave.ID, Name: dave.Name, Email: dave.Email, Grant: "Manager"})
	require.NoError(t, err)

	f.id.as(bob)
	team, err := f.store.CreateTeam(ctx, hub.ID, domain.TeamCreate{Name: "Infra", LeaderID: bob.ID, AssistantID: dave.ID})
	require.NoError(t, err)
	assert.Equal(t, "Infra", team.Name)
}

func TestAddMember_Hierarchy(t *testing.T) {
	ctx := context.Background()
	newcomer := func() domain.MemberAdd {
		id := uuid.New()
		return domain.MemberAdd{UserID: id, Name: "New", Email: id.String()[:8] + "@acme.io"}
	}

	cases := []struct {
		name    string
		actor   domain.User
		grant   string
		wantErr error
		stored  domain.Role
	}{
		{"ceo adds manager", alice, "Manager", nil, domain.RoleManager},
		{"ceo adds employee", alice, "Employee", domain.ErrForbidden, ""},
		{"manager adds team leader", bob, domain.GrantTeamLeader, nil, domain.RoleManager},
		{"manager adds employee", bob, "Employee", nil, domain.RoleEmployee},
		{"manager adds hr", bob, "HR", domain.ErrForbidden, ""},
		{"hr adds employee", hana, "Employee", domain.ErrForbidden, ""},
		{"employee adds employee", carol, "Employee", domain.ErrForbidden, ""},
		{"outsider adds employee", domain.User{ID: uuid.New(), Email: "x@y.io"}, "Employee", domain.ErrForbidden, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			hub := f.staffedHub(t)
			before := len(hub.Members)

			f.id.as(tc.actor)
			in := newcomer()
			in.Grant = tc.grant
			m, err := f.store.AddMember(ctx, hub.ID, in)

			hub, _ = f.store.Hub(hub.ID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Len(t, hub.Members, before)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.stored, m.Role)
			assert.Equal(t, testNow, m.JoinedAt)
			assert.Len(t, hub.Members, before+1)
		})
	}
}

func TestAddMember_Duplicate(t *testing.T) {
	f := newFixture(t)
	hub := f.staffedHub(t)

	_, err := f.store.AddMember(context.Background(), hub.ID, domain.MemberAdd{UserID: bob.ID, Email: bob.Email, Grant: "Manager"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.store.AddMember(context.Background(), uuid.New(), domain.MemberAdd{UserID: uuid.New(), Email: "z@acme.io", Grant: "Manager"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTeam_PairsTeamAndChannel(t *testing.T) {
	f := newFixture(t)
	hub := f.staffedHub(t)

	team, err := f.store.CreateTeam(context.Background(), hub.ID, domain.TeamCreate{
		Name:        " Infra ",
		Department:  "Engineering",
		LeaderID:    bob.ID,
		AssistantID: dave.ID,
		Members:     []uuid.UUID{carol.ID},
	})
	require.NoError(t, err)

	hub, _ = f.store.Hub(hub.ID)
	require.Len(t, hub.Teams, 1)
	require.Len(t, hub.Channels, 2)

	ch, ok := hub.Channel(team.ChannelID)
	require.True(t, ok)
	assert.Equal(t, domain.ChannelTypeTeam, ch.Type)
	assert.Equal(t, "Infra", ch.Name)
	require.NotNil(t, ch.TeamID)
	assert.Equal(t, team.ID, *ch.TeamID)
	assert.NotNil(t, ch.Messages)
	assert.Empty(t, ch.Messages)

	assertTeamChannelPairing(t, hub)
}

func TestCreateTeam_Preconditions(t *testing.T) {
	cases := []struct {
		name    string
		actor   domain.User
		input   func(hub domain.Hub) domain.TeamCreate
		wantErr error
	}{
		{"hr cannot create teams", hana, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: bob.ID, AssistantID: dave.ID}
		}, domain.ErrForbidden},
		{"employee cannot create teams", carol, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: bob.ID, AssistantID: dave.ID}
		}, domain.ErrForbidden},
		{"missing name", alice, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "  ", LeaderID: bob.ID, AssistantID: dave.ID}
		}, domain.ErrValidation},
		{"leader equals assistant", alice, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: bob.ID, AssistantID: bob.ID}
		}, domain.ErrValidation},
		{"leader not a manager", alice, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: hana.ID, AssistantID: dave.ID}
		}, domain.ErrValidation},
		{"assistant not a member", alice, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: bob.ID, AssistantID: uuid.New()}
		}, domain.ErrValidation},
		{"member not an employee", alice, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: bob.ID, AssistantID: dave.ID, Members: []uuid.UUID{hana.ID}}
		}, domain.ErrValidation},
		{"member listed twice", alice, func(domain.Hub) domain.TeamCreate {
			return domain.TeamCreate{Name: "Ops", LeaderID: bob.ID, AssistantID: dave.ID, Members: []uuid.UUID{carol.ID, carol.ID}}
		}, domain.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			hub := f.staffedHub(t)

			f.id.as(tc.actor)
			_, err := f.store.CreateTeam(context.Background(), hub.ID, tc.input(hub))
			assert.ErrorIs(t, err, tc.wantErr)

			after, _ := f.store.Hub(hub.ID)
			assert.Empty(t, after.Teams)
			assert.Len(t, after.Channels, 1)
		})
	}
}

func TestCreateTeam_AssignmentExclusivity(t *testing.T) {
	ctx := context.Background()
	gus := domain.User{ID: uuid.New(), Email: "gus@acme.io", Name: "Gus"}
	f := newFixture(t)
	hub := f.acmeHub(t,
		member(bob, domain.RoleManager),
		member(dave, domain.RoleManager),
		member(hana, domain.RoleManager),
		member(gus, domain.RoleManager),
		member(carol, domain.RoleEmployee),
		member(erin, domain.RoleEmployee),
	)

	_, err := f.store.CreateTeam(ctx, hub.ID, domain.TeamCreate{Name: "Infra", LeaderID: bob.ID, AssistantID: dave.ID, Members: []uuid.UUID{carol.ID}})
	require.NoError(t, err)

	// bob already leads Infra
	_, err = f.store.CreateTeam(ctx, hub.ID, domain.TeamCreate{Name: "Web", LeaderID: hana.ID, AssistantID: bob.ID, Members: []uuid.UUID{erin.ID}})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// carol already belongs to Infra
	_, err = f.store.CreateTeam(ctx, hub.ID, domain.TeamCreate{Name: "Web", LeaderID: hana.ID, AssistantID: gus.ID, Members: []uuid.UUID{erin.ID, carol.ID}})
	assert.ErrorIs(t, err, domain.ErrConflict)

	hub, _ = f.store.Hub(hub.ID)
	require.Len(t, hub.Teams, 1)

	seen := make(map[uuid.UUID]bool)
	for _, team := range hub.Teams {
		for _, id := range team.UserIDs() {
			assert.False(t, seen[id], "user %s assigned twice", id)
			seen[id] = true
		}
	}
	assertTeamChannelPairing(t, hub)
}

func assertTeamChannelPairing(t *testing.T, hub domain.Hub) {
	t.Helper()

	allMembers := 0
	teamChannels := 0
	for _, ch := range hub.Channels {
		switch ch.Type {
		case domain.ChannelTypeAllMembers:
			allMembers++
			assert.Nil(t, ch.TeamID)
		case domain.ChannelTypeTeam:
			teamChannels++
			require.NotNil(t, ch.TeamID)
			team, ok := hub.Team(*ch.TeamID)
			require.True(t, ok, "channel %s references missing team", ch.ID)
			assert.Equal(t, ch.ID, team.ChannelID)
		}
	}
	assert.Equal(t, 1, allMembers)
	assert.Equal(t, len(hub.Teams), teamChannels)
}

func TestPostMessage_AllMembersChannel(t *testing.T) {
	cases := []struct {
		actor domain.User
		allow bool
	}{
		{alice, true},
		{bob, true},
		{hana, true},
		{carol, false},
		{domain.User{ID: uuid.New(), Email: "outsider@else.io"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.actor.Email, func(t *testing.T) {
			f := newFixture(t)
			hub := f.staffedHub(t)
			ch := allMembersChannel(t, hub)

			f.id.as(tc.actor)
			msg, err := f.store.PostMessage(context.Background(), hub.ID, ch.ID, "Hello team")

			hub, _ = f.store.Hub(hub.ID)
			after := allMembersChannel(t, hub)
			if !tc.allow {
				assert.ErrorIs(t, err, domain.ErrForbidden)
				assert.Len(t, after.Messages, 1)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.actor.ID, msg.UserID)
			assert.Equal(t, "Hello team", msg.Content)
			require.Len(t, after.Messages, 2)
			assert.Equal(t, msg, after.Messages[1])
		})
	}
}

func TestPostMessage_TeamChannel(t *testing.T) {
	f := newFixture(t)
	hub := f.staffedHub(t)
	team, err := f.store.CreateTeam(context.Background(), hub.ID, domain.TeamCreate{
		Name: "Infra", LeaderID: bob.ID, AssistantID: dave.ID, Members: []uuid.UUID{carol.ID},
	})
	require.NoError(t, err)

	cases := []struct {
		actor domain.User
		allow bool
	}{
		{alice, true}, // CEO
		{hana, true},  // HR
		{bob, true},   // leader
		{dave, true},  // assistant
		{carol, true}, // member
		{erin, false}, // employee outside the team
	}

	posted := 0
	for _, tc := range cases {
		f.id.as(tc.actor)
		_, err := f.store.PostMessage(context.Background(), hub.ID, team.ChannelID, "status from "+tc.actor.Name)
		if tc.allow {
			assert.NoError(t, err, tc.actor.Name)
			posted++
		} else {
			assert.ErrorIs(t, err, domain.ErrForbidden, tc.actor.Name)
		}
	}

	hub, _ = f.store.Hub(hub.ID)
	ch, _ := hub.Channel(team.ChannelID)
	require.Len(t, ch.Messages, posted)
	// append order is preserved
	assert.Equal(t, "status from Alice", ch.Messages[0].Content)
	assert.Equal(t, "status from Carol", ch.Messages[posted-1].Content)
}

func TestPostMessage_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := f.staffedHub(t)
	ch := allMembersChannel(t, hub)

	_, err := f.store.PostMessage(ctx, hub.ID, ch.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.store.PostMessage(ctx, hub.ID, ch.ID, strings.Repeat("x", 4001))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.store.PostMessage(ctx, hub.ID, uuid.New(), "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.store.PostMessage(ctx, uuid.New(), ch.ID, "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	hub, _ = f.store.Hub(hub.ID)
	assert.Len(t, allMembersChannel(t, hub).Messages, 1)
}

func TestUserHubs(t *testing.T) {
	f := newFixture(t)
	acme := f.acmeHub(t, member(bob, domain.RoleManager))

	f.id.as(bob)
	side, err := f.store.CreateHub(context.Background(), domain.HubCreate{Name: "Side", Type: domain.HubTypeStartup, CreatorRole: domain.RoleCEO})
	require.NoError(t, err)

	ids := func(hubs []domain.Hub) []uuid.UUID {
		out := []uuid.UUID{}
		for _, h := range hubs {
			out = append(out, h.ID)
		}
		return out
	}

	assert.Equal(t, []uuid.UUID{acme.ID}, ids(f.store.UserHubs(alice.ID)))
	assert.Equal(t, []uuid.UUID{acme.ID, side.ID}, ids(f.store.UserHubs(bob.ID)))
	assert.NotNil(t, f.store.UserHubs(carol.ID))
	assert.Empty(t, f.store.UserHubs(carol.ID))
}

func TestSelectHub(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, ok := f.store.CurrentHub()
	assert.False(t, ok)

	hub := f.acmeHub(t)
	require.NoError(t, f.store.SelectHub(ctx, &hub.ID))

	current, ok := f.store.CurrentHub()
	require.True(t, ok)
	assert.Equal(t, hub.ID, current.ID)

	pointer, ok, _ := f.kv.Get(ctx, storage.CurrentHubKey(alice.ID))
	assert.True(t, ok)
	assert.Equal(t, hub.ID.String(), pointer)

	unknown := uuid.New()
	assert.ErrorIs(t, f.store.SelectHub(ctx, &unknown), domain.ErrNotFound)
	current, ok = f.store.CurrentHub()
	require.True(t, ok)
	assert.Equal(t, hub.ID, current.ID)

	require.NoError(t, f.store.SelectHub(ctx, nil))
	_, ok = f.store.CurrentHub()
	assert.False(t, ok)
	pointer, _, _ = f.kv.Get(ctx, storage.CurrentHubKey(alice.ID))
	assert.Equal(t, "", pointer)
}

func TestAddMeeting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := f.acmeHub(t, member(bob, domain.RoleManager), member(carol, domain.RoleEmployee))

	meeting, err := f.store.AddMeeting(ctx, domain.MeetingCreate{
		Title:        "Sync",
		HubID:        hub.ID,
		Agenda:       []string{"Roadmap", "  ", "", "Hiring"},
		Participants: []uuid.UUID{alice.ID, bob.ID, bob.ID},
		ScheduledFor: testNow.Add(time.Hour),
		Duration:     30,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MeetingScheduled, meeting.Status)
	assert.NotNil(t, meeting.JoinLogs)
	assert.Empty(t, meeting.JoinLogs)
	assert.NotEmpty(t, meeting.MeetingLink)
	assert.Equal(t, []string{"Roadmap", "Hiring"}, meeting.Agenda)
	assert.Equal(t, []uuid.UUID{alice.ID, bob.ID}, meeting.Participants)
	assert.Equal(t, alice.ID, meeting.CreatedByID)
	assert.Len(t, f.store.HubMeetings(hub.ID), 1)

	t.Run("employee cannot create meetings", func(t *testing.T) {
		f.id.as(carol)
		_, err := f.store.AddMeeting(ctx, domain.MeetingCreate{Title: "Coffee", HubID: hub.ID, ScheduledFor: testNow, Duration: 15})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.id.as(alice)
	})

	t.Run("participants must be members", func(t *testing.T) {
		_, err := f.store.AddMeeting(ctx, domain.MeetingCreate{
			Title: "Coffee", HubID: hub.ID, Participants: []uuid.UUID{erin.ID}, ScheduledFor: testNow, Duration: 15,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("duration required", func(t *testing.T) {
		_, err := f.store.AddMeeting(ctx, domain.MeetingCreate{Title: "Coffee", HubID: hub.ID, ScheduledFor: testNow})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	assert.Len(t, f.store.HubMeetings(hub.ID), 1)
}

func TestMeetingLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := f.acmeHub(t, member(bob, domain.RoleManager), member(carol, domain.RoleEmployee))

	meeting, err := f.store.AddMeeting(ctx, domain.MeetingCreate{
		Title: "Sync", HubID: hub.ID, Participants: []uuid.UUID{alice.ID, bob.ID}, ScheduledFor: testNow, Duration: 30,
	})
	require.NoError(t, err)

	f.id.as(carol)
	_, err = f.store.JoinMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.id.as(bob)
	joined, err := f.store.JoinMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingActive, joined.Status)

	left, err := f.store.LeaveMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, left.JoinLogs, 2)
	assert.Equal(t, domain.ActionJoin, left.JoinLogs[0].Action)
	assert.Equal(t, domain.ActionLeave, left.JoinLogs[1].Action)
	assert.Equal(t, "Bob", left.JoinLogs[1].UserName)

	_, err = f.store.CompleteMeeting(ctx, meeting.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	done, err := f.store.CompleteMeeting(ctx, meeting.ID, "We agreed on the roadmap.")
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingCompleted, done.Status)
	assert.Equal(t, "We agreed on the roadmap.", done.Summary)

	history := f.store.ChatbotHistory(hub.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.EntryMeetingSummary, history[0].Type)
	assert.Equal(t, "Sync Summary", history[0].Title)
	assert.Equal(t, "Summarize the Sync meeting", history[0].Query)
	require.NotNil(t, history[0].MeetingID)
	assert.Equal(t, meeting.ID, *history[0].MeetingID)

	_, err = f.store.JoinMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.store.CompleteMeeting(ctx, meeting.ID, "again")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.store.JoinMeeting(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatbotHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := f.acmeHub(t)
	other := f.acmeHub(t)

	long := strings.Repeat("é", 60)
	clock := testNow
	f.store.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := f.store.AddChatbotEntry(ctx, domain.ChatbotEntryCreate{
		HubID: hub.ID, Type: domain.EntryTeamQuestion, Query: long, Response: "answer one",
	})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50)+"...", first.Title)

	second, err := f.store.AddChatbotEntry(ctx, domain.ChatbotEntryCreate{
		HubID: hub.ID, Type: domain.EntryTeamQuestion, Query: "Short question", Response: "answer two",
	})
	require.NoError(t, err)
	assert.Equal(t, "Short question", second.Title)

	_, err = f.store.AddChatbotEntry(ctx, domain.ChatbotEntryCreate{
		HubID: other.ID, Type: domain.EntryTeamQuestion, Query: "elsewhere", Response: "x",
	})
	require.NoError(t, err)

	history := f.store.ChatbotHistory(hub.ID)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	f.id.as(carol)
	_, err = f.store.AddChatbotEntry(ctx, domain.ChatbotEntryCreate{
		HubID: hub.ID, Type: domain.EntryTeamQuestion, Query: "let me in", Response: "x",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.id.as(alice)
	missing := uuid.New()
	_, err = f.store.AddChatbotEntry(ctx, domain.ChatbotEntryCreate{
		HubID: hub.ID, Type: domain.EntryMeetingSummary, Query: "q", Response: "r", MeetingID: &missing,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := f.staffedHub(t)

	team, err := f.store.CreateTeam(ctx, hub.ID, domain.TeamCreate{Name: "Infra", LeaderID: bob.ID, AssistantID: dave.ID, Members: []uuid.UUID{carol.ID}})
	require.NoError(t, err)
	_, err = f.store.PostMessage(ctx, hub.ID, team.ChannelID, "first!")
	require.NoError(t, err)
	meeting, err := f.store.AddMeeting(ctx, domain.MeetingCreate{Title: "Sync", HubID: hub.ID, Participants: []uuid.UUID{alice.ID}, ScheduledFor: testNow, Duration: 30})
	require.NoError(t, err)
	_, err = f.store.JoinMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	_, err = f.store.CompleteMeeting(ctx, meeting.ID, "done")
	require.NoError(t, err)

	snap := f.store.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)

	// what was persisted is the same snapshot
	stored, ok, err := f.kv.Get(ctx, storage.AppDataKey(alice.ID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, string(data), stored)
}

func TestPersistenceFailureKeepsState(t *testing.T) {
	id := &switchIdentity{}
	id.as(alice)
	s := New(id, failingKV{}, &fixedLinker{}, Options{})

	hub, err := s.CreateHub(context.Background(), domain.HubCreate{Name: "Acme", Type: domain.HubTypeCorporate, CreatorRole: domain.RoleCEO})
	require.NoError(t, err)

	got, ok := s.Hub(hub.ID)
	require.True(t, ok)
	assert.Equal(t, "Acme", got.Name)
	require.NoError(t, s.SelectHub(context.Background(), &hub.ID))
}

func TestUnauthenticated(t *testing.T) {
	f := newFixture(t)
	f.id.logout()

	_, err := f.store.CreateHub(context.Background(), domain.HubCreate{Name: "Acme", Type: domain.HubTypeCorporate, CreatorRole: domain.RoleCEO})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, f.store.Load(context.Background()), domain.ErrUnauthenticated)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("restores persisted state", func(t *testing.T) {
		f := newFixture(t)
		hub := f.acmeHub(t)
		require.NoError(t, f.store.SelectHub(ctx, &hub.ID))

		restored := New(f.id, f.kv, &fixedLinker{}, Options{SeedDemo: true})
		require.NoError(t, restored.Load(ctx))

		assert.Equal(t, f.store.Snapshot(), restored.Snapshot())
		current, ok := restored.CurrentHub()
		require.True(t, ok)
		assert.Equal(t, hub.ID, current.ID)
	})

	t.Run("empty without seed", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Load(ctx))
		assert.Empty(t, f.store.State().Hubs)
		assert.Equal(t, 0, f.kv.Len())
	})

	t.Run("demo seed for new users", func(t *testing.T) {
		f := newFixture(t)
		s := New(f.id, f.kv, &fixedLinker{}, Options{SeedDemo: true})
		require.NoError(t, s.Load(ctx))

		hubs := s.UserHubs(alice.ID)
		require.Len(t, hubs, 1)
		assert.Equal(t, domain.RoleCEO, hubs[0].Members[0].Role)
		assertTeamChannelPairing(t, hubs[0])
		assert.Len(t, s.HubMeetings(hubs[0].ID), 1)
		assert.Len(t, s.ChatbotHistory(hubs[0].ID), 1)

		_, ok, _ := f.kv.Get(ctx, storage.AppDataKey(alice.ID))
		assert.True(t, ok)
	})

	t.Run("corrupt snapshot is replaced", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.kv.Set(ctx, storage.AppDataKey(alice.ID), "{not json"))
		require.NoError(t, f.store.Load(ctx))
		assert.Empty(t, f.store.State().Hubs)

		stored, _, _ := f.kv.Get(ctx, storage.AppDataKey(alice.ID))
		assert.JSONEq(t, `{"hubs":[],"meetings":[],"chatbotHistory":[]}`, stored)
	})

	t.Run("read failure keeps stored data", func(t *testing.T) {
		f := newFixture(t)
		acme := f.acmeHub(t)

		flaky := &flakyKV{KV: f.kv, failures: 1}
		s := New(f.id, flaky, &fixedLinker{}, Options{SeedDemo: true})
		require.Error(t, s.Load(ctx))

		_, err := s.CreateHub(ctx, domain.HubCreate{Name: "Beta", Type: domain.HubTypeStartup, CreatorRole: domain.RoleCEO})
		assert.ErrorIs(t, err, ErrUnreadable)
		assert.ErrorIs(t, s.SelectHub(ctx, &acme.ID), ErrUnreadable)

		require.NoError(t, s.Load(ctx))
		_, err = s.CreateHub(ctx, domain.HubCreate{Name: "Beta", Type: domain.HubTypeStartup, CreatorRole: domain.RoleCEO})
		require.NoError(t, err)

		reloaded := New(f.id, f.kv, &fixedLinker{}, Options{})
		require.NoError(t, reloaded.Load(ctx))
		var names []string
		for _, h := range reloaded.UserHubs(alice.ID) {
			names = append(names, h.Name)
		}
		assert.Equal(t, []string{"Acme", "Beta"}, names)
	})

	t.Run("dangling selection resolves to none", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.kv.Set(ctx, storage.CurrentHubKey(alice.ID), uuid.NewString()))
		require.NoError(t, f.store.Load(ctx))
		_, ok := f.store.CurrentHub()
		assert.False(t, ok)
	})
}

func TestQueriesReturnCopies(t *testing.T) {
	f := newFixture(t)
	hub := f.acmeHub(t)

	hub.Channels[0].Messages[0].Content = "tampered"
	hub.Members[0].Role = domain.RoleEmployee

	fresh, _ := f.store.Hub(hub.ID)
	assert.Equal(t, domain.RoleCEO, fresh.Members[0].Role)
	assert.NotEqual(t, "tampered", fresh.Channels[0].Messages[0].Content)
}
