// Package store is the domain store: the single owner of a user's hubs,
// meetings and chatbot history.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/identity"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// Identity supplies the acting user
type Identity interface {
	Current() domain.AuthState
}

// Linker generates meeting-room URLs
type Linker interface {
	Link() string
}

// Options configures a Store
type Options struct {
	// SeedDemo fills an empty session with sample data
	SeedDemo bool
}

// ErrUnreadable is returned for commands on a store whose last Load could
// not read storage. Writing would replace data that was never seen.
var ErrUnreadable = errors.New("stored data could not be read")

// Store applies commands for the current identity and persists the whole
// snapshot after every successful transition. Persistence failures are
// logged and never undo the transition.
//
// A per-user store keeps one snapshot per identity. A shared store keeps
// one snapshot for every user and is driven through views returned by As;
// hub selection is then tracked per user.
type Store struct {
	*core
	identity Identity
}

type core struct {
	mu         sync.RWMutex
	state      State
	kv         storage.KV
	linker     Linker
	opts       Options
	now        func() time.Time
	newID      func() uuid.UUID
	shared     bool
	unreadable bool
	selections map[uuid.UUID]*uuid.UUID
}

// New creates a per-user store with an empty state
func New(identity Identity, kv storage.KV, linker Linker, opts Options) *Store {
	return &Store{
		core: &core{
			state:  reduceLoad(State{}, Load{}),
			kv:     kv,
			linker: linker,
			opts:   opts,
			now:    func() time.Time { return time.Now().UTC() },
			newID:  uuid.New,
		},
		identity: identity,
	}
}

// NewShared creates a store holding every user's hubs in one snapshot. It
// has no identity of its own; act on it through As.
func NewShared(kv storage.KV, linker Linker, opts Options) *Store {
	s := New(anonymous{}, kv, linker, opts)
	s.shared = true
	s.selections = make(map[uuid.UUID]*uuid.UUID)
	return s
}

// As returns a view of the same state acting as user
func (s *Store) As(user domain.User) *Store {
	return &Store{core: s.core, identity: identity.NewStatic(user)}
}

type anonymous struct{}

func (anonymous) Current() domain.AuthState { return domain.Anonymous() }

// Load restores the stored snapshot and, for a per-user store, the selected
// hub. A read failure is returned and leaves the store refusing commands
// until a later Load succeeds.
func (s *Store) Load(ctx context.Context) error {
	var actor domain.User
	if !s.shared {
		var err error
		if actor, err = s.actor(); err != nil {
			return err
		}
	}
	key := s.snapshotKey(actor.ID)

	cmd := Load{}
	writeBack := false

	raw, ok, err := s.kv.Get(ctx, key)
	switch {
	case err != nil:
		s.mu.Lock()
		s.unreadable = true
		s.mu.Unlock()
		log.Error().Err(err).Str("key", key).Msg("Failed to read snapshot")
		return fmt.Errorf("failed to read snapshot: %w", err)
	case !ok:
		cmd.Snapshot = s.initialSnapshot(actor)
		writeBack = !s.shared && s.opts.SeedDemo
	default:
		if err := json.Unmarshal([]byte(raw), &cmd.Snapshot); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt snapshot")
			cmd.Snapshot = s.initialSnapshot(actor)
			writeBack = true
		}
	}

	if !s.shared {
		cmd.CurrentHubID = s.readSelection(ctx, actor.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, actor, cmd)
	if err != nil {
		return err
	}
	s.state = next
	s.unreadable = false
	if writeBack {
		s.persistSnapshot(ctx, actor.ID, next)
	}

	log.Debug().
		Str("key", key).
		Int("hubs", len(next.Hubs)).
		Int("meetings", len(next.Meetings)).
		Msg("Store loaded")
	return nil
}

// enter prepares a shared-store view for its user: it restores the user's
// selected hub and seeds the demo hub for a user who belongs to none.
func (s *Store) enter(ctx context.Context) error {
	actor, err := s.actor()
	if err != nil {
		return err
	}
	selected := s.readSelection(ctx, actor.ID)

	s.mu.Lock()
	if selected != nil {
		s.selections[actor.ID] = selected
	}
	hasHubs := false
	for i := range s.state.Hubs {
		if _, ok := s.state.Hubs[i].Member(actor.ID); ok {
			hasHubs = true
			break
		}
	}
	s.mu.Unlock()

	if !s.opts.SeedDemo || hasHubs {
		return nil
	}
	for _, cmd := range demoCommands(actor, s.now(), s.linker, s.newID) {
		if _, err := s.apply(ctx, cmd); err != nil {
			log.Warn().Err(err).Str("user_id", actor.ID.String()).Msg("Skipping demo seed")
			return nil
		}
	}
	return nil
}

func (s *Store) readSelection(ctx context.Context, userID uuid.UUID) *uuid.UUID {
	pointer, ok, err := s.kv.Get(ctx, storage.CurrentHubKey(userID))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to read selected hub")
		return nil
	}
	if !ok || pointer == "" {
		return nil
	}
	id, err := uuid.Parse(pointer)
	if err != nil {
		return nil
	}
	return &id
}

// SelectHub sets the active hub; nil clears it
func (s *Store) SelectHub(ctx context.Context, hubID *uuid.UUID) error {
	if !s.shared {
		_, err := s.apply(ctx, SelectHub{HubID: hubID})
		return err
	}

	actor, err := s.actor()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unreadable {
		return ErrUnreadable
	}
	if hubID != nil {
		i := hubIndex(s.state.Hubs, *hubID)
		if i < 0 {
			return errorf(domain.ErrNotFound, "hub %s", *hubID)
		}
		if _, ok := s.state.Hubs[i].Member(actor.ID); !ok {
			return errorf(domain.ErrNotFound, "hub %s", *hubID)
		}
	}
	s.selections[actor.ID] = copyID(hubID)
	s.persistCurrentHub(ctx, actor.ID, hubID)
	return nil
}

// CreateHub creates a hub owned by the current identity
func (s *Store) CreateHub(ctx context.Context, input domain.HubCreate) (domain.Hub, error) {
	cmd := CreateHub{
		HubID:     s.newID(),
		ChannelID: s.newID(),
		MessageID: s.newID(),
		At:        s.now(),
		Input:     input,
	}
	next, err := s.apply(ctx, cmd)
	if err != nil {
		return domain.Hub{}, err
	}
	return cloneHub(next.Hubs[hubIndex(next.Hubs, cmd.HubID)]), nil
}

// AddMember adds a member to a hub
func (s *Store) AddMember(ctx context.Context, hubID uuid.UUID, input domain.MemberAdd) (domain.HubMember, error) {
	next, err := s.apply(ctx, AddMember{HubID: hubID, At: s.now(), Input: input})
	if err != nil {
		return domain.HubMember{}, err
	}
	hub := next.Hubs[hubIndex(next.Hubs, hubID)]
	member, _ := hub.Member(input.UserID)
	return member, nil
}

// CreateTeam creates a team and its channel
func (s *Store) CreateTeam(ctx context.Context, hubID uuid.UUID, input domain.TeamCreate) (domain.Team, error) {
	cmd := CreateTeam{HubID: hubID, TeamID: s.newID(), ChannelID: s.newID(), Input: input}
	next, err := s.apply(ctx, cmd)
	if err != nil {
		return domain.Team{}, err
	}
	hub := next.Hubs[hubIndex(next.Hubs, hubID)]
	team, _ := hub.Team(cmd.TeamID)
	return cloneTeams([]domain.Team{team})[0], nil
}

// AddMeeting schedules a meeting
func (s *Store) AddMeeting(ctx context.Context, input domain.MeetingCreate) (domain.Meeting, error) {
	cmd := AddMeeting{MeetingID: s.newID(), Link: s.linker.Link(), Input: input}
	next, err := s.apply(ctx, cmd)
	if err != nil {
		return domain.Meeting{}, err
	}
	return cloneMeeting(next.Meetings[meetingIndex(next.Meetings, cmd.MeetingID)]), nil
}

// JoinMeeting records that the current identity joined a meeting
func (s *Store) JoinMeeting(ctx context.Context, meetingID uuid.UUID) (domain.Meeting, error) {
	return s.attend(ctx, meetingID, domain.ActionJoin)
}

// LeaveMeeting records that the current identity left a meeting
func (s *Store) LeaveMeeting(ctx context.Context, meetingID uuid.UUID) (domain.Meeting, error) {
	return s.attend(ctx, meetingID, domain.ActionLeave)
}

func (s *Store) attend(ctx context.Context, meetingID uuid.UUID, action domain.AttendanceAction) (domain.Meeting, error) {
	next, err := s.apply(ctx, RecordAttendance{MeetingID: meetingID, Action: action, At: s.now()})
	if err != nil {
		return domain.Meeting{}, err
	}
	return cloneMeeting(next.Meetings[meetingIndex(next.Meetings, meetingID)]), nil
}

// CompleteMeeting marks a meeting completed with its summary
func (s *Store) CompleteMeeting(ctx context.Context, meetingID uuid.UUID, summary string) (domain.Meeting, error) {
	next, err := s.apply(ctx, CompleteMeeting{
		MeetingID: meetingID,
		EntryID:   s.newID(),
		Summary:   summary,
		At:        s.now(),
	})
	if err != nil {
		return domain.Meeting{}, err
	}
	return cloneMeeting(next.Meetings[meetingIndex(next.Meetings, meetingID)]), nil
}

// AddChatbotEntry records an assistant exchange
func (s *Store) AddChatbotEntry(ctx context.Context, input domain.ChatbotEntryCreate) (domain.ChatbotEntry, error) {
	cmd := AddChatbotEntry{EntryID: s.newID(), At: s.now(), Input: input}
	next, err := s.apply(ctx, cmd)
	if err != nil {
		return domain.ChatbotEntry{}, err
	}
	return cloneEntry(next.ChatbotHistory[len(next.ChatbotHistory)-1]), nil
}

// PostMessage appends a message to a channel if the current identity may post there
func (s *Store) PostMessage(ctx context.Context, hubID, channelID uuid.UUID, content string) (domain.Message, error) {
	cmd := PostMessage{
		HubID:     hubID,
		ChannelID: channelID,
		MessageID: s.newID(),
		At:        s.now(),
		Content:   content,
	}
	next, err := s.apply(ctx, cmd)
	if err != nil {
		return domain.Message{}, err
	}
	hub := next.Hubs[hubIndex(next.Hubs, hubID)]
	channel, _ := hub.Channel(channelID)
	return channel.Messages[len(channel.Messages)-1], nil
}

// State returns a copy of the whole state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

// Snapshot returns the persisted part of the state
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotOf(cloneState(s.state))
}

// UserHubs returns the hubs userID is a member of
func (s *Store) UserHubs(userID uuid.UUID) []domain.Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hubs := []domain.Hub{}
	for _, h := range s.state.Hubs {
		if _, ok := h.Member(userID); ok {
			hubs = append(hubs, cloneHub(h))
		}
	}
	return hubs
}

// CurrentHub resolves the selected hub; false when unset or dangling
func (s *Store) CurrentHub() (domain.Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := s.state.CurrentHubID
	if s.shared {
		actor, err := s.actor()
		if err != nil {
			return domain.Hub{}, false
		}
		selected = s.selections[actor.ID]
	}
	if selected == nil {
		return domain.Hub{}, false
	}
	i := hubIndex(s.state.Hubs, *selected)
	if i < 0 {
		return domain.Hub{}, false
	}
	return cloneHub(s.state.Hubs[i]), true
}

// Hub returns a hub by id
func (s *Store) Hub(id uuid.UUID) (domain.Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := hubIndex(s.state.Hubs, id)
	if i < 0 {
		return domain.Hub{}, false
	}
	return cloneHub(s.state.Hubs[i]), true
}

// Meeting returns a meeting by id
func (s *Store) Meeting(id uuid.UUID) (domain.Meeting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := meetingIndex(s.state.Meetings, id)
	if i < 0 {
		return domain.Meeting{}, false
	}
	return cloneMeeting(s.state.Meetings[i]), true
}

// HubMeetings returns the meetings of a hub ordered by schedule
func (s *Store) HubMeetings(hubID uuid.UUID) []domain.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meetings := []domain.Meeting{}
	for _, m := range s.state.Meetings {
		if m.HubID == hubID {
			meetings = append(meetings, cloneMeeting(m))
		}
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].ScheduledFor.Before(meetings[j].ScheduledFor)
	})
	return meetings
}

// ChatbotHistory returns a hub's assistant history, newest first
func (s *Store) ChatbotHistory(hubID uuid.UUID) []domain.ChatbotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []domain.ChatbotEntry{}
	for _, e := range slices.Backward(s.state.ChatbotHistory) {
		if e.HubID == hubID {
			entries = append(entries, cloneEntry(e))
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

func (s *Store) actor() (domain.User, error) {
	auth := s.identity.Current()
	if !auth.IsAuthenticated || auth.User == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return *auth.User, nil
}

// apply runs cmd through Reduce, swaps the state and persists it. The lock
// is held while persisting so writes reach storage in command order.
func (s *Store) apply(ctx context.Context, cmd Command) (State, error) {
	actor, err := s.actor()
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unreadable {
		return State{}, ErrUnreadable
	}

	next, err := Reduce(s.state, actor, cmd)
	if err != nil {
		log.Debug().Err(err).Str("command", fmt.Sprintf("%T", cmd)).Msg("Command rejected")
		return State{}, err
	}
	s.state = next

	s.persistSnapshot(ctx, actor.ID, next)
	if sel, ok := cmd.(SelectHub); ok {
		s.persistCurrentHub(ctx, actor.ID, sel.HubID)
	}
	return next, nil
}

func (s *Store) persistSnapshot(ctx context.Context, userID uuid.UUID, state State) {
	data, err := json.Marshal(snapshotOf(state))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to encode snapshot")
		return
	}
	if err := s.kv.Set(ctx, s.snapshotKey(userID), string(data)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to persist snapshot")
	}
}

func (s *Store) persistCurrentHub(ctx context.Context, userID uuid.UUID, hubID *uuid.UUID) {
	value := ""
	if hubID != nil {
		value = hubID.String()
	}
	if err := s.kv.Set(ctx, storage.CurrentHubKey(userID), value); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to persist selected hub")
	}
}

func (s *Store) snapshotKey(userID uuid.UUID) string {
	if s.shared {
		return storage.SharedDataKey
	}
	return storage.AppDataKey(userID)
}

func (s *Store) initialSnapshot(actor domain.User) domain.Snapshot {
	if s.shared || !s.opts.SeedDemo {
		return domain.Snapshot{}
	}
	return DemoSnapshot(actor, s.now(), s.linker, s.newID)
}

func snapshotOf(state State) domain.Snapshot {
	return domain.Snapshot{
		Hubs:           state.Hubs,
		Meetings:       state.Meetings,
		ChatbotHistory: state.ChatbotHistory,
	}
}

// IsRejection reports whether err is a refused command rather than a fault
func IsRejection(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}
