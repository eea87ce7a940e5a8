package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/llm"
)

// ProviderSource selects an LLM provider by name
type ProviderSource interface {
	GetProvider(name string) (llm.Provider, error)
}

// AssistantStore is the part of the domain store AssistantService drives
type AssistantStore interface {
	Hub(id uuid.UUID) (domain.Hub, bool)
	Meeting(id uuid.UUID) (domain.Meeting, bool)
	AddChatbotEntry(ctx context.Context, input domain.ChatbotEntryCreate) (domain.ChatbotEntry, error)
	CompleteMeeting(ctx context.Context, meetingID uuid.UUID, summary string) (domain.Meeting, error)
}

// AssistantService answers team questions and summarizes meetings. A failing
// provider never fails the request: a local fallback text is recorded instead.
type AssistantService struct {
	providers ProviderSource
	provider  string
	timeout   time.Duration
}

// NewAssistantService creates a new assistant service. An empty provider
// name selects the source's default.
func NewAssistantService(providers ProviderSource, provider string, timeout time.Duration) *AssistantService {
	return &AssistantService{
		providers: providers,
		provider:  provider,
		timeout:   timeout,
	}
}

// DefaultSummary is recorded when no provider could summarize a meeting
func DefaultSummary(title string) string {
	return fmt.Sprintf("Meeting '%s' was successfully completed. Key highlights include discussion of the agenda items and active participation from all attendees.", title)
}

func fallbackAnswer(query string) string {
	return fmt.Sprintf("I couldn't reach the assistant to answer %q right now. Please try again in a moment, or raise it in your team channel.", query)
}

// Ask answers a team question and records the exchange in the hub's history
func (s *AssistantService) Ask(ctx context.Context, st AssistantStore, user domain.User, hubID uuid.UUID, q domain.ChatbotQuery) (domain.ChatbotEntry, error) {
	if err := validate.Struct(q); err != nil {
		return domain.ChatbotEntry{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	query := strings.TrimSpace(q.Query)
	if query == "" {
		return domain.ChatbotEntry{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}

	hub, ok := st.Hub(hubID)
	if !ok {
		return domain.ChatbotEntry{}, fmt.Errorf("%w: hub %s", domain.ErrNotFound, hubID)
	}
	if _, ok := hub.Member(user.ID); !ok {
		return domain.ChatbotEntry{}, fmt.Errorf("%w: %s is not a member of %s", domain.ErrForbidden, user.Email, hub.Name)
	}

	response := s.generate(ctx, llm.Request{
		Kind:    domain.EntryTeamQuestion,
		Query:   query,
		HubName: hub.Name,
	}, fallbackAnswer(query))

	return st.AddChatbotEntry(ctx, domain.ChatbotEntryCreate{
		HubID:    hub.ID,
		Type:     domain.EntryTeamQuestion,
		Query:    query,
		Response: response,
	})
}

// SummarizeMeeting generates a summary and completes the meeting with it.
// notes are passed to the model as extra context.
func (s *AssistantService) SummarizeMeeting(ctx context.Context, st AssistantStore, user domain.User, meetingID uuid.UUID, notes string) (domain.Meeting, error) {
	meeting, ok := st.Meeting(meetingID)
	if !ok {
		return domain.Meeting{}, fmt.Errorf("%w: meeting %s", domain.ErrNotFound, meetingID)
	}
	if !meeting.HasParticipant(user.ID) {
		return domain.Meeting{}, fmt.Errorf("%w: %s is not a participant of %s", domain.ErrForbidden, user.Email, meeting.Title)
	}
	if meeting.Status == domain.MeetingCompleted {
		return domain.Meeting{}, fmt.Errorf("%w: meeting %s is already completed", domain.ErrConflict, meeting.Title)
	}

	hub, _ := st.Hub(meeting.HubID)
	participants := make([]string, 0, len(meeting.Participants))
	for _, id := range meeting.Participants {
		if m, ok := hub.Member(id); ok {
			participants = append(participants, m.Name)
		}
	}

	summary := s.generate(ctx, llm.Request{
		Kind:    domain.EntryMeetingSummary,
		Query:   notes,
		HubName: hub.Name,
		Meeting: &llm.MeetingContext{
			Title:        meeting.Title,
			Agenda:       meeting.Agenda,
			Participants: participants,
			Duration:     meeting.Duration,
			Attendance:   meeting.JoinLogs,
		},
	}, DefaultSummary(meeting.Title))

	return st.CompleteMeeting(ctx, meeting.ID, summary)
}

// generate returns the provider's text, or fallback when the provider is
// missing, fails or returns nothing
func (s *AssistantService) generate(ctx context.Context, req llm.Request, fallback string) string {
	provider, err := s.providers.GetProvider(s.provider)
	if err != nil {
		log.Warn().Err(err).Str("provider", s.provider).Msg("Assistant provider unavailable, using fallback")
		return fallback
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := provider.Generate(genCtx, req, "")
	if err != nil {
		event := log.Warn()
		if errors.Is(err, context.DeadlineExceeded) {
			event = log.Warn().Dur("timeout", s.timeout)
		}
		event.Err(err).Str("provider", provider.Name()).Str("kind", string(req.Kind)).Msg("Assistant generation failed, using fallback")
		return fallback
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		log.Warn().Str("provider", provider.Name()).Msg("Assistant returned an empty response, using fallback")
		return fallback
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Assistant response generated")
	return text
}
