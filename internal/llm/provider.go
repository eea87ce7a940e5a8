package llm

import (
	"context"

	"github.com/Rrens/meeting-buddy/internal/domain"
)

// Request contains the assistant generation parameters
type Request struct {
	Kind    domain.ChatbotEntryType
	Query   string
	HubName string
	Meeting *MeetingContext
}

// MeetingContext describes the meeting a summary is generated for
type MeetingContext struct {
	Title        string
	Agenda       []string
	Participants []string
	Duration     int
	Attendance   []domain.JoinLog
}

// Response contains LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate answers a team question or summarizes a meeting
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}
