// Package canned is an offline responder that answers from fixed templates
// after a simulated delay.
package canned

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/llm"
)

const modelName = "templates-v1"

var templates = []string{
	"Based on your team's recent activity and communication patterns, here's what I found regarding %q:\n\n" +
		"• Your team has shown strong collaboration in recent discussions\n" +
		"• Key stakeholders are actively engaged in project initiatives\n" +
		"• Communication flow is efficient across all channels\n\n" +
		"Would you like me to provide more specific insights or recommendations?",
	"I've analyzed the relevant information for %q and here are my recommendations:\n\n" +
		"• Consider scheduling regular check-ins to maintain momentum\n" +
		"• Documentation of key decisions should be prioritized\n" +
		"• Team members seem well-aligned on current objectives\n\n" +
		"This approach should help optimize your team's performance and collaboration.",
	"Regarding %q, I've identified several important points:\n\n" +
		"• Current team dynamics are positive and productive\n" +
		"• Resource allocation appears to be well-balanced\n" +
		"• Communication channels are being utilized effectively\n\n" +
		"I recommend continuing with the current strategy while monitoring for any emerging challenges.",
}

// Provider implements llm.Provider without a model
type Provider struct {
	latency time.Duration
	mu      sync.Mutex
	rng     *rand.Rand
}

// NewProvider creates a canned provider
func NewProvider(cfg config.CannedConfig) *Provider {
	return &Provider{
		latency: cfg.Latency,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6d62)),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "canned"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{modelName}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return modelName
}

// IsConfigured is always true
func (p *Provider) IsConfigured() bool {
	return true
}

// Generate waits for the configured latency and answers from a template
func (p *Provider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	start := time.Now()

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("canned response cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("canned response cancelled: %w", err)
	}

	var text string
	if req.Kind == domain.EntryMeetingSummary && req.Meeting != nil {
		text = summarize(req.Meeting)
	} else {
		text = fmt.Sprintf(templates[p.pick()], strings.TrimSpace(req.Query))
	}

	return &llm.Response{
		Text:      text,
		Model:     modelName,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *Provider) pick() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(len(templates))
}

func summarize(m *llm.MeetingContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting '%s' was successfully completed.", m.Title)
	if len(m.Participants) > 0 {
		fmt.Fprintf(&b, " Attendees: %s.", strings.Join(m.Participants, ", "))
	}
	if len(m.Agenda) > 0 {
		b.WriteString("\n\nKey highlights:\n")
		for _, item := range m.Agenda {
			fmt.Fprintf(&b, "• %s was discussed\n", item)
		}
		b.WriteString("\nNext steps were agreed for each agenda item.")
	}
	return b.String()
}
