package canned

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/llm"
)

func TestGenerate_EmbedsQuery(t *testing.T) {
	p := NewProvider(config.CannedConfig{})

	for range 20 {
		resp, err := p.Generate(context.Background(), llm.Request{Kind: domain.EntryTeamQuestion, Query: "How is the launch going?"}, "")
		require.NoError(t, err)
		assert.Contains(t, resp.Text, `"How is the launch going?"`)
		assert.Equal(t, modelName, resp.Model)

		known := false
		for _, tmpl := range templates {
			prefix := tmpl[:strings.Index(tmpl, "%q")]
			if strings.HasPrefix(resp.Text, prefix) {
				known = true
			}
		}
		assert.True(t, known, resp.Text)
	}
}

func TestGenerate_MeetingSummary(t *testing.T) {
	p := NewProvider(config.CannedConfig{})

	resp, err := p.Generate(context.Background(), llm.Request{
		Kind: domain.EntryMeetingSummary,
		Meeting: &llm.MeetingContext{
			Title:        "Weekly Sync",
			Agenda:       []string{"Roadmap"},
			Participants: []string{"Alice"},
		},
	}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Text, "Meeting 'Weekly Sync' was successfully completed."))
	assert.Contains(t, resp.Text, "Roadmap was discussed")
}

func TestGenerate_Latency(t *testing.T) {
	p := NewProvider(config.CannedConfig{Latency: 20 * time.Millisecond})

	start := time.Now()
	_, err := p.Generate(context.Background(), llm.Request{Query: "q"}, "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestGenerate_Cancelled(t *testing.T) {
	p := NewProvider(config.CannedConfig{Latency: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, llm.Request{Query: "q"}, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
