package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/llm"
)

func TestGenerate_MeetingSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer ds-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, llm.SystemPrompt, req.Messages[0].Content)
		assert.Contains(t, req.Messages[1].Content, "Weekly Sync")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{\"choices\":[{\"message\":{\"content\":\"```\\n- Release on Friday\\n```\"}}],\"usage\":{\"total_tokens\":17}}"))
	}))
	defer srv.Close()

	p := NewProvider(config.DeepSeekConfig{APIKey: "ds-test"}, 0)
	p.baseURL = srv.URL

	resp, err := p.Generate(context.Background(), llm.Request{
		Kind:    domain.EntryMeetingSummary,
		Query:   "Summarize",
		Meeting: &llm.MeetingContext{Title: "Weekly Sync", Agenda: []string{"Release"}, Duration: 30},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "- Release on Friday", resp.Text)
	assert.Equal(t, 17, resp.TokensUsed)
	assert.Equal(t, "deepseek-chat", resp.Model)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProvider(config.DeepSeekConfig{APIKey: "ds-test"}, 0)
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), llm.Request{Query: "q"}, "deepseek-reasoner")
	assert.ErrorContains(t, err, "status 503")
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewProvider(config.DeepSeekConfig{}, 0).IsConfigured())
	assert.True(t, NewProvider(config.DeepSeekConfig{APIKey: "k"}, 0).IsConfigured())
}
