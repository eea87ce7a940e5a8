package ollama

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

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, llm.SystemPrompt, req.System)
		assert.Contains(t, req.Prompt, "Weekly Sync")

		_, _ = w.Write([]byte(`{"response":"` + "```\\nAll agenda items covered.\\n```" + `","done":true,"eval_count":7}`))
	}))
	defer srv.Close()

	p := NewProvider(config.OllamaConfig{Host: srv.URL + "/"}, 0)
	resp, err := p.Generate(context.Background(), llm.Request{
		Kind:    domain.EntryMeetingSummary,
		Meeting: &llm.MeetingContext{Title: "Weekly Sync"},
	}, "mistral")
	require.NoError(t, err)
	assert.Equal(t, "All agenda items covered.", resp.Text)
	assert.Equal(t, 7, resp.TokensUsed)
}

func TestDefaults(t *testing.T) {
	p := NewProvider(config.OllamaConfig{}, 0)
	assert.Equal(t, "llama3", p.DefaultModel())
	assert.False(t, p.IsConfigured())
}
