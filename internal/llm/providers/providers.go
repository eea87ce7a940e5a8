// Package providers builds the LLM router from configuration.
package providers

import (
	"github.com/rs/zerolog/log"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/llm"
	"github.com/Rrens/meeting-buddy/internal/llm/anthropic"
	"github.com/Rrens/meeting-buddy/internal/llm/canned"
	"github.com/Rrens/meeting-buddy/internal/llm/deepseek"
	"github.com/Rrens/meeting-buddy/internal/llm/gemini"
	"github.com/Rrens/meeting-buddy/internal/llm/ollama"
	"github.com/Rrens/meeting-buddy/internal/llm/openai"
)

// NewRouter registers the canned provider and every provider that has
// credentials or a host configured
func NewRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	router.RegisterProvider(canned.NewProvider(cfg.Canned))

	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama, cfg.Timeout))
	}
	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI, cfg.Timeout))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic, cfg.Timeout))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek, cfg.Timeout))
	}
	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	}

	return router
}
