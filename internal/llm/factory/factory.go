// Package factory builds the configured llm.Provider.
package factory

import (
	"fmt"
	"strings"

	"github.com/askmydata/backend/internal/config"
	"github.com/askmydata/backend/internal/llm"
	"github.com/askmydata/backend/internal/llm/gemini"
	"github.com/askmydata/backend/internal/llm/openai"
)

// New returns the provider named in cfg. The API key is read from the
// environment variable cfg.APIKeyEnv on every call.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	key := llm.EnvKey(cfg.APIKeyEnv)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		return gemini.NewProvider(cfg.BaseURL, cfg.Model, key), nil
	case "openai":
		return openai.NewProvider(cfg.BaseURL, cfg.Model, key), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
