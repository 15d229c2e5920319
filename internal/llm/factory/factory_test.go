package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydata/backend/internal/config"
	"github.com/askmydata/backend/internal/llm/gemini"
	"github.com/askmydata/backend/internal/llm/openai"
)

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{"", "Gemini"},
		{"gemini", "Gemini"},
		{"OpenAI", "OpenAI"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := New(config.LLMConfig{Provider: tt.provider, APIKeyEnv: "ASKMYDATA_TEST_KEY"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNew_ModelDefaults(t *testing.T) {
	p, err := New(config.LLMConfig{Provider: "gemini", APIKeyEnv: "K"})
	require.NoError(t, err)
	assert.Equal(t, gemini.DefaultModel, p.(*gemini.Provider).ModelName)

	p, err = New(config.LLMConfig{Provider: "openai", Model: "gpt-4o", APIKeyEnv: "K"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.(*openai.Provider).ModelName)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "claude"})
	assert.Error(t, err)
}
