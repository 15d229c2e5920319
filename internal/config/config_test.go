package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	for _, name := range []string{"askmydata.config.xml", "askmydata.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, 8501, cfg.Server.Port)
			assert.Equal(t, "gemini", cfg.LLM.Provider)
			assert.Equal(t, 10, cfg.Prompt.MaxSampleRows)

			_, err = os.Stat(path)
			require.NoError(t, err, "default config should be written")

			reloaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.LLM, reloaded.LLM)
			assert.Equal(t, cfg.Session, reloaded.Session)
		})
	}
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "llm:\n  provider: openai\n  model: gpt-4o-mini\n  apiKeyEnv: OPENAI_API_KEY\nprompt:\n  maxSampleRows: 25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 25, cfg.Prompt.MaxSampleRows)
	assert.Equal(t, 8501, cfg.Server.Port, "unset fields keep defaults")
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "c.xml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<AskMyData><LLM><Provider>nope</Provider></LLM></AskMyData>"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}

func TestGetAllowedOrigins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.AllowOrigins = " http://a.test , http://b.test,"
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetAllowedOrigins())

	cfg.Server.AllowOrigins = ""
	assert.Equal(t, []string{"*"}, cfg.GetAllowedOrigins())
}

func TestGetAllowedExtensions(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"csv", "json", "xlsx", "xls"}, cfg.GetAllowedExtensions())

	cfg.Upload.AllowedFileTypes = " .CSV, json ,"
	assert.Equal(t, []string{"csv", "json"}, cfg.GetAllowedExtensions())

	cfg.Upload.AllowedFileTypes = ""
	assert.Empty(t, cfg.GetAllowedExtensions())
}

func TestGetWriteTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.WriteTimeout = 120
	cfg.LLM.TimeoutSeconds = 60
	assert.Equal(t, 120*time.Second, cfg.GetWriteTimeout())

	cfg.LLM.TimeoutSeconds = 300
	assert.Equal(t, 310*time.Second, cfg.GetWriteTimeout())
}
