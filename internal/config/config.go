// Package config provides file-based configuration with environment overrides.
// The file may be XML or YAML; the format follows the file extension.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"AskMyData" yaml:"-"`

	Server   ServerConfig   `xml:"Server" yaml:"server"`
	LLM      LLMConfig      `xml:"LLM" yaml:"llm"`
	Prompt   PromptConfig   `xml:"Prompt" yaml:"prompt"`
	Session  SessionConfig  `xml:"Session" yaml:"session"`
	Upload   UploadConfig   `xml:"Upload" yaml:"upload"`
	Advanced AdvancedConfig `xml:"Advanced" yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port              int    `xml:"Port" yaml:"port"`
	BindAddress       string `xml:"BindAddress" yaml:"bindAddress"`
	EnableCORS        bool   `xml:"EnableCORS" yaml:"enableCors"`
	AllowOrigins      string `xml:"AllowOrigins" yaml:"allowOrigins"`
	ReadTimeout       int    `xml:"ReadTimeoutSeconds" yaml:"readTimeoutSeconds"`
	WriteTimeout      int    `xml:"WriteTimeoutSeconds" yaml:"writeTimeoutSeconds"`
	IdleTimeout       int    `xml:"IdleTimeoutSeconds" yaml:"idleTimeoutSeconds"`
	EnableCompression bool   `xml:"EnableCompression" yaml:"enableCompression"`
	CompressionLevel  int    `xml:"CompressionLevel" yaml:"compressionLevel"`
}

// LLMConfig selects the model vendor. The credential itself never lives in
// the file, only the name of the environment variable that holds it.
type LLMConfig struct {
	Provider       string `xml:"Provider" yaml:"provider"` // "gemini" or "openai"
	Model          string `xml:"Model" yaml:"model"`       // empty selects the provider default
	APIKeyEnv      string `xml:"APIKeyEnv" yaml:"apiKeyEnv"`
	BaseURL        string `xml:"BaseURL" yaml:"baseUrl"`
	TimeoutSeconds int    `xml:"TimeoutSeconds" yaml:"timeoutSeconds"`
}

// PromptConfig controls how much of the table is sent to the model.
type PromptConfig struct {
	MaxSampleRows int `xml:"MaxSampleRows" yaml:"maxSampleRows"`
}

// SessionConfig controls per-user session lifetime
type SessionConfig struct {
	TimeoutMinutes         int `xml:"TimeoutMinutes" yaml:"timeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes" yaml:"cleanupIntervalMinutes"`
	MaxSessions            int `xml:"MaxSessions" yaml:"maxSessions"`
}

// UploadConfig contains upload limits
type UploadConfig struct {
	MaxUploadSize    string `xml:"MaxUploadSize" yaml:"maxUploadSize"`
	AllowedFileTypes string `xml:"AllowedFileTypes" yaml:"allowedFileTypes"`
}

// AdvancedConfig contains logging and tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel" yaml:"logLevel"`
	LogFile              string `xml:"LogFile" yaml:"logFile"`
	Production           bool   `xml:"Production" yaml:"production"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging" yaml:"enableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:              8501,
			BindAddress:       "0.0.0.0",
			EnableCORS:        true,
			AllowOrigins:      "*",
			ReadTimeout:       30,
			WriteTimeout:      120,
			IdleTimeout:       120,
			EnableCompression: true,
			CompressionLevel:  5,
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			APIKeyEnv:      "GEMINI_API_KEY",
			TimeoutSeconds: 60,
		},
		Prompt: PromptConfig{
			MaxSampleRows: 10,
		},
		Session: SessionConfig{
			TimeoutMinutes:         60,
			CleanupIntervalMinutes: 5,
			MaxSessions:            100,
		},
		Upload: UploadConfig{
			MaxUploadSize:    "50M",
			AllowedFileTypes: ".csv,.json,.xlsx,.xls",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFile:              "./logs/askmydata.log",
			Production:           false,
			EnableRequestLogging: true,
		},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads configuration from an XML or YAML file. A missing file is
// created with the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = xml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the configuration in the format implied by the file extension.
func (c *AppConfig) Save(configPath string) error {
	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	var content []byte
	if isYAML(configPath) {
		output, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		header := []byte("# Ask My Data configuration\n# This file is auto-generated on first run\n\n")
		content = append(header, output...)
	} else {
		output, err := xml.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		header := []byte(xml.Header + "\n<!-- Ask My Data configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
		content = append(header, output...)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the server cannot run with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.APIKeyEnv == "" {
		return fmt.Errorf("llm api key environment variable name is empty")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if keyEnv := os.Getenv("LLM_API_KEY_ENV"); keyEnv != "" {
		c.LLM.APIKeyEnv = keyEnv
	}

	if timeout := os.Getenv("LLM_TIMEOUT_SECONDS"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.LLM.TimeoutSeconds = t
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Advanced.LogFile != "" && !filepath.IsAbs(c.Advanced.LogFile) {
		c.Advanced.LogFile = filepath.Join(configDir, c.Advanced.LogFile)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// writeTimeoutMargin leaves room to encode the answer after the LLM returns.
const writeTimeoutMargin = 10 * time.Second

// GetLLMTimeout returns the per-call model timeout
func (c *AppConfig) GetLLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// GetWriteTimeout returns the server write timeout, raised when needed so an
// ask can run for the full LLM timeout and still write its response.
func (c *AppConfig) GetWriteTimeout() time.Duration {
	write := time.Duration(c.Server.WriteTimeout) * time.Second
	if llm := c.GetLLMTimeout() + writeTimeoutMargin; write < llm {
		return llm
	}
	return write
}

// GetSessionTimeout returns how long an idle session is kept
func (c *AppConfig) GetSessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

// GetCleanupInterval returns how often expired sessions are purged
func (c *AppConfig) GetCleanupInterval() time.Duration {
	if c.Session.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Session.CleanupIntervalMinutes) * time.Minute
}

// GetAllowedOrigins splits AllowOrigins into a list, defaulting to "*".
func (c *AppConfig) GetAllowedOrigins() []string {
	origins := strings.Split(c.Server.AllowOrigins, ",")
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// GetAllowedExtensions splits AllowedFileTypes into extensions without dots.
// An empty setting allows every supported type.
func (c *AppConfig) GetAllowedExtensions() []string {
	out := make([]string, 0)
	for _, t := range strings.Split(c.Upload.AllowedFileTypes, ",") {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if c.Advanced.LogFile == "" {
		return nil
	}
	dir := filepath.Dir(c.Advanced.LogFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
