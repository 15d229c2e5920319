package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MissingKeyAnswer is the answer recorded when no credential is configured.
const MissingKeyAnswer = "Error: API key not found in environment variables."

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 60 * time.Second

// Client is the question-answering boundary. Query never fails: every error
// becomes an answer string starting with "Error:".
type Client struct {
	provider Provider
	timeout  time.Duration
	log      *zap.Logger
}

func NewClient(provider Provider, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		provider: provider,
		timeout:  timeout,
		log:      log.With(zap.String("component", "llm")),
	}
}

// Query sends prompt at temperature 0 and returns the model's answer or an
// error description.
func (c *Client) Query(ctx context.Context, prompt string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.provider.Generate(ctx, prompt, WithTemperature(0))
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			c.log.Warn("llm credential missing", zap.String("provider", c.provider.Name()))
			return MissingKeyAnswer
		}
		c.log.Error("llm call failed",
			zap.String("provider", c.provider.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return fmt.Sprintf("Error: Could not get response from %s\nDetails: %v", c.provider.Name(), err)
	}

	c.log.Info("llm call complete",
		zap.String("provider", c.provider.Name()),
		zap.Int("promptChars", len(prompt)),
		zap.Int("answerChars", len(text)),
		zap.Duration("elapsed", elapsed))
	return text
}
