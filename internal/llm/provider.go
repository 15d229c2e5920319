// Package llm defines the boundary between the service and hosted language models.
package llm

import (
	"context"
	"errors"
	"os"
)

// ErrMissingAPIKey is returned by providers when no credential is configured.
var ErrMissingAPIKey = errors.New("API key not found in environment variables")

// Option allows for optional generation parameters.
type Option func(*Options)

type Options struct {
	Temperature float64
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions resolves options over the defaults (temperature 0).
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Provider is a hosted model that completes a single prompt.
type Provider interface {
	// Name is the vendor name used in error messages.
	Name() string
	// Generate sends prompt to the model and returns the response text.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// KeySource returns the API credential at call time.
type KeySource func() (string, bool)

// EnvKey reads the credential from the named environment variable on every
// call, so a key added after startup is picked up.
func EnvKey(name string) KeySource {
	return func() (string, bool) {
		v, ok := os.LookupEnv(name)
		return v, ok && v != ""
	}
}

// StaticKey always returns key. An empty key counts as missing.
func StaticKey(key string) KeySource {
	return func() (string, bool) {
		return key, key != ""
	}
}
