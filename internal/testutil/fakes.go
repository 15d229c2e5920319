// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"sync"

	"github.com/askmydata/backend/internal/llm"
)

// FakeAnswerer records prompts and replies with a fixed answer.
type FakeAnswerer struct {
	Answer string

	mu      sync.Mutex
	prompts []string
}

func NewFakeAnswerer(answer string) *FakeAnswerer {
	return &FakeAnswerer{Answer: answer}
}

func (f *FakeAnswerer) Query(_ context.Context, prompt string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.Answer
}

// Prompts returns every prompt received so far.
func (f *FakeAnswerer) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// FakeProvider is an llm.Provider with scripted results.
type FakeProvider struct {
	ProviderName string
	Response     string
	Err          error
	// Block makes Generate wait for context cancellation.
	Block bool

	mu      sync.Mutex
	calls   int
	options []*llm.Options
}

// Ensure FakeProvider implements llm.Provider
var _ llm.Provider = &FakeProvider{}

func (f *FakeProvider) Name() string {
	if f.ProviderName == "" {
		return "Fake"
	}
	return f.ProviderName
}

func (f *FakeProvider) Generate(ctx context.Context, _ string, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.options = append(f.options, llm.ApplyOptions(opts...))
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastOptions returns the options of the most recent call.
func (f *FakeProvider) LastOptions() *llm.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.options) == 0 {
		return nil
	}
	return f.options[len(f.options)-1]
}
